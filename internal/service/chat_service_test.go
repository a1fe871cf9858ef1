/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"errors"
	"testing"

	"chatd/internal/entity"
	"chatd/internal/realtime"
)

func newChatFixture() (ChatService, *MockChatRepository) {
	users := NewMockUserRepository(
		&entity.User{UUID: "alice", Username: "alice"},
		&entity.User{UUID: "bob", Username: "bob"},
		&entity.User{UUID: "carol", Username: "carol"},
	)
	chatRepo := NewMockChatRepository()
	return NewChatService(chatRepo, users, &MockLogger{}), chatRepo
}

func TestCreateDirectChat(t *testing.T) {
	chats, _ := newChatFixture()

	chat, err := chats.Create("alice", "", false, []string{"bob"})
	if err != nil {
		t.Fatalf("Could not create the chat: %v", err)
	}
	if chat.IsGroup || len(chat.Participants) != 2 {
		t.Errorf("Direct chat shaped wrong: %+v", chat)
	}
}

func TestCreateDirectChatNeedsTwoPeople(t *testing.T) {
	chats, _ := newChatFixture()

	if _, err := chats.Create("alice", "", false, []string{"alice"}); err == nil {
		t.Error("A direct chat with one participant was accepted")
	}
	if _, err := chats.Create("alice", "", false, []string{"bob", "carol"}); err == nil {
		t.Error("A direct chat with three participants was accepted")
	}
}

func TestCreateGroupChatNeedsAName(t *testing.T) {
	chats, _ := newChatFixture()

	if _, err := chats.Create("alice", "", true, []string{"bob", "carol"}); err == nil {
		t.Error("A nameless group chat was accepted")
	}

	chat, err := chats.Create("alice", "the gang", true, []string{"bob", "carol"})
	if err != nil {
		t.Fatalf("Could not create the group: %v", err)
	}
	if !chat.IsGroup || len(chat.Participants) != 3 {
		t.Errorf("Group chat shaped wrong: %+v", chat)
	}
}

func TestCreateWithUnknownParticipant(t *testing.T) {
	chats, _ := newChatFixture()

	_, err := chats.Create("alice", "", false, []string{"nobody"})
	if !errors.Is(err, realtime.ErrNotFound) {
		t.Errorf("Expected a not found error, got %v", err)
	}
}

func TestGroupDeletionIsForTheCreatorOnly(t *testing.T) {
	chats, _ := newChatFixture()

	chat, _ := chats.Create("alice", "the gang", true, []string{"bob", "carol"})

	if err := chats.Delete(chat.UUID, "bob"); !errors.Is(err, realtime.ErrForbidden) {
		t.Errorf("A non-creator deleted the group: %v", err)
	}
	if err := chats.Delete(chat.UUID, "alice"); err != nil {
		t.Errorf("The creator could not delete the group: %v", err)
	}
}

func TestDirectChatDeletionByEitherParticipant(t *testing.T) {
	chats, _ := newChatFixture()

	chat, _ := chats.Create("alice", "", false, []string{"bob"})
	if err := chats.Delete(chat.UUID, "bob"); err != nil {
		t.Errorf("A participant could not delete the direct chat: %v", err)
	}

	chat, _ = chats.Create("alice", "", false, []string{"bob"})
	if err := chats.Delete(chat.UUID, "carol"); !errors.Is(err, realtime.ErrForbidden) {
		t.Errorf("An outsider deleted the direct chat: %v", err)
	}
}

func TestDeleteUnknownChat(t *testing.T) {
	chats, _ := newChatFixture()

	if err := chats.Delete("no-such-chat", "alice"); !errors.Is(err, realtime.ErrNotFound) {
		t.Errorf("Expected a not found error, got %v", err)
	}
}

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

// In-memory message repository, assigning sequence numbers like the SQLite one
type MockMessageRepository struct {
	messages []*entity.Message
	lastSeq  map[string]uint64
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{lastSeq: make(map[string]uint64)}
}

func (m *MockMessageRepository) Create(message *entity.Message) error {
	m.lastSeq[message.ChatUUID]++
	message.Seq = m.lastSeq[message.ChatUUID]
	m.messages = append(m.messages, message)
	return nil
}

func (m *MockMessageRepository) ListByChat(chatUUID string) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, msg := range m.messages {
		if msg.ChatUUID == chatUUID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func newMessageFixture() (MessageService, *MockMessageRepository) {
	alice := &entity.User{UUID: "alice", Username: "alice"}
	bob := &entity.User{UUID: "bob", Username: "bob"}
	chatRepo := NewMockChatRepository(&entity.Chat{
		UUID:         "chat-42",
		Participants: []*entity.User{alice, bob},
	})
	messageRepo := NewMockMessageRepository()
	return NewMessageService(messageRepo, chatRepo, &MockLogger{}), messageRepo
}

func TestSendAssignsSequenceNumbers(t *testing.T) {
	messages, _ := newMessageFixture()

	first, err := messages.Send("chat-42", "alice", entity.MessageText, "hello", "")
	if err != nil {
		t.Fatalf("Could not send the message: %v", err)
	}
	second, err := messages.Send("chat-42", "bob", entity.MessageText, "hi", "")
	if err != nil {
		t.Fatalf("Could not send the message: %v", err)
	}

	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("Sequence numbers do not advance per chat: %d then %d", first.Seq, second.Seq)
	}
}

func TestSendByOutsiderIsForbidden(t *testing.T) {
	messages, _ := newMessageFixture()

	_, err := messages.Send("chat-42", "mallory", entity.MessageText, "hello", "")
	if !errors.Is(err, realtime.ErrForbidden) {
		t.Errorf("Expected a forbidden error, got %v", err)
	}
}

func TestSendRejectsEmptyMessages(t *testing.T) {
	messages, _ := newMessageFixture()

	if _, err := messages.Send("chat-42", "alice", entity.MessageText, "", ""); err == nil {
		t.Error("A message with neither content nor file was accepted")
	}
}

func TestSendRejectsUnknownTypes(t *testing.T) {
	messages, _ := newMessageFixture()

	if _, err := messages.Send("chat-42", "alice", "sticker", "x", ""); err == nil {
		t.Error("An unknown message type was accepted")
	}
}

func TestHistoryRequiresMembership(t *testing.T) {
	messages, _ := newMessageFixture()
	messages.Send("chat-42", "alice", entity.MessageText, "hello", "")

	if _, err := messages.History("chat-42", "mallory"); !errors.Is(err, realtime.ErrForbidden) {
		t.Errorf("Expected a forbidden error, got %v", err)
	}

	history, err := messages.History("chat-42", "bob")
	if err != nil {
		t.Fatalf("Could not read the history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 message, got %d", len(history))
	}
}

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
	"fmt"
	"time"

	"chatd/internal/entity"
	"chatd/internal/nlog"
	"chatd/internal/realtime"
	"chatd/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service used to create, list and delete the chats of the system
type ChatService interface {
	Create(creatorUUID, name string, isGroup bool, participantUUIDs []string) (*entity.Chat, error) // Creates a chat between the creator and the given participants

	Delete(chatUUID, requesterUUID string) error // Deletes a chat. Group chats may only be deleted by their creator, direct chats by either participant

	ListForUser(userUUID string) ([]*entity.Chat, error) // Retrieves the chats the user takes part in, most recently active first
	Get(chatUUID, requesterUUID string) (*entity.Chat, error)
}

type chatService struct {
	chatRepository repository.ChatRepository // Repository for chats
	userRepository repository.UserRepository // Repository for users
	logger         nlog.Logger               // Logs a format string
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, logger nlog.Logger) ChatService {
	return &chatService{
		chatRepository: chatRepo,
		userRepository: userRepo,
		logger:         logger,
	}
}

func (c *chatService) Logf(format string, v ...any) {
	c.logger.Logf(format, v...)
}

func (c *chatService) Create(creatorUUID, name string, isGroup bool, participantUUIDs []string) (*entity.Chat, error) {

	// The creator is always a participant, and a direct chat is exactly two people
	members := dedupe(append(participantUUIDs, creatorUUID))
	if !isGroup && len(members) != 2 {
		return nil, fmt.Errorf("A direct chat needs exactly two distinct participants, got %d", len(members))
	}
	if isGroup && name == "" {
		return nil, fmt.Errorf("A group chat needs a name")
	}

	participants := make([]*entity.User, 0, len(members))
	for _, memberUUID := range members {
		u, err := c.userRepository.GetByUUID(memberUUID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: user {%s}", realtime.ErrNotFound, memberUUID)
			}
			return nil, err
		}
		participants = append(participants, u)
	}

	chat := &entity.Chat{
		UUID:         uuid.New().String(),
		Name:         name,
		IsGroup:      isGroup,
		CreatorUUID:  creatorUUID,
		CreatedAt:    time.Now(),
		UpdatedTime:  time.Now(),
		Participants: participants,
	}
	if err := c.chatRepository.Create(chat); err != nil {
		return nil, err
	}

	c.Logf("Chat {%s} created with %d participants", chat.UUID, len(participants))
	return chat, nil
}

func (c *chatService) Delete(chatUUID, requesterUUID string) error {
	chat, err := c.chatRepository.GetByUUID(chatUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return realtime.ErrNotFound
		}
		return err
	}

	if chat.IsGroup {
		if chat.CreatorUUID != requesterUUID {
			return realtime.ErrForbidden
		}
	} else {
		ok, err := c.chatRepository.IsParticipant(chatUUID, requesterUUID)
		if err != nil {
			return err
		}
		if !ok {
			return realtime.ErrForbidden
		}
	}

	if err := c.chatRepository.Delete(chatUUID); err != nil {
		return err
	}
	c.Logf("Chat {%s} deleted by {%s}", chatUUID, requesterUUID)
	return nil
}

func (c *chatService) ListForUser(userUUID string) ([]*entity.Chat, error) {
	return c.chatRepository.GetForUser(userUUID)
}

func (c *chatService) Get(chatUUID, requesterUUID string) (*entity.Chat, error) {
	ok, err := c.chatRepository.IsParticipant(chatUUID, requesterUUID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, realtime.ErrForbidden
	}

	chat, err := c.chatRepository.GetByUUID(chatUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, realtime.ErrNotFound
		}
		return nil, err
	}
	return chat, nil
}

func dedupe(uuids []string) []string {
	seen := make(map[string]struct{}, len(uuids))
	out := make([]string, 0, len(uuids))
	for _, id := range uuids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

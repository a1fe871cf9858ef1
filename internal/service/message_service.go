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

// Service used to persist and retrieve chat messages
type MessageService interface {
	Send(chatUUID, senderUUID string, msgType entity.MessageType, content, file string) (*entity.Message, error) // Persists a message in the chat, assigning its sequence number

	History(chatUUID, requesterUUID string) ([]*entity.Message, error) // Retrieves the messages of the chat, oldest first
}

type messageService struct {
	messageRepository repository.MessageRepository // Repository for messages
	chatRepository    repository.ChatRepository    // Repository for chats
	logger            nlog.Logger                  // Logs a format string
}

func NewMessageService(messageRepo repository.MessageRepository, chatRepo repository.ChatRepository, logger nlog.Logger) MessageService {
	return &messageService{
		messageRepository: messageRepo,
		chatRepository:    chatRepo,
		logger:            logger,
	}
}

func (m *messageService) Logf(format string, v ...any) {
	m.logger.Logf(format, v...)
}

func (m *messageService) Send(chatUUID, senderUUID string, msgType entity.MessageType, content, file string) (*entity.Message, error) {
	if !msgType.Valid() {
		return nil, fmt.Errorf("Unknown message type {%s}", msgType)
	}
	if content == "" && file == "" {
		return nil, fmt.Errorf("A message needs a content or a file reference")
	}

	ok, err := m.chatRepository.IsParticipant(chatUUID, senderUUID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, realtime.ErrForbidden
	}

	message := &entity.Message{
		UUID:       uuid.New().String(),
		ChatUUID:   chatUUID,
		SenderUUID: senderUUID,
		Type:       msgType,
		Content:    content,
		File:       file,
		CreatedAt:  time.Now(),
	}
	if err := m.messageRepository.Create(message); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, realtime.ErrNotFound
		}
		return nil, err
	}

	m.Logf("Message {%s} stored in chat {%s} with seq %d", message.UUID, chatUUID, message.Seq)
	return message, nil
}

func (m *messageService) History(chatUUID, requesterUUID string) ([]*entity.Message, error) {
	ok, err := m.chatRepository.IsParticipant(chatUUID, requesterUUID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, realtime.ErrForbidden
	}
	return m.messageRepository.ListByChat(chatUUID)
}

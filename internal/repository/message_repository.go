/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package repository

import (
	"chatd/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// This repository is used to manipulate the messages in the system.
// Creation allocates the per-chat sequence number inside a single transaction, so that
// messages of one chat are totally ordered even under concurrent senders.
type MessageRepository interface {
	Create(message *entity.Message) error // Inserts a message, assigning its Seq and advancing the chat's activity time

	ListByChat(chatUUID string) ([]*entity.Message, error) // Retrieves the messages of the chat with the given uuid, oldest first
}

// Implementation of the repository using a SQLite DB
type SQLiteMessageRepository struct {
	db *gorm.DB
}

func NewSQLiteMessageRepository(db *gorm.DB) MessageRepository {
	return &SQLiteMessageRepository{db}
}

func (repo *SQLiteMessageRepository) Create(message *entity.Message) error {

	return repo.db.Transaction(func(tx *gorm.DB) error {
		var chat entity.Chat
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("uuid = ?", message.ChatUUID).First(&chat).Error; err != nil {
			return err
		}

		chat.LastSeq++
		chat.UpdatedTime = message.CreatedAt
		if err := tx.Omit("Participants").Save(&chat).Error; err != nil {
			return err
		}

		message.Seq = chat.LastSeq

		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return nil
	})
}

func (repo *SQLiteMessageRepository) ListByChat(chatUUID string) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := repo.db.Where("chat_uuid = ?", chatUUID).Order("seq ASC").Find(&messages).Error
	return messages, err
}

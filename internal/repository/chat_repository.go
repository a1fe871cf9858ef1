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
)

// This repository is used to manipulate the chats and the user-chat relations in the system.
// A chat owns its messages and calls, so deleting one explicitly cascades to both (no hidden hooks).
type ChatRepository interface {
	Create(chat *entity.Chat) error // Inserts a chat in the repository, together with its participant relations

	Delete(uuid string) error // Deletes the chat with the given uuid, cascading to its messages, calls and call participants

	GetByUUID(uuid string) (*entity.Chat, error)          // Retrieves the chat with the given uuid, WITH its participants
	GetForUser(userUUID string) ([]*entity.Chat, error)   // Retrieves the chats the user with the given uuid takes part in, most recently active first
	IsParticipant(chatUUID, userUUID string) (bool, error) // Reports whether the user takes part in the chat
	GetParticipantUUIDs(chatUUID string) ([]string, error) // Retrieves the uuids of the chat's participants
}

// Implementation of the repository using a SQLite DB
type SQLiteChatRepository struct {
	db *gorm.DB
}

func NewSQLiteChatRepository(db *gorm.DB) ChatRepository {
	return &SQLiteChatRepository{db}
}

func (repo *SQLiteChatRepository) Create(chat *entity.Chat) error {
	return repo.db.Omit("Participants.*").Create(chat).Error
}

func (repo *SQLiteChatRepository) Delete(uuid string) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		return cascadeDeleteChat(tx, uuid)
	})
}

func (repo *SQLiteChatRepository) GetByUUID(uuid string) (*entity.Chat, error) {
	var chat entity.Chat
	err := repo.db.Preload("Participants").Where("UUID = ?", uuid).First(&chat).Error
	return &chat, err
}

func (repo *SQLiteChatRepository) GetForUser(userUUID string) ([]*entity.Chat, error) {
	var chats []*entity.Chat
	err := repo.db.Preload("Participants").
		Joins("JOIN chat_participants ON chat_participants.chat_uuid = chats.uuid").
		Where("chat_participants.user_uuid = ?", userUUID).
		Order("chats.updated_time DESC").
		Find(&chats).Error
	return chats, err
}

func (repo *SQLiteChatRepository) IsParticipant(chatUUID, userUUID string) (bool, error) {
	var count int64
	err := repo.db.Table("chat_participants").
		Where("chat_uuid = ? AND user_uuid = ?", chatUUID, userUUID).
		Count(&count).Error
	return count > 0, err
}

func (repo *SQLiteChatRepository) GetParticipantUUIDs(chatUUID string) ([]string, error) {
	var uuids []string
	err := repo.db.Table("chat_participants").Where("chat_uuid = ?", chatUUID).Pluck("user_uuid", &uuids).Error
	return uuids, err
}

// cascadeDeleteChat removes a chat and everything it owns inside the transaction tx.
// The chain is messages, call participants, calls, the participant relations, then the chat itself.
func cascadeDeleteChat(tx *gorm.DB, chatUUID string) error {
	if err := tx.Where("chat_uuid = ?", chatUUID).Delete(&entity.Message{}).Error; err != nil {
		return err
	}

	var callUUIDs []string
	if err := tx.Model(&entity.Call{}).Where("chat_uuid = ?", chatUUID).Pluck("uuid", &callUUIDs).Error; err != nil {
		return err
	}
	if len(callUUIDs) > 0 {
		if err := tx.Where("call_uuid IN ?", callUUIDs).Delete(&entity.CallParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_uuid = ?", chatUUID).Delete(&entity.Call{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Exec("DELETE FROM chat_participants WHERE chat_uuid = ?", chatUUID).Error; err != nil {
		return err
	}
	return tx.Where("uuid = ?", chatUUID).Delete(&entity.Chat{}).Error
}

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

// This repository is used to manipulate the users in the system, together with their device push tokens.
type UserRepository interface {
	Create(user *entity.User) error // Inserts a user in the repository, with its secret

	SoftDelete(uuid string) error // Deletes the user. Every chat the user takes part in is deleted too, explicitly cascading to its messages and calls

	GetForLogin(username string) (*entity.User, error) // Retrieves the user with the given username, it also returns its hashed password, hence, used for login.

	GetByUUID(uuid string) (*entity.User, error)         // Retrieves the user with the given uuid.
	GetByUsername(username string) (*entity.User, error) // Retrieves the user with the given username.
	GetAll() ([]*entity.User, error)                     // Retrieves all the users

	SavePushToken(token *entity.PushToken) error              // Registers (or refreshes) a device push token for a user
	GetPushTokens(userUUID string) ([]entity.PushToken, error) // Retrieves the push tokens of the user with the given uuid
}

// Implementation of the repository using a SQLite DB
type SQLiteUserRepository struct {
	db *gorm.DB
}

func NewSQLiteUserRepository(db *gorm.DB) UserRepository {
	return &SQLiteUserRepository{db}
}

func (repo *SQLiteUserRepository) Create(user *entity.User) error {
	return repo.db.Create(user).Error
}

func (repo *SQLiteUserRepository) SoftDelete(uuid string) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {

		// Collect the chats the user takes part in, each one goes away with the user
		var chatUUIDs []string
		if err := tx.Table("chat_participants").Where("user_uuid = ?", uuid).Pluck("chat_uuid", &chatUUIDs).Error; err != nil {
			return err
		}

		for _, chatUUID := range chatUUIDs {
			if err := cascadeDeleteChat(tx, chatUUID); err != nil {
				return err
			}
		}

		if err := tx.Where("user_uuid = ?", uuid).Delete(&entity.PushToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("uuid = ?", uuid).Delete(&entity.User{}).Error; err != nil {
			return err
		}
		return nil
	})
}

func (repo *SQLiteUserRepository) GetForLogin(username string) (*entity.User, error) {
	var user entity.User
	err := repo.db.Preload("Secret").Where("username = ?", username).First(&user).Error
	return &user, err
}

func (repo *SQLiteUserRepository) GetByUUID(uuid string) (*entity.User, error) {
	var user entity.User
	err := repo.db.Where("UUID = ?", uuid).First(&user).Error
	return &user, err
}

func (repo *SQLiteUserRepository) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := repo.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (repo *SQLiteUserRepository) GetAll() ([]*entity.User, error) {
	var users []*entity.User
	err := repo.db.Find(&users).Error
	return users, err
}

func (repo *SQLiteUserRepository) SavePushToken(token *entity.PushToken) error {
	return repo.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		UpdateAll: true,
	}).Create(token).Error
}

func (repo *SQLiteUserRepository) GetPushTokens(userUUID string) ([]entity.PushToken, error) {
	var tokens []entity.PushToken
	err := repo.db.Where("user_uuid = ?", userUUID).Find(&tokens).Error
	return tokens, err
}

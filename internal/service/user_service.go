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

	"gorm.io/gorm"
)

// Service for the user lookups and the device push token registrations
type UserService interface {
	Get(userUUID string) (*entity.User, error) // Retrieves the user with the given uuid

	RegisterDevice(userUUID, pushToken, platform string) error // Registers (or refreshes) a device push token for the user

	DeleteAccount(userUUID string) error // Deletes the user and every chat it takes part in
}

type userService struct {
	userRepository repository.UserRepository // Repository for users
	logger         nlog.Logger               // Logs a format string
}

func NewUserService(userRepo repository.UserRepository, logger nlog.Logger) UserService {
	return &userService{
		userRepository: userRepo,
		logger:         logger,
	}
}

func (u *userService) Logf(format string, v ...any) {
	u.logger.Logf(format, v...)
}

func (u *userService) Get(userUUID string) (*entity.User, error) {
	user, err := u.userRepository.GetByUUID(userUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, realtime.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (u *userService) RegisterDevice(userUUID, pushToken, platform string) error {
	if pushToken == "" {
		return fmt.Errorf("A device token can not be empty")
	}

	if err := u.userRepository.SavePushToken(&entity.PushToken{
		Token:     pushToken,
		UserUUID:  userUUID,
		Platform:  platform,
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	u.Logf("Device {%s} registered for user {%s}", pushToken, userUUID)
	return nil
}

func (u *userService) DeleteAccount(userUUID string) error {
	if err := u.userRepository.SoftDelete(userUUID); err != nil {
		return err
	}
	u.Logf("User {%s} deleted", userUUID)
	return nil
}

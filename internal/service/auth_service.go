/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"fmt"
	"time"

	"chatd/internal/entity"
	"chatd/internal/nlog"
	"chatd/internal/repository"
	"chatd/internal/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service used for the user registration and login phases
type AuthService interface {
	Register(username, displayName, password string) (*entity.User, error) // Tries to create a new user in the system, returning it if successful
	Login(username, password string) (*entity.User, string, error)         // Tries to authenticate a user via its credentials, returning the user and a signed bearer token
}

type authService struct {
	userRepository repository.UserRepository // Repository for users
	tokens         *token.Manager            // Issues the bearer tokens
	logger         nlog.Logger               // Logs a format string
}

func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager, logger nlog.Logger) AuthService {
	return &authService{
		userRepository: userRepo,
		tokens:         tokens,
		logger:         logger,
	}
}

func (a *authService) Logf(format string, v ...any) {
	a.logger.Logf(format, v...)
}

func (a *authService) Register(username, displayName, password string) (*entity.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("Username and password can not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.Logf("Could not calculate hash{%v}", err)
		return nil, err
	}

	uuid := uuid.New().String()

	u := &entity.User{
		UUID:        uuid,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   time.Now(),

		Secret: entity.UserSecret{
			UserUUID: uuid,
			Hash:     string(hash),
		},
	}
	if err := a.userRepository.Create(u); err != nil {
		return nil, err
	}

	a.Logf("User {%s} correctly registered", username)
	return u, nil
}

func (a *authService) Login(username, password string) (*entity.User, string, error) {
	u, err := a.userRepository.GetForLogin(username)
	if err != nil {
		return nil, "", fmt.Errorf("User was not found {%s}", err.Error())
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.Secret.Hash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("Wrong credentials")
	}

	signed, err := a.tokens.Generate(u.UUID)
	if err != nil {
		return nil, "", err
	}

	a.Logf("User {%s} correctly logged in", username)
	return u, signed, nil
}

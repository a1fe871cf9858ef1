/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"chatd/internal/repository"
)

// The directory answers the identity and membership questions of the live
// connection layer (who is this uuid, does it belong to this chat). It is
// what the socket upgrade consults before letting a connection in
type Directory struct {
	userRepository repository.UserRepository
	chatRepository repository.ChatRepository
}

func NewDirectory(userRepo repository.UserRepository, chatRepo repository.ChatRepository) *Directory {
	return &Directory{
		userRepository: userRepo,
		chatRepository: chatRepo,
	}
}

// Reports whether the user takes part in the chat
func (d *Directory) IsParticipant(chatUUID, userUUID string) (bool, error) {
	return d.chatRepository.IsParticipant(chatUUID, userUUID)
}

// Resolves a user uuid to its username
func (d *Directory) UsernameFor(userUUID string) (string, error) {
	u, err := d.userRepository.GetByUUID(userUUID)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

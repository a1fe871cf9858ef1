/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import (
	"time"
)

// A conversation between two users (direct) or many (group).
// A chat owns its messages and calls: deleting the chat cascades to both.
type Chat struct {
	UUID        string    `gorm:"primaryKey" json:"uuid"`            // Unique identifier
	Name        string    `json:"name"`                              // Optional name, meaningful for groups only
	IsGroup     bool      `gorm:"default:false" json:"is-group"`     // Flag separating group chats from direct ones
	GroupIcon   string    `json:"group-icon"`                        // Optional reference to an uploaded icon file
	CreatorUUID string    `gorm:"index" json:"creator"`              // UUID of the user that created the chat, owner of group deletion rights
	CreatedAt   time.Time `gorm:"not null" json:"created-at"`        // Time of creation
	UpdatedTime time.Time `gorm:"not null;index" json:"updated-time"` // Time of last activity, advanced on every new message
	LastSeq     uint64    `gorm:"not null;default=0" json:"-"`       // Last message sequence number handed out for this chat

	LatestCallUUID *string `gorm:"index" json:"latest-call"` // UUID of the most recent call started in this chat, if any

	Participants []*User `gorm:"many2many:chat_participants;" json:"participants"` // Users taking part in the chat
}

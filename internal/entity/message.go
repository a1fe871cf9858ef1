/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import "time"

// MessageType enumerates what a message carries
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageDocument MessageType = "document"
	MessageAudio    MessageType = "audio"
	MessageVideo    MessageType = "video"
)

// Valid reports whether t is one of the known message types
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageDocument, MessageAudio, MessageVideo:
		return true
	}
	return false
}

// Represents a message sent inside a chat. Immutable after creation.
// Either Content or File is set, never neither.
type Message struct {
	UUID       string      `gorm:"primaryKey" json:"uuid"`       // Unique identifier
	ChatUUID   string      `gorm:"not null;index" json:"chat"`   // UUID of the owning chat
	SenderUUID string      `gorm:"not null;index" json:"sender"` // UUID of the user that sent the message, always a chat participant
	Type       MessageType `gorm:"not null" json:"type"`         // What the message carries
	Content    string      `json:"content"`                      // Text content, empty for file messages
	File       string      `json:"file"`                         // Reference to an uploaded file, empty for text messages
	Seq        uint64      `gorm:"not null;index" json:"seq"`    // Sequence number, strictly increasing per chat, used for ordering
	CreatedAt  time.Time   `gorm:"not null" json:"created-at"`   // Time of creation
}

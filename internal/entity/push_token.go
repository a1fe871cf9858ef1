/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import "time"

// A device push token registered by a user's client.
// The notification dispatcher uses these to reach users that have no live connection.
type PushToken struct {
	Token     string    `gorm:"primaryKey" json:"token"`      // Opaque token handed out by the push platform
	UserUUID  string    `gorm:"not null;index" json:"-"`      // UUID of the owning user
	Platform  string    `gorm:"not null" json:"platform"`     // Platform the token belongs to (fcm, apns, ...)
	CreatedAt time.Time `gorm:"not null" json:"created-at"`   // Time of registration
}

/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import "time"

// ParticipantStatus is the per-user state inside a call
type ParticipantStatus string

const (
	ParticipantInvited  ParticipantStatus = "invited"  // Seeded at call creation, the user has been rung
	ParticipantJoined   ParticipantStatus = "joined"   // The user answered and is (or was) in the call
	ParticipantDeclined ParticipantStatus = "declined" // The user refused. Terminal per-participant state
)

// One row per (call, user) couple, created atomically with the call itself
// for every participant of the owning chat.
type CallParticipant struct {
	CallUUID string            `gorm:"primaryKey" json:"-"`          // UUID of the owning call
	UserUUID string            `gorm:"primaryKey" json:"user"`       // UUID of the participant
	Status   ParticipantStatus `gorm:"not null" json:"status"`       // invited, joined or declined
	JoinedAt *time.Time        `json:"joined-at"`                    // Time the user joined, if ever
	LeftAt   *time.Time        `json:"left-at"`                      // Time the user left, if ever
}

/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import "time"

// CallType separates audio-only calls from video calls
type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

// Valid reports whether t is one of the known call types
func (t CallType) Valid() bool {
	return t == CallAudio || t == CallVideo
}

// CallStatus is the lifecycle state of a call
type CallStatus string

const (
	CallOngoing CallStatus = "ongoing" // Call is live, participants may still join
	CallEnded   CallStatus = "ended"   // Call terminated after at least one participant joined. Terminal
	CallMissed  CallStatus = "missed"  // Call terminated without anyone ever joining. Terminal
)

// Terminal reports whether no further transition is allowed from s
func (s CallStatus) Terminal() bool {
	return s == CallEnded || s == CallMissed
}

// A time-bounded audio/video session tied to a chat.
// A call owns its participant rows: deleting the call cascades to them.
type Call struct {
	UUID          string     `gorm:"primaryKey" json:"uuid"`             // Unique identifier
	ChatUUID      string     `gorm:"not null;index" json:"chat"`         // UUID of the owning chat
	Type          CallType   `gorm:"not null" json:"call-type"`          // Audio or video
	Status        CallStatus `gorm:"not null;index" json:"status"`       // Lifecycle state, ongoing until terminated
	StartedAt     time.Time  `gorm:"not null" json:"started-at"`         // Time of creation
	EndedAt       *time.Time `json:"ended-at"`                           // Time of termination, set exactly once
	InitiatorUUID string     `gorm:"not null;index" json:"initiator"`    // UUID of the user that started the call

	Participants []CallParticipant `gorm:"foreignKey:CallUUID;references:UUID" json:"participants"` // One row per chat participant, seeded at creation
}

/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package repository

import (
	"time"

	"chatd/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// This repository is used to manipulate the calls and their per-user participant rows.
// The multi-row invariants (one ongoing call per chat, participants seeded with the call,
// terminal states written exactly once) are all enforced inside transactions here.
type CallRepository interface {
	CreateWithParticipants(call *entity.Call, participantUUIDs []string) error // Inserts a call plus one invited row per chat participant, rejecting a second ongoing call for the same chat

	GetByUUID(uuid string) (*entity.Call, error)        // Retrieves the call with the given uuid, WITH its participant rows
	ListByChat(chatUUID string) ([]*entity.Call, error) // Retrieves the calls of the chat with the given uuid, most recent first

	UpdateParticipant(p *entity.CallParticipant) error // Persists a participant row's new status and timestamps

	Terminate(callUUID string, status entity.CallStatus, endedAt time.Time) error // Moves the call to a terminal state. A no-op returning ErrCallTerminated when already terminal

	ListOngoingStartedBefore(t time.Time) ([]*entity.Call, error) // Retrieves ongoing calls started before t, WITH participants. Used by the housekeeping sweep
}

// Implementation of the repository using a SQLite DB
type SQLiteCallRepository struct {
	db *gorm.DB
}

func NewSQLiteCallRepository(db *gorm.DB) CallRepository {
	return &SQLiteCallRepository{db}
}

func (repo *SQLiteCallRepository) CreateWithParticipants(call *entity.Call, participantUUIDs []string) error {

	return repo.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Call{}).
			Where("chat_uuid = ? AND status = ?", call.ChatUUID, entity.CallOngoing).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOngoingCallExists
		}

		if err := tx.Create(call).Error; err != nil {
			return err
		}

		for _, userUUID := range participantUUIDs {
			row := entity.CallParticipant{
				CallUUID: call.UUID,
				UserUUID: userUUID,
				Status:   entity.ParticipantInvited,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			call.Participants = append(call.Participants, row)
		}

		// The chat remembers its most recent call
		if err := tx.Model(&entity.Chat{}).Where("uuid = ?", call.ChatUUID).
			Update("latest_call_uuid", call.UUID).Error; err != nil {
			return err
		}
		return nil
	})
}

func (repo *SQLiteCallRepository) GetByUUID(uuid string) (*entity.Call, error) {
	var call entity.Call
	err := repo.db.Preload("Participants").Where("UUID = ?", uuid).First(&call).Error
	return &call, err
}

func (repo *SQLiteCallRepository) ListByChat(chatUUID string) ([]*entity.Call, error) {
	var calls []*entity.Call
	err := repo.db.Preload("Participants").Where("chat_uuid = ?", chatUUID).
		Order("started_at DESC").Find(&calls).Error
	return calls, err
}

func (repo *SQLiteCallRepository) UpdateParticipant(p *entity.CallParticipant) error {
	return repo.db.Model(&entity.CallParticipant{}).
		Where("call_uuid = ? AND user_uuid = ?", p.CallUUID, p.UserUUID).
		Updates(map[string]any{
			"status":    p.Status,
			"joined_at": p.JoinedAt,
			"left_at":   p.LeftAt,
		}).Error
}

func (repo *SQLiteCallRepository) Terminate(callUUID string, status entity.CallStatus, endedAt time.Time) error {

	return repo.db.Transaction(func(tx *gorm.DB) error {
		var call entity.Call
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("uuid = ?", callUUID).First(&call).Error; err != nil {
			return err
		}
		if call.Status.Terminal() {
			return ErrCallTerminated
		}

		call.Status = status
		call.EndedAt = &endedAt
		return tx.Omit("Participants").Save(&call).Error
	})
}

func (repo *SQLiteCallRepository) ListOngoingStartedBefore(t time.Time) ([]*entity.Call, error) {
	var calls []*entity.Call
	err := repo.db.Preload("Participants").
		Where("status = ? AND started_at < ?", entity.CallOngoing, t).
		Find(&calls).Error
	return calls, err
}

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
	"sync"
	"time"

	"chatd/internal/entity"
	"chatd/internal/nlog"
	"chatd/internal/realtime"
	"chatd/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pushes an event towards a user's devices. Best effort, the engine fires and forgets
type Notifier interface {
	Notify(userUUID, eventType string, payload []byte)
}

// The call signaling engine. It owns the call lifecycle (ongoing, then
// ended or missed) and the per-participant states, publishes the resulting
// events on the chat and call topics and hands invitations to the notifier
// for the participants that are not connected.
//
// Mutations on one chat's call serialize on a per-chat lock, concurrent
// joins and ends can not race the state machine. Different chats proceed in parallel
type CallService interface {
	Initiate(chatUUID, initiatorUUID, callType string) (*entity.Call, error) // Starts a call in the chat, seeding an invited row for every participant. Fails when one is already ongoing

	Join(chatUUID, userUUID string) error    // Moves the user's participant row to joined. A no-op when already joined
	Decline(chatUUID, userUUID string) error // Moves the user's participant row to declined, a terminal state
	Leave(chatUUID, userUUID string) error   // Records that a joined user left. The call ends when the last joined participant leaves
	End(chatUUID, userUUID string) error     // Ends the call. From the initiator it terminates the call outright, from anyone else it is a leave

	History(chatUUID, requesterUUID string) ([]*entity.Call, error) // Retrieves the chat's calls, most recent first

	SweepStale(ringTimeout time.Duration) // Marks ongoing calls nobody answered within the timeout as missed
}

type callService struct {
	callRepository repository.CallRepository // Repository for calls
	chatRepository repository.ChatRepository // Repository for chats
	hub            *realtime.Hub             // Fans the signaling events out
	directory      *Directory                // Resolves uuids to usernames for the event payloads
	notifier       Notifier                  // Reaches participants with no live connection
	logger         nlog.Logger               // Logs a format string

	mu        sync.Mutex
	chatLocks map[string]*sync.Mutex // One lock per chat with call activity
}

func NewCallService(callRepo repository.CallRepository, chatRepo repository.ChatRepository,
	hub *realtime.Hub, directory *Directory, notifier Notifier, logger nlog.Logger) CallService {

	return &callService{
		callRepository: callRepo,
		chatRepository: chatRepo,
		hub:            hub,
		directory:      directory,
		notifier:       notifier,
		logger:         logger,
		chatLocks:      make(map[string]*sync.Mutex),
	}
}

func (c *callService) Logf(format string, v ...any) {
	c.logger.Logf(format, v...)
}

func (c *callService) lockChat(chatUUID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.chatLocks[chatUUID]
	if !ok {
		l = &sync.Mutex{}
		c.chatLocks[chatUUID] = l
	}
	return l
}

func (c *callService) Initiate(chatUUID, initiatorUUID, callType string) (*entity.Call, error) {
	ok, err := c.chatRepository.IsParticipant(chatUUID, initiatorUUID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, realtime.ErrForbidden
	}

	if callType == "" {
		callType = string(entity.CallAudio)
	}
	ct := entity.CallType(callType)
	if !ct.Valid() {
		return nil, fmt.Errorf("Unknown call type {%s}", callType)
	}

	username, err := c.directory.UsernameFor(initiatorUUID)
	if err != nil {
		return nil, err
	}

	l := c.lockChat(chatUUID)
	l.Lock()
	defer l.Unlock()

	participantUUIDs, err := c.chatRepository.GetParticipantUUIDs(chatUUID)
	if err != nil {
		return nil, err
	}

	call := &entity.Call{
		UUID:          uuid.New().String(),
		ChatUUID:      chatUUID,
		Type:          ct,
		Status:        entity.CallOngoing,
		StartedAt:     time.Now(),
		InitiatorUUID: initiatorUUID,
	}
	if err := c.callRepository.CreateWithParticipants(call, participantUUIDs); err != nil {
		return nil, err
	}

	event := realtime.CallInvitationEvent(call.UUID, string(ct), username)
	c.hub.Publish(realtime.ChatTopic(chatUUID), event)
	c.hub.Publish(realtime.CallTopic(chatUUID), event)

	// Participants with no live connection still get rung
	for _, memberUUID := range participantUUIDs {
		if memberUUID == initiatorUUID {
			continue
		}
		c.notifier.Notify(memberUUID, "call_invitation", event)
	}

	c.Logf("Call {%s} started in chat {%s} by {%s}", call.UUID, chatUUID, username)
	return call, nil
}

func (c *callService) Join(chatUUID, userUUID string) error {
	l := c.lockChat(chatUUID)
	l.Lock()
	defer l.Unlock()

	call, err := c.currentCall(chatUUID)
	if err != nil {
		return err
	}
	if call.Status.Terminal() {
		return realtime.ErrInvalidTransition
	}

	p := findParticipant(call, userUUID)
	if p == nil {
		return realtime.ErrForbidden
	}
	switch p.Status {
	case entity.ParticipantJoined:
		return nil // Joining twice is a no-op
	case entity.ParticipantDeclined:
		return realtime.ErrInvalidTransition
	}

	now := time.Now()
	p.Status = entity.ParticipantJoined
	p.JoinedAt = &now
	if err := c.callRepository.UpdateParticipant(p); err != nil {
		return err
	}

	username, err := c.directory.UsernameFor(userUUID)
	if err != nil {
		return err
	}
	c.hub.Publish(realtime.CallTopic(chatUUID), realtime.CallParticipantEvent("call_join", call.UUID, username))
	return nil
}

func (c *callService) Decline(chatUUID, userUUID string) error {
	l := c.lockChat(chatUUID)
	l.Lock()
	defer l.Unlock()

	call, err := c.currentCall(chatUUID)
	if err != nil {
		return err
	}
	if call.Status.Terminal() {
		return realtime.ErrInvalidTransition
	}

	p := findParticipant(call, userUUID)
	if p == nil {
		return realtime.ErrForbidden
	}
	switch p.Status {
	case entity.ParticipantDeclined:
		return nil
	case entity.ParticipantJoined:
		return realtime.ErrInvalidTransition
	}

	p.Status = entity.ParticipantDeclined
	if err := c.callRepository.UpdateParticipant(p); err != nil {
		return err
	}

	username, err := c.directory.UsernameFor(userUUID)
	if err != nil {
		return err
	}
	c.hub.Publish(realtime.CallTopic(chatUUID), realtime.CallParticipantEvent("call_decline", call.UUID, username))
	return nil
}

func (c *callService) Leave(chatUUID, userUUID string) error {
	l := c.lockChat(chatUUID)
	l.Lock()
	defer l.Unlock()

	call, err := c.currentCall(chatUUID)
	if err != nil {
		if errors.Is(err, realtime.ErrNotFound) {
			return nil // Nothing to leave
		}
		return err
	}
	if call.Status.Terminal() {
		return nil
	}

	p := findParticipant(call, userUUID)
	if p == nil || p.Status != entity.ParticipantJoined || p.LeftAt != nil {
		return nil
	}

	now := time.Now()
	p.LeftAt = &now
	if err := c.callRepository.UpdateParticipant(p); err != nil {
		return err
	}

	// The call ends when the last joined participant is gone
	if remainingJoined(call) == 0 {
		return c.terminate(call, userUUID)
	}
	return nil
}

func (c *callService) End(chatUUID, userUUID string) error {
	l := c.lockChat(chatUUID)
	l.Lock()
	defer l.Unlock()

	call, err := c.currentCall(chatUUID)
	if err != nil {
		return err
	}
	if call.Status.Terminal() {
		return nil // Ending an ended call is a no-op
	}

	if call.InitiatorUUID != userUUID {
		// Anyone else ending the call is just leaving it
		p := findParticipant(call, userUUID)
		if p == nil {
			return realtime.ErrForbidden
		}
		if p.Status == entity.ParticipantJoined && p.LeftAt == nil {
			now := time.Now()
			p.LeftAt = &now
			if err := c.callRepository.UpdateParticipant(p); err != nil {
				return err
			}
			if remainingJoined(call) == 0 {
				return c.terminate(call, userUUID)
			}
		}
		return nil
	}

	return c.terminate(call, userUUID)
}

func (c *callService) History(chatUUID, requesterUUID string) ([]*entity.Call, error) {
	ok, err := c.chatRepository.IsParticipant(chatUUID, requesterUUID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, realtime.ErrForbidden
	}
	return c.callRepository.ListByChat(chatUUID)
}

func (c *callService) SweepStale(ringTimeout time.Duration) {
	stale, err := c.callRepository.ListOngoingStartedBefore(time.Now().Add(-ringTimeout))
	if err != nil {
		c.Logf("Could not list stale calls: %v", err)
		return
	}

	for _, call := range stale {
		if everJoined(call) {
			continue // Somebody answered, the call is live
		}

		l := c.lockChat(call.ChatUUID)
		l.Lock()
		if err := c.callRepository.Terminate(call.UUID, entity.CallMissed, time.Now()); err != nil {
			if !errors.Is(err, repository.ErrCallTerminated) {
				c.Logf("Could not sweep call {%s}: %v", call.UUID, err)
			}
			l.Unlock()
			continue
		}
		c.hub.Publish(realtime.CallTopic(call.ChatUUID), realtime.CallEndEvent("Nobody answered the call"))
		c.Logf("Call {%s} in chat {%s} marked as missed", call.UUID, call.ChatUUID)
		l.Unlock()
	}
}

// Terminates the call. It becomes missed when nobody ever joined, ended
// otherwise. Racing terminations collapse into one, the losers are no-ops
func (c *callService) terminate(call *entity.Call, byUUID string) error {
	status := entity.CallEnded
	if !everJoined(call) {
		status = entity.CallMissed
	}

	if err := c.callRepository.Terminate(call.UUID, status, time.Now()); err != nil {
		if errors.Is(err, repository.ErrCallTerminated) {
			return nil
		}
		return err
	}

	username, err := c.directory.UsernameFor(byUUID)
	if err != nil {
		username = byUUID
	}
	c.hub.Publish(realtime.CallTopic(call.ChatUUID), realtime.CallEndEvent(fmt.Sprintf("%s ended the call", username)))
	c.Logf("Call {%s} in chat {%s} terminated as %s", call.UUID, call.ChatUUID, status)
	return nil
}

// Resolves the chat's most recent call, with its participants
func (c *callService) currentCall(chatUUID string) (*entity.Call, error) {
	chat, err := c.chatRepository.GetByUUID(chatUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, realtime.ErrNotFound
		}
		return nil, err
	}
	if chat.LatestCallUUID == nil {
		return nil, fmt.Errorf("%w: the chat has no call", realtime.ErrNotFound)
	}

	call, err := c.callRepository.GetByUUID(*chat.LatestCallUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, realtime.ErrNotFound
		}
		return nil, err
	}
	return call, nil
}

func findParticipant(call *entity.Call, userUUID string) *entity.CallParticipant {
	for i := range call.Participants {
		if call.Participants[i].UserUUID == userUUID {
			return &call.Participants[i]
		}
	}
	return nil
}

func remainingJoined(call *entity.Call) int {
	n := 0
	for _, p := range call.Participants {
		if p.Status == entity.ParticipantJoined && p.LeftAt == nil {
			n++
		}
	}
	return n
}

func everJoined(call *entity.Call) bool {
	for _, p := range call.Participants {
		if p.JoinedAt != nil {
			return true
		}
	}
	return false
}

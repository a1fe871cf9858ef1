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
	"strings"
	"sync"
	"testing"
	"time"

	"chatd/internal/entity"
	"chatd/internal/realtime"
	"chatd/internal/repository"

	"gorm.io/gorm"
)

type MockLogger struct{}

func (m *MockLogger) Logf(format string, v ...any) {
	fmt.Printf(format+"\n", v...)
}

// In-memory user repository
type MockUserRepository struct {
	users map[string]*entity.User
}

func NewMockUserRepository(users ...*entity.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[string]*entity.User)}
	for _, u := range users {
		m.users[u.UUID] = u
	}
	return m
}

func (m *MockUserRepository) Create(user *entity.User) error {
	if _, ok := m.users[user.UUID]; ok {
		return fmt.Errorf("Duplicate user")
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("Duplicate username")
		}
	}
	m.users[user.UUID] = user
	return nil
}

func (m *MockUserRepository) SoftDelete(uuid string) error {
	delete(m.users, uuid)
	return nil
}

func (m *MockUserRepository) GetForLogin(username string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) GetByUUID(uuid string) (*entity.User, error) {
	u, ok := m.users[uuid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	return m.GetForLogin(username)
}

func (m *MockUserRepository) GetAll() ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MockUserRepository) SavePushToken(token *entity.PushToken) error { return nil }

func (m *MockUserRepository) GetPushTokens(userUUID string) ([]entity.PushToken, error) {
	return nil, nil
}

// In-memory chat repository
type MockChatRepository struct {
	chats map[string]*entity.Chat
}

func NewMockChatRepository(chats ...*entity.Chat) *MockChatRepository {
	m := &MockChatRepository{chats: make(map[string]*entity.Chat)}
	for _, c := range chats {
		m.chats[c.UUID] = c
	}
	return m
}

func (m *MockChatRepository) Create(chat *entity.Chat) error {
	m.chats[chat.UUID] = chat
	return nil
}

func (m *MockChatRepository) Delete(uuid string) error {
	delete(m.chats, uuid)
	return nil
}

func (m *MockChatRepository) GetByUUID(uuid string) (*entity.Chat, error) {
	c, ok := m.chats[uuid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *MockChatRepository) GetForUser(userUUID string) ([]*entity.Chat, error) {
	var out []*entity.Chat
	for _, c := range m.chats {
		for _, p := range c.Participants {
			if p.UUID == userUUID {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (m *MockChatRepository) IsParticipant(chatUUID, userUUID string) (bool, error) {
	c, ok := m.chats[chatUUID]
	if !ok {
		return false, nil
	}
	for _, p := range c.Participants {
		if p.UUID == userUUID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockChatRepository) GetParticipantUUIDs(chatUUID string) ([]string, error) {
	c, ok := m.chats[chatUUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var out []string
	for _, p := range c.Participants {
		out = append(out, p.UUID)
	}
	return out, nil
}

// In-memory call repository, honoring the same invariants as the SQLite one
type MockCallRepository struct {
	mu    sync.Mutex
	calls map[string]*entity.Call
	chats *MockChatRepository
}

func NewMockCallRepository(chats *MockChatRepository) *MockCallRepository {
	return &MockCallRepository{calls: make(map[string]*entity.Call), chats: chats}
}

func (m *MockCallRepository) CreateWithParticipants(call *entity.Call, participantUUIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.calls {
		if existing.ChatUUID == call.ChatUUID && existing.Status == entity.CallOngoing {
			return repository.ErrOngoingCallExists
		}
	}
	for _, userUUID := range participantUUIDs {
		call.Participants = append(call.Participants, entity.CallParticipant{
			CallUUID: call.UUID,
			UserUUID: userUUID,
			Status:   entity.ParticipantInvited,
		})
	}
	m.calls[call.UUID] = call
	if chat, ok := m.chats.chats[call.ChatUUID]; ok {
		chat.LatestCallUUID = &call.UUID
	}
	return nil
}

func (m *MockCallRepository) GetByUUID(uuid string) (*entity.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calls[uuid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *MockCallRepository) ListByChat(chatUUID string) ([]*entity.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.Call
	for _, c := range m.calls {
		if c.ChatUUID == chatUUID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCallRepository) UpdateParticipant(p *entity.CallParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	call, ok := m.calls[p.CallUUID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range call.Participants {
		if call.Participants[i].UserUUID == p.UserUUID {
			call.Participants[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *MockCallRepository) Terminate(callUUID string, status entity.CallStatus, endedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	call, ok := m.calls[callUUID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if call.Status.Terminal() {
		return repository.ErrCallTerminated
	}
	call.Status = status
	call.EndedAt = &endedAt
	return nil
}

func (m *MockCallRepository) ListOngoingStartedBefore(t time.Time) ([]*entity.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.Call
	for _, c := range m.calls {
		if c.Status == entity.CallOngoing && c.StartedAt.Before(t) {
			out = append(out, c)
		}
	}
	return out, nil
}

type MockNotifier struct {
	notified []string // "user:eventType"
}

func (m *MockNotifier) Notify(userUUID, eventType string, payload []byte) {
	m.notified = append(m.notified, userUUID+":"+eventType)
}

// A topic member that just records what it receives
type recordingSub struct {
	id     string
	events [][]byte
}

func (r *recordingSub) ID() string                { return r.id }
func (r *recordingSub) Enqueue(event []byte) bool { r.events = append(r.events, event); return true }
func (r *recordingSub) CloseSlow()                {}

type callFixture struct {
	calls    CallService
	callRepo *MockCallRepository
	chatRepo *MockChatRepository
	hub      *realtime.Hub
	notifier *MockNotifier
	chatSub  *recordingSub
	callSub  *recordingSub
}

// A chat between alice and bob with live subscribers on both topics
func newCallFixture() *callFixture {
	alice := &entity.User{UUID: "alice", Username: "alice"}
	bob := &entity.User{UUID: "bob", Username: "bob"}

	userRepo := NewMockUserRepository(alice, bob)
	chatRepo := NewMockChatRepository(&entity.Chat{
		UUID:         "chat-42",
		IsGroup:      false,
		CreatorUUID:  "alice",
		Participants: []*entity.User{alice, bob},
	})
	callRepo := NewMockCallRepository(chatRepo)

	hub := realtime.NewHub(nil, &MockLogger{})
	chatSub := &recordingSub{id: "chat-sub"}
	callSub := &recordingSub{id: "call-sub"}
	hub.Join(realtime.ChatTopic("chat-42"), chatSub)
	hub.Join(realtime.CallTopic("chat-42"), callSub)

	notifier := &MockNotifier{}
	directory := NewDirectory(userRepo, chatRepo)

	return &callFixture{
		calls:    NewCallService(callRepo, chatRepo, hub, directory, notifier, &MockLogger{}),
		callRepo: callRepo,
		chatRepo: chatRepo,
		hub:      hub,
		notifier: notifier,
		chatSub:  chatSub,
		callSub:  callSub,
	}
}

func TestInitiateSeedsInvitedParticipants(t *testing.T) {
	f := newCallFixture()

	call, err := f.calls.Initiate("chat-42", "alice", "audio")
	if err != nil {
		t.Fatalf("Could not initiate the call: %v", err)
	}

	if call.Status != entity.CallOngoing {
		t.Errorf("Expected an ongoing call, got {%s}", call.Status)
	}
	if len(call.Participants) != 2 {
		t.Fatalf("Expected 2 participant rows, got %d", len(call.Participants))
	}
	for _, p := range call.Participants {
		if p.Status != entity.ParticipantInvited {
			t.Errorf("Participant {%s} was seeded as {%s}, not invited", p.UserUUID, p.Status)
		}
	}

	if len(f.chatSub.events) != 1 || len(f.callSub.events) != 1 {
		t.Error("The invitation was not published on both topics")
	}
	if len(f.notifier.notified) != 1 || f.notifier.notified[0] != "bob:call_invitation" {
		t.Errorf("Expected only bob to be pushed, got %v", f.notifier.notified)
	}
}

func TestSecondInitiateConflicts(t *testing.T) {
	f := newCallFixture()

	if _, err := f.calls.Initiate("chat-42", "alice", "audio"); err != nil {
		t.Fatalf("Could not initiate the first call: %v", err)
	}

	_, err := f.calls.Initiate("chat-42", "bob", "video")
	if !errors.Is(err, repository.ErrOngoingCallExists) {
		t.Errorf("Expected the ongoing call conflict, got %v", err)
	}
}

func TestInitiateByOutsiderIsForbidden(t *testing.T) {
	f := newCallFixture()

	_, err := f.calls.Initiate("chat-42", "mallory", "audio")
	if !errors.Is(err, realtime.ErrForbidden) {
		t.Errorf("Expected a forbidden error, got %v", err)
	}
}

func TestJoinRecordsTheParticipant(t *testing.T) {
	f := newCallFixture()

	call, _ := f.calls.Initiate("chat-42", "alice", "audio")
	if err := f.calls.Join("chat-42", "bob"); err != nil {
		t.Fatalf("Could not join the call: %v", err)
	}

	stored, _ := f.callRepo.GetByUUID(call.UUID)
	for _, p := range stored.Participants {
		if p.UserUUID == "bob" {
			if p.Status != entity.ParticipantJoined || p.JoinedAt == nil {
				t.Errorf("Bob's row was not moved to joined: %+v", p)
			}
		}
	}

	// Joining twice is a no-op, not an error
	if err := f.calls.Join("chat-42", "bob"); err != nil {
		t.Errorf("A repeated join came back with %v", err)
	}
}

func TestDeclineIsTerminalForTheParticipant(t *testing.T) {
	f := newCallFixture()

	f.calls.Initiate("chat-42", "alice", "audio")
	if err := f.calls.Decline("chat-42", "bob"); err != nil {
		t.Fatalf("Could not decline the call: %v", err)
	}

	if err := f.calls.Join("chat-42", "bob"); !errors.Is(err, realtime.ErrInvalidTransition) {
		t.Errorf("A join after a decline was accepted: %v", err)
	}
}

func TestEndByInitiator(t *testing.T) {
	f := newCallFixture()

	call, _ := f.calls.Initiate("chat-42", "alice", "audio")
	f.calls.Join("chat-42", "bob")

	if err := f.calls.End("chat-42", "alice"); err != nil {
		t.Fatalf("Could not end the call: %v", err)
	}

	stored, _ := f.callRepo.GetByUUID(call.UUID)
	if stored.Status != entity.CallEnded || stored.EndedAt == nil {
		t.Errorf("The call did not end cleanly: status {%s}", stored.Status)
	}

	// Ending twice is a no-op, joining is not
	if err := f.calls.End("chat-42", "alice"); err != nil {
		t.Errorf("A repeated end came back with %v", err)
	}
	if err := f.calls.Join("chat-42", "bob"); !errors.Is(err, realtime.ErrInvalidTransition) {
		t.Errorf("A join on an ended call was accepted: %v", err)
	}
}

func TestEndWithNoJoinsIsMissed(t *testing.T) {
	f := newCallFixture()

	call, _ := f.calls.Initiate("chat-42", "alice", "audio")
	if err := f.calls.End("chat-42", "alice"); err != nil {
		t.Fatalf("Could not end the call: %v", err)
	}

	stored, _ := f.callRepo.GetByUUID(call.UUID)
	if stored.Status != entity.CallMissed {
		t.Errorf("A call nobody answered ended as {%s}, not missed", stored.Status)
	}
}

func TestLastLeaveEndsTheCall(t *testing.T) {
	f := newCallFixture()

	call, _ := f.calls.Initiate("chat-42", "alice", "audio")
	f.calls.Join("chat-42", "alice")
	f.calls.Join("chat-42", "bob")

	if err := f.calls.Leave("chat-42", "alice"); err != nil {
		t.Fatalf("Could not leave the call: %v", err)
	}
	stored, _ := f.callRepo.GetByUUID(call.UUID)
	if stored.Status != entity.CallOngoing {
		t.Fatal("The call ended while a participant was still joined")
	}

	if err := f.calls.Leave("chat-42", "bob"); err != nil {
		t.Fatalf("Could not leave the call: %v", err)
	}
	stored, _ = f.callRepo.GetByUUID(call.UUID)
	if stored.Status != entity.CallEnded {
		t.Errorf("The call did not end when the last participant left: {%s}", stored.Status)
	}
}

func TestEndByNonInitiatorIsALeave(t *testing.T) {
	f := newCallFixture()

	call, _ := f.calls.Initiate("chat-42", "alice", "audio")
	f.calls.Join("chat-42", "alice")
	f.calls.Join("chat-42", "bob")

	if err := f.calls.End("chat-42", "bob"); err != nil {
		t.Fatalf("Could not end from bob's side: %v", err)
	}

	stored, _ := f.callRepo.GetByUUID(call.UUID)
	if stored.Status != entity.CallOngoing {
		t.Errorf("Bob hanging up ended the call for alice too: {%s}", stored.Status)
	}
}

func TestLeaveWithNoCallIsANoOp(t *testing.T) {
	f := newCallFixture()

	if err := f.calls.Leave("chat-42", "bob"); err != nil {
		t.Errorf("Leaving with no call came back with %v", err)
	}
}

func TestSweepMarksUnansweredCallsMissed(t *testing.T) {
	f := newCallFixture()

	call, _ := f.calls.Initiate("chat-42", "alice", "audio")
	call.StartedAt = time.Now().Add(-10 * time.Minute)

	f.calls.SweepStale(2 * time.Minute)

	stored, _ := f.callRepo.GetByUUID(call.UUID)
	if stored.Status != entity.CallMissed {
		t.Errorf("An unanswered stale call survived the sweep as {%s}", stored.Status)
	}

	if len(f.callSub.events) == 0 {
		t.Fatal("No event was published for the swept call")
	}
	last := f.callSub.events[len(f.callSub.events)-1]
	if !strings.Contains(string(last), "call_end") {
		t.Errorf("Expected a call_end event, got %s", last)
	}
}

func TestSweepSparesAnsweredCalls(t *testing.T) {
	f := newCallFixture()

	call, _ := f.calls.Initiate("chat-42", "alice", "audio")
	f.calls.Join("chat-42", "bob")
	call.StartedAt = time.Now().Add(-10 * time.Minute)

	f.calls.SweepStale(2 * time.Minute)

	stored, _ := f.callRepo.GetByUUID(call.UUID)
	if stored.Status != entity.CallOngoing {
		t.Errorf("An answered call was swept to {%s}", stored.Status)
	}
}

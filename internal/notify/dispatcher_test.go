/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package notify

import (
	"fmt"
	"testing"
	"time"

	"chatd/internal/entity"
)

type MockLogger struct{}

func (m *MockLogger) Logf(format string, v ...any) {
	fmt.Printf(format+"\n", v...)
}

type MockTokenSource struct {
	tokens map[string][]entity.PushToken
	err    error
}

func (m *MockTokenSource) GetPushTokens(userUUID string) ([]entity.PushToken, error) {
	return m.tokens[userUUID], m.err
}

type MockSender struct {
	pushed chan entity.PushToken
	err    error
}

func (m *MockSender) Push(token entity.PushToken, eventType string, payload []byte) error {
	m.pushed <- token
	return m.err
}

func TestNotifyReachesEveryDevice(t *testing.T) {
	source := &MockTokenSource{tokens: map[string][]entity.PushToken{
		"alice": {
			{Token: "device-1", UserUUID: "alice", Platform: "android"},
			{Token: "device-2", UserUUID: "alice", Platform: "ios"},
		},
	}}
	sender := &MockSender{pushed: make(chan entity.PushToken, 4)}

	d := NewDispatcher(source, sender, &MockLogger{})
	d.Notify("alice", "call_invitation", []byte(`{"type":"call_initiate"}`))

	for i := 0; i < 2; i++ {
		select {
		case <-sender.pushed:
		case <-time.After(2 * time.Second):
			t.Fatalf("Only %d of 2 devices were pushed in time", i)
		}
	}
}

func TestNotifyWithNoDevicesIsANoOp(t *testing.T) {
	source := &MockTokenSource{tokens: map[string][]entity.PushToken{}}
	sender := &MockSender{pushed: make(chan entity.PushToken, 4)}

	d := NewDispatcher(source, sender, &MockLogger{})
	d.Notify("nobody", "call_invitation", []byte(`{}`))

	select {
	case <-sender.pushed:
		t.Error("A push went out for a user with no devices")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifySwallowsSenderErrors(t *testing.T) {
	source := &MockTokenSource{tokens: map[string][]entity.PushToken{
		"alice": {{Token: "device-1", UserUUID: "alice", Platform: "android"}},
	}}
	sender := &MockSender{pushed: make(chan entity.PushToken, 4), err: fmt.Errorf("gateway down")}

	d := NewDispatcher(source, sender, &MockLogger{})

	// Must neither panic nor propagate anything to the caller
	d.Notify("alice", "call_invitation", []byte(`{}`))

	select {
	case <-sender.pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("The push was never attempted")
	}
}

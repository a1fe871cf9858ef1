/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package notify

import (
	"chatd/internal/entity"
	"chatd/internal/nlog"
)

// Looks up the registered device push tokens of a user
type TokenSource interface {
	GetPushTokens(userUUID string) ([]entity.PushToken, error)
}

// Ships one event to one device. The wire mechanics (FCM, APNS, ...) live
// behind this interface
type PushSender interface {
	Push(token entity.PushToken, eventType string, payload []byte) error
}

// The dispatcher reaches users that hold no live connection, one push per
// registered device. Everything here is best effort and asynchronous, a
// failed push is logged and forgotten, the caller never waits nor fails
type Dispatcher struct {
	tokens TokenSource
	sender PushSender
	logger nlog.Logger
}

func NewDispatcher(tokens TokenSource, sender PushSender, logger nlog.Logger) *Dispatcher {
	return &Dispatcher{
		tokens: tokens,
		sender: sender,
		logger: logger,
	}
}

// Pushes the event to every device of the user. Fire and forget
func (d *Dispatcher) Notify(userUUID, eventType string, payload []byte) {
	go func() {
		deviceTokens, err := d.tokens.GetPushTokens(userUUID)
		if err != nil {
			d.logger.Logf("Could not look up the devices of {%s}: %v", userUUID, err)
			return
		}

		for _, t := range deviceTokens {
			if err := d.sender.Push(t, eventType, payload); err != nil {
				d.logger.Logf("Push {%s} to device {%s} of {%s} failed: %v", eventType, t.Token, userUUID, err)
			}
		}
	}()
}

// Sender that only logs. Stands in until a real delivery channel is wired
type LogSender struct {
	Logger nlog.Logger
}

func (s *LogSender) Push(token entity.PushToken, eventType string, payload []byte) error {
	s.Logger.Logf("Would push {%s} to %s device {%s}: %s", eventType, token.Platform, token.Token, payload)
	return nil
}

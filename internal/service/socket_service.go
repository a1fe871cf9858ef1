/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"fmt"

	"chatd/internal/entity"
	"chatd/internal/nlog"
	"chatd/internal/realtime"
)

// Routes the frames of the live connections to the owning service. Chat
// sockets only carry messages, call sockets only carry signaling, a frame
// on the wrong socket kind is rejected as malformed
type SocketDispatcher struct {
	messages MessageService // Persists chat messages
	calls    CallService    // Runs the call state machine
	hub      *realtime.Hub  // Fans events out
	logger   nlog.Logger    // Logs a format string
}

func NewSocketDispatcher(messages MessageService, calls CallService, hub *realtime.Hub, logger nlog.Logger) *SocketDispatcher {
	return &SocketDispatcher{
		messages: messages,
		calls:    calls,
		hub:      hub,
		logger:   logger,
	}
}

func (d *SocketDispatcher) HandleFrame(c *realtime.Client, f *realtime.Frame) error {
	switch c.Kind() {
	case realtime.ChatSocket:
		return d.handleChatFrame(c, f)
	case realtime.CallSocket:
		return d.handleCallFrame(c, f)
	}
	return fmt.Errorf("%w: unknown socket kind", realtime.ErrMalformedFrame)
}

func (d *SocketDispatcher) handleChatFrame(c *realtime.Client, f *realtime.Frame) error {
	if f.Type != realtime.FrameMessage {
		return fmt.Errorf("%w: a chat socket only carries message frames", realtime.ErrMalformedFrame)
	}

	if _, err := d.messages.Send(c.ChatUUID(), c.UserUUID(), entity.MessageText, f.Content, ""); err != nil {
		return err
	}

	d.hub.Publish(realtime.ChatTopic(c.ChatUUID()), realtime.MessageEvent(f.Content, c.Username()))
	return nil
}

func (d *SocketDispatcher) handleCallFrame(c *realtime.Client, f *realtime.Frame) error {
	switch f.Type {
	case realtime.FrameCallInitiate:
		_, err := d.calls.Initiate(c.ChatUUID(), c.UserUUID(), f.CallType)
		return err

	case realtime.FrameCallJoin:
		return d.calls.Join(c.ChatUUID(), c.UserUUID())

	case realtime.FrameCallDecline:
		return d.calls.Decline(c.ChatUUID(), c.UserUUID())

	case realtime.FrameCallEnd:
		return d.calls.End(c.ChatUUID(), c.UserUUID())

	// The SDP and ICE payloads are relayed verbatim, only the sender
	// identity is attached server-side
	case realtime.FrameSDPOffer:
		d.hub.Publish(realtime.CallTopic(c.ChatUUID()),
			realtime.SignalEvent(realtime.FrameSDPOffer, "offer", f.Offer, c.Username()))
		return nil

	case realtime.FrameSDPAnswer:
		d.hub.Publish(realtime.CallTopic(c.ChatUUID()),
			realtime.SignalEvent(realtime.FrameSDPAnswer, "answer", f.Answer, c.Username()))
		return nil

	case realtime.FrameICECandidate:
		d.hub.Publish(realtime.CallTopic(c.ChatUUID()),
			realtime.SignalEvent(realtime.FrameICECandidate, "candidate", f.Candidate, c.Username()))
		return nil
	}

	return fmt.Errorf("%w: a call socket does not carry {%s} frames", realtime.ErrMalformedFrame, f.Type)
}

// A dropped call socket of a joined participant counts as leaving the call
func (d *SocketDispatcher) HandleDisconnect(c *realtime.Client) {
	if c.Kind() != realtime.CallSocket {
		return
	}
	if err := d.calls.Leave(c.ChatUUID(), c.UserUUID()); err != nil {
		d.logger.Logf("Could not record the leave of {%s} from chat {%s}: %v", c.UserUUID(), c.ChatUUID(), err)
	}
}

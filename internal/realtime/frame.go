/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package realtime

import (
	"encoding/json"
	"fmt"
)

// The tags a client may send on a socket. Anything else is rejected as malformed
type FrameType string

const (
	FrameMessage      FrameType = "message"
	FrameCallInitiate FrameType = "call_initiate"
	FrameCallJoin     FrameType = "call_join"
	FrameCallDecline  FrameType = "call_decline"
	FrameSDPOffer     FrameType = "sdp_offer"
	FrameSDPAnswer    FrameType = "sdp_answer"
	FrameICECandidate FrameType = "ice_candidate"
	FrameCallEnd      FrameType = "call_end"
)

// An inbound frame, as decoded off the wire. Only the fields of its tag are
// meaningful. The SDP and ICE payloads are relayed verbatim, so they stay raw
type Frame struct {
	Type      FrameType       `json:"type"`
	Content   string          `json:"content,omitempty"`
	CallType  string          `json:"call_type,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Decodes and validates an inbound frame. Each tag has its own required
// fields, a frame missing them (or carrying an unknown tag) comes back as
// ErrMalformedFrame. The connection survives a malformed frame, the caller
// only reports the error to the sender
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch f.Type {
	case FrameMessage:
		if f.Content == "" {
			return nil, fmt.Errorf("%w: a message frame needs a content field", ErrMalformedFrame)
		}
	case FrameCallInitiate:
		// call_type is optional, the engine defaults it
	case FrameSDPOffer:
		if len(f.Offer) == 0 {
			return nil, fmt.Errorf("%w: an sdp_offer frame needs an offer field", ErrMalformedFrame)
		}
	case FrameSDPAnswer:
		if len(f.Answer) == 0 {
			return nil, fmt.Errorf("%w: an sdp_answer frame needs an answer field", ErrMalformedFrame)
		}
	case FrameICECandidate:
		if len(f.Candidate) == 0 {
			return nil, fmt.Errorf("%w: an ice_candidate frame needs a candidate field", ErrMalformedFrame)
		}
	case FrameCallJoin, FrameCallDecline, FrameCallEnd:
		// No payload
	default:
		return nil, fmt.Errorf("%w: unknown frame tag {%s}", ErrMalformedFrame, f.Type)
	}
	return &f, nil
}

// The outbound events mirror the inbound tags, each with the sender identity
// attached server-side under the field name its tag historically used
// (`user` for chat messages, `caller` for call invitations, `sender` for
// the signaling relays). A client-supplied sender is never trusted

// Builds a chat message event
func MessageEvent(content, senderUsername string) []byte {
	return mustMarshal(map[string]any{
		"type":    FrameMessage,
		"content": content,
		"user":    senderUsername,
	})
}

// Builds a call invitation event, published on the chat topic and pushed to
// offline participants
func CallInvitationEvent(callUUID, callType, callerUsername string) []byte {
	return mustMarshal(map[string]any{
		"type":      FrameCallInitiate,
		"call":      callUUID,
		"call_type": callType,
		"caller":    callerUsername,
	})
}

// Builds a relayed signaling event. tag must be one of the sdp/ice tags and
// field its payload field name (offer, answer or candidate)
func SignalEvent(tag FrameType, field string, payload json.RawMessage, senderUsername string) []byte {
	return mustMarshal(map[string]any{
		"type":   tag,
		field:    payload,
		"sender": senderUsername,
	})
}

// Builds a call participant update event (join or decline)
func CallParticipantEvent(eventType, callUUID, username string) []byte {
	return mustMarshal(map[string]any{
		"type": eventType,
		"call": callUUID,
		"user": username,
	})
}

// Builds a call end event carrying a human readable reason
func CallEndEvent(message string) []byte {
	return mustMarshal(map[string]any{
		"type":    FrameCallEnd,
		"message": message,
	})
}

// Builds an error event, sent to the offending connection only
func ErrorEvent(err error) []byte {
	return mustMarshal(map[string]any{
		"type":  "error",
		"error": err.Error(),
	})
}

// The event builders only marshal maps of strings and raw JSON, which cannot fail
func mustMarshal(v map[string]any) []byte {
	data, _ := json.Marshal(v)
	return data
}

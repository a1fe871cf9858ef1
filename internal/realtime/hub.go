/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package realtime

import (
	"context"
	"fmt"
	"sync"

	"chatd/internal/nlog"
)

// Topic names, one namespace per room kind. Call rooms are keyed by their
// chat, a chat has at most one ongoing call at a time
func ChatTopic(chatUUID string) string { return fmt.Sprintf("chat:%s", chatUUID) }
func CallTopic(chatUUID string) string { return fmt.Sprintf("call:%s", chatUUID) }

// A member of a topic. Enqueue hands the event to the member's outbound
// queue without blocking, returning false when the queue is full. The hub
// then calls CloseSlow outside its lock, a persistently slow consumer is
// disconnected rather than letting its backlog grow without bound
type Subscriber interface {
	ID() string
	Enqueue(event []byte) bool
	CloseSlow()
}

// The hub groups live connections by topic and fans events out to every
// member. Membership changes and publishes serialize on one mutex, so a
// publish always sees a consistent membership set and events of one topic
// reach every member in publish order.
//
// A hub may carry a Backend. Published events are then also broadcast to
// peer processes, and events received from peers are delivered to local
// members as if published here
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[string]Subscriber

	backend Backend
	logger  nlog.Logger
}

func NewHub(backend Backend, logger nlog.Logger) *Hub {
	return &Hub{
		topics:  make(map[string]map[string]Subscriber),
		backend: backend,
		logger:  logger,
	}
}

// Adds the subscriber to the topic. Idempotent
func (h *Hub) Join(topic string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.topics[topic]
	if members == nil {
		members = make(map[string]Subscriber)
		h.topics[topic] = members
	}
	members[sub.ID()] = sub
}

// Removes the subscriber from the topic. Idempotent, and a topic left with
// no members is reclaimed
func (h *Hub) Leave(topic string, subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.topics[topic]
	if members == nil {
		return
	}
	delete(members, subID)
	if len(members) == 0 {
		delete(h.topics, topic)
	}
}

// Delivers the event to every current member of the topic except the
// excluded subscriber ids, and broadcasts it to peer processes when a
// backend is attached. A topic with no members is a no-op, not an error.
// One member's full queue never stalls delivery to the others
func (h *Hub) Publish(topic string, event []byte, exclude ...string) {
	slow := h.deliverLocal(topic, event, exclude...)
	for _, sub := range slow {
		h.logger.Logf("Dropping slow consumer {%s} on topic {%s}", sub.ID(), topic)
		sub.CloseSlow()
	}

	if h.backend != nil {
		if err := h.backend.Broadcast(topic, event); err != nil {
			h.logger.Logf("Could not broadcast on topic {%s}: %v", topic, err)
		}
	}
}

// Hands the event to local members, returning the ones whose queue was full.
// The slow ones are closed by the caller, outside the lock
func (h *Hub) deliverLocal(topic string, event []byte, exclude ...string) []Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.topics[topic]
	if len(members) == 0 {
		return nil
	}

	var slow []Subscriber
	for id, sub := range members {
		if excluded(id, exclude) {
			continue
		}
		if !sub.Enqueue(event) {
			slow = append(slow, sub)
		}
	}
	return slow
}

// Runs the backend receive loop, feeding peer events to local members.
// Blocks until the context is cancelled. A hub with no backend returns right away
func (h *Hub) Run(ctx context.Context) error {
	if h.backend == nil {
		return nil
	}
	return h.backend.Receive(ctx, func(topic string, event []byte) {
		slow := h.deliverLocal(topic, event)
		for _, sub := range slow {
			h.logger.Logf("Dropping slow consumer {%s} on topic {%s}", sub.ID(), topic)
			sub.CloseSlow()
		}
	})
}

func excluded(id string, exclude []string) bool {
	for _, e := range exclude {
		if e == id {
			return true
		}
	}
	return false
}

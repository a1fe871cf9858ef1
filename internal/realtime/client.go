/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package realtime

import (
	"sync"
	"sync/atomic"

	"chatd/internal/nlog"

	"github.com/gorilla/websocket"
)

// The kind of socket a client opened. A chat socket carries messages, a
// call socket carries the call signaling frames
type SocketKind int

const (
	ChatSocket SocketKind = iota
	CallSocket
)

// The states a connection moves through. Authentication and authorization
// happen before the client is even built, so a live client starts at Open
type connState int32

const (
	stateOpen connState = iota
	stateClosing
)

// Routes the frames a client produces and observes its disconnection.
// Implemented by the service layer, the client itself only parses and relays
type Dispatcher interface {
	HandleFrame(c *Client, f *Frame) error
	HandleDisconnect(c *Client)
}

// The subset of the websocket connection the client uses. Kept small so
// tests can drive a client without a network
type wireConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// One live authenticated connection. A reader goroutine parses and
// dispatches inbound frames, a writer goroutine drains the bounded outbound
// queue. Whatever path the connection dies on, teardown leaves its topic,
// unregisters it and closes the transport exactly once
type Client struct {
	id       string
	userUUID string
	username string
	chatUUID string
	kind     SocketKind
	topic    string

	conn       wireConn
	hub        *Hub
	registry   *Registry
	dispatcher Dispatcher
	logger     nlog.Logger

	outbound  chan []byte
	done      chan struct{}
	closeOnce sync.Once
	state     atomic.Int32
}

func NewClient(id, userUUID, username, chatUUID string, kind SocketKind, topic string,
	conn wireConn, hub *Hub, registry *Registry, dispatcher Dispatcher,
	queueSize int, logger nlog.Logger) *Client {

	return &Client{
		id:         id,
		userUUID:   userUUID,
		username:   username,
		chatUUID:   chatUUID,
		kind:       kind,
		topic:      topic,
		conn:       conn,
		hub:        hub,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
		outbound:   make(chan []byte, queueSize),
		done:       make(chan struct{}),
	}
}

func (c *Client) ID() string       { return c.id }
func (c *Client) UserUUID() string { return c.userUUID }
func (c *Client) Username() string { return c.username }
func (c *Client) ChatUUID() string { return c.chatUUID }
func (c *Client) Kind() SocketKind { return c.kind }
func (c *Client) Topic() string    { return c.topic }

// Registers the client and joins its topic, then serves the connection
// until it drops. Blocks for the connection's lifetime
func (c *Client) Run() {
	c.registry.Register(c.id, c.userUUID)
	c.hub.Join(c.topic, c)

	go c.writePump()
	c.readPump()
}

// Hands an event to the outbound queue without blocking. False means the
// queue is full. A closing client swallows the event and reports success,
// it is past caring
func (c *Client) Enqueue(event []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}

	select {
	case c.outbound <- event:
		return true
	default:
		return false
	}
}

// Called by the hub when this client's queue stayed full during a publish
func (c *Client) CloseSlow() {
	c.logger.Logf("Connection {%s} of user {%s} is too slow. Dropping it", c.id, c.userUUID)
	c.teardown()
}

func (c *Client) readPump() {
	defer c.teardown()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		frame, err := ParseFrame(data)
		if err != nil {
			// A malformed frame is reported to this connection only, nothing
			// is broadcast and the connection stays open
			c.Enqueue(ErrorEvent(err))
			continue
		}

		if err := c.dispatcher.HandleFrame(c, frame); err != nil {
			c.Enqueue(ErrorEvent(err))
		}
	}
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case event := <-c.outbound:
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				c.teardown()
				return
			}
		}
	}
}

// Releases everything the connection holds. Runs on every exit path and is
// safe to run more than once
func (c *Client) teardown() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(stateClosing))
		close(c.done)

		c.hub.Leave(c.topic, c.id)
		c.registry.Unregister(c.id)
		c.conn.Close()

		c.dispatcher.HandleDisconnect(c)
		c.logger.Logf("Connection {%s} of user {%s} closed", c.id, c.userUUID)
	})
}

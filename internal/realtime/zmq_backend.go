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
	"time"

	"chatd/internal/nlog"

	zmq "github.com/pebbe/zmq4"
)

// Prepends the prefix `tcp://` to address
func getFullAddress(address string) string {
	return fmt.Sprintf("tcp://%s", address)
}

// Backend implementation over ZeroMQ. Each process binds one PUB socket and
// subscribes to the PUB socket of every peer, so a publish on any process
// reaches the members of every process. Messages travel as the multipart
// frame [topic, origin, payload], the origin identifier keeps a process from
// delivering its own broadcasts back to itself when peer lists overlap
type ZMQBackend struct {
	ctx    *zmq.Context
	pub    *zmq.Socket
	sub    *zmq.Socket
	poller *zmq.Poller

	pubMu  sync.Mutex // PUB sockets are not safe for concurrent sends
	origin string
	logger nlog.Logger
}

// Creates a backend bound on bindAddress and subscribed to every peer address.
// origin must be unique per process
func NewZMQBackend(origin, bindAddress string, peers []string, logger nlog.Logger) (*ZMQBackend, error) {

	ctx, err := zmq.NewContext()
	if err != nil {
		return nil, err
	}

	pub, err := ctx.NewSocket(zmq.PUB)
	if err != nil {
		ctx.Term()
		return nil, fmt.Errorf("Error during the creation of the pub ZMQ4 socket")
	}
	if err := pub.Bind(getFullAddress(bindAddress)); err != nil {
		pub.Close()
		ctx.Term()
		return nil, fmt.Errorf("Could not bind the pub socket on %s", bindAddress)
	}

	sub, err := ctx.NewSocket(zmq.SUB)
	if err != nil {
		pub.Close()
		ctx.Term()
		return nil, fmt.Errorf("Error during the creation of the sub ZMQ4 socket")
	}
	if err := sub.SetSubscribe(""); err != nil {
		sub.Close()
		pub.Close()
		ctx.Term()
		return nil, err
	}
	for _, peer := range peers {
		if err := sub.Connect(getFullAddress(peer)); err != nil {
			sub.Close()
			pub.Close()
			ctx.Term()
			return nil, fmt.Errorf("Could not connect to peer %s", peer)
		}
	}

	p := zmq.NewPoller()
	p.Add(sub, zmq.POLLIN)

	return &ZMQBackend{
		ctx:    ctx,
		pub:    pub,
		sub:    sub,
		poller: p,
		origin: origin,
		logger: logger,
	}, nil
}

func (b *ZMQBackend) Broadcast(topic string, event []byte) error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	if _, err := b.pub.SendMessage(topic, b.origin, event); err != nil {
		return fmt.Errorf("Error during broadcast on topic %s", topic)
	}
	return nil
}

func (b *ZMQBackend) Receive(ctx context.Context, deliver func(topic string, event []byte)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		sockets, err := b.poller.Poll(100 * time.Millisecond)
		if err != nil {
			return fmt.Errorf("Polling error: %v", err)
		}
		if len(sockets) == 0 {
			continue
		}

		msg, err := b.sub.RecvMessageBytes(zmq.DONTWAIT)
		if err != nil {
			b.logger.Logf("Recv network error: %v", err)
			continue
		}
		if len(msg) != 3 {
			b.logger.Logf("Dropping malformed peer broadcast with %d parts", len(msg))
			continue
		}

		topic, origin, event := string(msg[0]), string(msg[1]), msg[2]
		if origin == b.origin {
			continue
		}
		deliver(topic, event)
	}
}

func (b *ZMQBackend) Close() {
	b.sub.Close()
	b.pub.Close()
	b.ctx.Term()
}

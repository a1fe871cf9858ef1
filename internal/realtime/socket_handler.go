/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package realtime

import (
	"net/http"

	"chatd/internal/nlog"
	"chatd/internal/token"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Validates the bearer token a socket presented
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// Answers the identity and membership questions a socket upgrade needs.
// Implemented by the service layer
type Directory interface {
	IsParticipant(chatUUID, userUUID string) (bool, error)
	UsernameFor(userUUID string) (string, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Upgrades the socket routes. A connection authenticates with the token in
// its query string and must belong to a participant of the addressed chat,
// anything less is rejected before the session exists
type SocketHandler struct {
	tokens     TokenValidator
	directory  Directory
	hub        *Hub
	registry   *Registry
	dispatcher Dispatcher
	queueSize  int
	logger     nlog.Logger
}

func NewSocketHandler(tokens TokenValidator, directory Directory, hub *Hub, registry *Registry,
	dispatcher Dispatcher, queueSize int, logger nlog.Logger) *SocketHandler {

	return &SocketHandler{
		tokens:     tokens,
		directory:  directory,
		hub:        hub,
		registry:   registry,
		dispatcher: dispatcher,
		queueSize:  queueSize,
		logger:     logger,
	}
}

// GET /ws/chat/{uuid}?token=...
func (h *SocketHandler) ServeChat(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, ChatSocket)
}

// GET /ws/call/{uuid}?token=...
func (h *SocketHandler) ServeCall(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, CallSocket)
}

func (h *SocketHandler) serve(w http.ResponseWriter, r *http.Request, kind SocketKind) {
	chatUUID := mux.Vars(r)["uuid"]

	claims, err := h.tokens.Validate(r.URL.Query().Get("token"))
	if err != nil {
		h.logger.Logf("Rejected socket for chat {%s}: %v", chatUUID, err)
		http.Error(w, ErrUnauthenticated.Error(), http.StatusUnauthorized)
		return
	}

	ok, err := h.directory.IsParticipant(chatUUID, claims.UserUUID)
	if err != nil {
		http.Error(w, "Could not verify chat membership", http.StatusInternalServerError)
		return
	}
	if !ok {
		h.logger.Logf("Rejected socket for chat {%s}: user {%s} is not a participant", chatUUID, claims.UserUUID)
		http.Error(w, ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	username, err := h.directory.UsernameFor(claims.UserUUID)
	if err != nil {
		http.Error(w, "Could not resolve the user", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Logf("Upgrade error on chat {%s}: %v", chatUUID, err)
		return
	}

	topic := ChatTopic(chatUUID)
	if kind == CallSocket {
		topic = CallTopic(chatUUID)
	}

	client := NewClient(uuid.NewString(), claims.UserUUID, username, chatUUID, kind, topic,
		conn, h.hub, h.registry, h.dispatcher, h.queueSize, h.logger)

	h.logger.Logf("Connection {%s} of user {%s} opened on topic {%s}", client.ID(), username, topic)
	go client.Run()
}

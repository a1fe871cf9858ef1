/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"net/http"

	"chatd/internal/service"

	"github.com/gorilla/mux"
)

type chatReqFields struct {
	Name         string   `json:"name"`
	IsGroup      bool     `json:"is-group"`
	Participants []string `json:"participants"`
}

// ChatHandler manages the chats and their persisted history
type ChatHandler struct {
	chatService    service.ChatService
	messageService service.MessageService
	callService    service.CallService
}

func NewChatHandler(chatService service.ChatService, messageService service.MessageService, callService service.CallService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		messageService: messageService,
		callService:    callService,
	}
}

// Creates a chat between the authenticated user and the given participants
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request chatReqFields
	if !decodeJSON(w, r, &request) {
		return
	}

	chat, err := h.chatService.Create(AuthenticatedUser(r), request.Name, request.IsGroup, request.Participants)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

// Lists the chats of the authenticated user, most recently active first
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chatService.ListForUser(AuthenticatedUser(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

// Retrieves one chat, with its participants
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chatService.Get(mux.Vars(r)["uuid"], AuthenticatedUser(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// Deletes a chat, with everything it owns
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.Delete(mux.Vars(r)["uuid"], AuthenticatedUser(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Retrieves the messages of a chat, oldest first
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messageService.History(mux.Vars(r)["uuid"], AuthenticatedUser(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// Retrieves the calls of a chat, most recent first
func (h *ChatHandler) Calls(w http.ResponseWriter, r *http.Request) {
	calls, err := h.callService.History(mux.Vars(r)["uuid"], AuthenticatedUser(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calls)
}

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
)

type deviceReqFields struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// DeviceHandler manages the device push token registrations and the account itself
type DeviceHandler struct {
	userService service.UserService
}

func NewDeviceHandler(userService service.UserService) *DeviceHandler {
	return &DeviceHandler{
		userService: userService,
	}
}

// Registers (or refreshes) a device push token for the authenticated user
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request deviceReqFields
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := h.userService.RegisterDevice(AuthenticatedUser(r), request.Token, request.Platform); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Deletes the authenticated user's account, with every chat it takes part in
func (h *DeviceHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAccount(AuthenticatedUser(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

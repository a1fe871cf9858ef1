/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatd/internal/realtime"
	"chatd/internal/repository"
)

// Writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Decodes the request body into v, answering 400 on failure.
// Returns false when the request was already answered
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Error occurred while parsing the request body", http.StatusBadRequest)
		return false
	}
	return true
}

// Maps the domain errors to HTTP statuses
func statusForError(err error) int {
	switch {
	case errors.Is(err, realtime.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, realtime.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, realtime.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, realtime.ErrInvalidTransition), errors.Is(err, repository.ErrOngoingCallExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Answers with the error's message and its mapped status
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}

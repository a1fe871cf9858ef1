/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package realtime

import "sync"

// The session registry tracks which live connections belong to which user.
// A user may hold several connections at once (one per device), so the
// mapping is kept in both directions. Nothing here survives a restart,
// the registry is rebuilt empty on process start
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]string              // connection id -> user uuid
	byUser map[string]map[string]struct{} // user uuid -> set of connection ids
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]string),
		byUser: make(map[string]map[string]struct{}),
	}
}

// Records that the connection with the given id belongs to the given user
func (r *Registry) Register(connID, userUUID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byConn[connID] = userUUID
	if r.byUser[userUUID] == nil {
		r.byUser[userUUID] = make(map[string]struct{})
	}
	r.byUser[userUUID][connID] = struct{}{}
}

// Removes the connection with the given id. Unknown ids are a no-op
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userUUID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)

	set := r.byUser[userUUID]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.byUser, userUUID)
	}
}

// Returns the ids of the live connections of the given user, possibly none
func (r *Registry) ConnectionsFor(userUUID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userUUID]
	out := make([]string, 0, len(set))
	for connID := range set {
		out = append(out, connID)
	}
	return out
}

// Returns the user the connection with the given id belongs to
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userUUID, ok := r.byConn[connID]
	return userUUID, ok
}

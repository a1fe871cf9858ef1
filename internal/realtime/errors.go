/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package realtime

import "errors"

// The errors of the live connection layer. The first two are fatal to the
// connection that caused them, the others are recovered per frame and
// reported to the offending connection only
var (
	ErrUnauthenticated   = errors.New("the connection could not be authenticated")
	ErrForbidden         = errors.New("the user is not a participant of the addressed chat")
	ErrMalformedFrame    = errors.New("the frame is missing required fields or is not valid JSON")
	ErrNotFound          = errors.New("the referenced chat or call does not exist")
	ErrInvalidTransition = errors.New("the action is not allowed in the call's current state")
)

/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package token

import (
	"testing"
	"time"
)

func TestGenerateThenValidate(t *testing.T) {
	m := NewManager("test-secret", 3600)

	signed, err := m.Generate("user-1234")
	if err != nil {
		t.Fatalf("Could not generate the token: %v", err)
	}

	claims, err := m.Validate(signed)
	if err != nil {
		t.Fatalf("Could not validate the token: %v", err)
	}

	if claims.UserUUID != "user-1234" {
		t.Errorf("Expected user uuid {user-1234}, got {%s}", claims.UserUUID)
	}
}

func TestValidateExpired(t *testing.T) {
	m := NewManager("test-secret", -10)

	signed, err := m.Generate("user-1234")
	if err != nil {
		t.Fatalf("Could not generate the token: %v", err)
	}

	if _, err := m.Validate(signed); err == nil {
		t.Error("An expired token was accepted")
	}
}

func TestValidateWrongSecret(t *testing.T) {
	m := NewManager("test-secret", 3600)
	other := NewManager("another-secret", 3600)

	signed, err := m.Generate("user-1234")
	if err != nil {
		t.Fatalf("Could not generate the token: %v", err)
	}

	if _, err := other.Validate(signed); err == nil {
		t.Error("A token signed with a different secret was accepted")
	}
}

func TestValidateGarbage(t *testing.T) {
	m := NewManager("test-secret", 3600)

	if _, err := m.Validate("not-even-a-token"); err == nil {
		t.Error("A malformed token was accepted")
	}
}

func TestExpiryIsInTheFuture(t *testing.T) {
	m := NewManager("test-secret", 3600)

	signed, err := m.Generate("user-1234")
	if err != nil {
		t.Fatalf("Could not generate the token: %v", err)
	}

	claims, err := m.Validate(signed)
	if err != nil {
		t.Fatalf("Could not validate the token: %v", err)
	}

	if !claims.ExpiresAt.After(time.Now()) {
		t.Error("The token expires in the past")
	}
}

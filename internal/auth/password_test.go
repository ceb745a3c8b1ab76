// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("HashPassword = %q, unexpected prefix", hash)
	}

	other, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == other {
		t.Error("two hashes of the same password should use different salts")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	tests := []struct {
		password string
		want     bool
	}{
		{"changeme", true},
		{"wrongpassword", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := CheckPassword(tt.password, hash)
		if err != nil {
			t.Fatalf("CheckPassword(%q) error: %v", tt.password, err)
		}
		if got != tt.want {
			t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestCheckPassword_LegacyParams(t *testing.T) {
	hash, err := hashWith("changeme", Params{Time: 1, Memory: 8 * 1024, Threads: 2, KeyLen: 16, SaltLen: 8})
	if err != nil {
		t.Fatalf("hashWith error: %v", err)
	}

	ok, err := CheckPassword("changeme", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !ok {
		t.Error("hash with non-default parameters rejected correct password")
	}
	if !NeedsRehash(hash) {
		t.Error("NeedsRehash = false for non-default parameters")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x$c2FsdA$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$!!$a2V5",
	} {
		_, err := CheckPassword("changeme", h)
		if !errors.Is(err, ErrMalformedHash) {
			t.Errorf("CheckPassword(%q) error = %v, want ErrMalformedHash", h, err)
		}
	}
}

func TestNeedsRehash_Default(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if NeedsRehash(hash) {
		t.Error("NeedsRehash = true for default parameters")
	}
	if !NeedsRehash("garbage") {
		t.Error("NeedsRehash = false for garbage")
	}
}

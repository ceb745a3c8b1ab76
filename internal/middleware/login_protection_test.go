// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testLoginProtection(t *testing.T, maxAttempts int) (*LoginProtection, *fakeClock) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   time.Minute,
		AttemptWindow:     10 * time.Minute,
	})
	t.Cleanup(lp.Stop)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	lp.now = clock.now
	return lp, clock
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5 (default)", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m (default)", lp.lockoutDuration)
	}
}

func TestLoginProtection_LockAndExpire(t *testing.T) {
	lp, clock := testLoginProtection(t, 3)
	email := "Admin@Example.com"

	for i := range 2 {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("attempt %d locked the account", i+1)
		}
	}
	if got := lp.GetRemainingAttempts(email); got != 1 {
		t.Errorf("GetRemainingAttempts() = %d, want 1", got)
	}

	locked, d := lp.RecordFailedAttempt("admin@example.com")
	if !locked || d != time.Minute {
		t.Fatalf("third attempt = %v, %v; want locked for 1m", locked, d)
	}
	if locked, remaining := lp.IsAccountLocked(email); !locked || remaining != time.Minute {
		t.Errorf("IsAccountLocked() = %v, %v; want true, 1m", locked, remaining)
	}

	clock.advance(time.Minute + time.Second)
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("account should unlock after the lockout")
	}
}

func TestLoginProtection_ExponentialBackoff(t *testing.T) {
	lp, clock := testLoginProtection(t, 1)
	email := "a@example.com"

	lp.RecordFailedAttempt(email) // creates the entry
	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute}
	for i, w := range want {
		locked, d := lp.RecordFailedAttempt(email)
		if !locked || d != w {
			t.Errorf("lockout %d = %v, %v; want %v", i+1, locked, d, w)
		}
		clock.advance(time.Second)
	}
}

func TestLoginProtection_WindowReset(t *testing.T) {
	lp, clock := testLoginProtection(t, 3)
	email := "a@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	clock.advance(11 * time.Minute)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("GetRemainingAttempts() after window = %d, want 3", got)
	}
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("attempt after window reset should not lock")
	}
}

func TestLoginProtection_SuccessClears(t *testing.T) {
	lp, _ := testLoginProtection(t, 3)
	email := "a@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("GetRemainingAttempts() = %d, want 3", got)
	}
}

func TestLoginProtection_CleanupStaleEntries(t *testing.T) {
	lp, clock := testLoginProtection(t, 3)
	lp.RecordFailedAttempt("old@example.com")
	clock.advance(time.Hour)
	lp.RecordFailedAttempt("new@example.com")

	lp.cleanupStaleEntries()

	if _, ok := lp.failedAttempts["old@example.com"]; ok {
		t.Error("stale entry was not removed")
	}
	if _, ok := lp.failedAttempts["new@example.com"]; !ok {
		t.Error("recent entry was removed")
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 1})
	defer lp.Stop()

	h := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/api/v1/auth/login", nil)
		req.RemoteAddr = "192.0.2.7:4000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := do(http.MethodPost); code != http.StatusOK {
		t.Fatalf("first POST = %d, want 200", code)
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", code)
	}
	if code := do(http.MethodGet); code != http.StatusOK {
		t.Errorf("GET = %d, want 200 (not limited)", code)
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxLockout caps the exponential lockout backoff.
const maxLockout = 24 * time.Hour

// LoginProtection combines per-IP rate limiting of the login endpoint
// with per-account lockout after repeated failures.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.Mutex

	maxFailedAttempts int           // Lock account after this many failures
	lockoutDuration   time.Duration // Base lockout duration (doubles with each lockout)
	attemptWindow     time.Duration // Window to count failed attempts

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance. Zero config
// fields take their defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	go lp.cleanup()
	return lp
}

// Stop ends the background cleanup.
func (lp *LoginProtection) Stop() {
	lp.once.Do(func() { close(lp.stop) })
}

// IsAccountLocked checks if an account is currently locked.
// Returns (locked, remainingTime).
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	attempt, exists := lp.failedAttempts[normalizeEmail(email)]
	if !exists {
		return false, 0
	}
	if remaining := attempt.lockedUntil.Sub(lp.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt records a failed login attempt.
// Returns (locked, lockDuration) if the account is now locked.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	email = normalizeEmail(email)

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := lp.now()
	attempt, exists := lp.failedAttempts[email]
	if !exists {
		lp.failedAttempts[email] = &loginAttempt{count: 1, firstFailed: now}
		return false, 0
	}

	// If the attempt window has passed, reset the counter
	if now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 1
		attempt.firstFailed = now
		return false, 0
	}

	attempt.count++
	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	lockDuration := lp.lockoutDuration
	for i := 0; i < attempt.lockouts && lockDuration < maxLockout; i++ {
		lockDuration *= 2
	}
	lockDuration = min(lockDuration, maxLockout)

	attempt.lockedUntil = now.Add(lockDuration)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("account locked due to failed attempts",
		"email", email,
		"lockouts", attempt.lockouts,
		"duration", lockDuration,
	)
	return true, lockDuration
}

// RecordSuccessfulLogin clears failed attempt tracking for an account.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	delete(lp.failedAttempts, normalizeEmail(email))
}

// GetRemainingAttempts returns the number of remaining attempts before lockout.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	attempt, exists := lp.failedAttempts[normalizeEmail(email)]
	if !exists || lp.now().Sub(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-attempt.count, 0)
}

func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stop:
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	if lp.ipLimiters.clearIfExceeds(maxLimiterEntries) {
		slog.Info("cleared login rate limiters due to size")
	}

	now := lp.now()
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	for email, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, email)
		}
	}
}

// Middleware rate limits POST requests per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				slog.WarnContext(r.Context(), "login rate limit exceeded", "ip", ip)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					"Too many login attempts. Please wait a moment and try again.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxLimiterEntries bounds the per-IP limiter map between cleanups.
const maxLimiterEntries = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// GlobalRateLimiter limits requests per client IP.
type GlobalRateLimiter struct {
	cache *limiterCache[string]
	stop  chan struct{}
	once  sync.Once
}

// NewGlobalRateLimiter creates a limiter allowing rps requests per second
// with bursts of up to burst per client IP.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	rl := &GlobalRateLimiter{
		cache: newLimiterCache[string](rps, burst),
		stop:  make(chan struct{}),
	}
	go rl.cleanup(10 * time.Minute)
	return rl
}

// Stop ends the background cleanup.
func (rl *GlobalRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *GlobalRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if rl.cache.clearIfExceeds(maxLimiterEntries) {
				slog.Info("cleared IP rate limiters due to size")
			}
		case <-rl.stop:
			return
		}
	}
}

// Middleware returns the rate limiting middleware for API routes (returns JSON errors).
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.cache.get(ip).Allow() {
				slog.WarnContext(r.Context(), "rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of r.RemoteAddr. chi's RealIP middleware
// has already replaced it with the proxy-reported address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

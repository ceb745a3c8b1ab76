// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/session"
	"github.com/olegiv/ocms-pages/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for user data.
const (
	ContextKeyUser   ContextKey = "user"
	ContextKeyCaller ContextKey = "caller"
)

// UserLoader looks up the user behind a session.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (model.User, error)
}

// LoadCaller resolves the session user and stores both the user and the
// derived model.Caller in the request context. Requests without a session
// continue as model.Anonymous. A session pointing at a deleted user is
// destroyed.
func LoadCaller(sm *scs.SessionManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := sm.GetInt64(ctx, session.KeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r.WithContext(WithCaller(ctx, model.Anonymous)))
				return
			}

			user, err := users.GetUserByID(ctx, userID)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					slog.ErrorContext(ctx, "loading session user", "user_id", userID, "error", err)
					WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
					return
				}
				_ = sm.Destroy(ctx)
				next.ServeHTTP(w, r.WithContext(WithCaller(ctx, model.Anonymous)))
				return
			}

			ctx = context.WithValue(ctx, ContextKeyUser, user)
			ctx = WithCaller(ctx, user.Caller())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// GetCaller returns the caller of the request, model.Anonymous if none
// was loaded.
func GetCaller(r *http.Request) model.Caller {
	caller, ok := r.Context().Value(ContextKeyCaller).(model.Caller)
	if !ok {
		return model.Anonymous
	}
	return caller
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID, 0 if not signed in.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// RequireAdmin rejects callers that are not administrators with 403.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetCaller(r).IsAdmin() {
				slog.WarnContext(r.Context(), "access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", GetUserID(r),
					"remote_addr", r.RemoteAddr,
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Administrator privileges required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

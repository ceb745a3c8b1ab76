// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-pages/internal/auth"
	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/session"
	"github.com/olegiv/ocms-pages/internal/store"
)

// maxLoginBody bounds the JSON login request.
const maxLoginBody = 16 << 10

// UserStore is the subset of store.Users used for signing in.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error
}

// AuthHandler serves the /api/v1/auth routes.
type AuthHandler struct {
	users           UserStore
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// NewAuthHandler creates an AuthHandler. loginProtection may be nil.
func NewAuthHandler(users UserStore, sm *scs.SessionManager, lp *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{users: users, sessionManager: sm, loginProtection: lp, logger: logger}
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents the signed-in user.
type UserResponse struct {
	ID      int64         `json:"id"`
	Email   string        `json:"email"`
	Name    string        `json:"name"`
	Role    string        `json:"role"`
	Profile model.Profile `json:"profile"`
}

func userToResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		Profile: u.Caller().Profile,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required", nil)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.logger.WarnContext(ctx, "login attempt on locked account", "email", email)
			WriteTooManyRequests(w, "Account temporarily locked", remaining)
			return
		}
	}

	user, err := h.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.ErrorContext(ctx, "database error during login", "error", err)
			WriteInternalError(w, "Internal server error")
			return
		}
		h.logger.DebugContext(ctx, "login attempt for non-existent user", "email", email)
		// Unknown accounts count too, so lockout does not reveal which emails exist.
		h.failLogin(w, email)
		return
	}

	valid, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		h.logger.ErrorContext(ctx, "password check error", "user_id", user.ID, "error", err)
	}
	if !valid {
		h.logger.DebugContext(ctx, "invalid password attempt", "email", email)
		h.failLogin(w, email)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	now := time.Now()
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.users.UpdatePasswordHash(ctx, user.ID, newHash, now); err != nil {
				h.logger.ErrorContext(ctx, "failed to re-hash password", "user_id", user.ID, "error", err)
			}
		}
	}
	if err := h.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		h.logger.ErrorContext(ctx, "failed to update last login time", "user_id", user.ID, "error", err)
	}

	// New token on privilege change prevents session fixation.
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		h.logger.ErrorContext(ctx, "session renewal error", "error", err)
		WriteInternalError(w, "Internal server error")
		return
	}
	h.sessionManager.Put(ctx, session.KeyUserID, user.ID)

	h.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	WriteSuccess(w, userToResponse(&user), nil)
}

func (h *AuthHandler) failLogin(w http.ResponseWriter, email string) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			WriteTooManyRequests(w, "Too many failed attempts", lockDuration)
			return
		}
		if remaining := h.loginProtection.GetRemainingAttempts(email); remaining > 0 && remaining <= 3 {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid email or password",
				map[string]string{"remaining_attempts": strconv.Itoa(remaining)})
			return
		}
	}
	WriteUnauthorized(w, "Invalid email or password")
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.sessionManager.GetInt64(ctx, session.KeyUserID)

	if err := h.sessionManager.Destroy(ctx); err != nil {
		h.logger.ErrorContext(ctx, "session destroy error", "error", err)
		WriteInternalError(w, "Internal server error")
		return
	}

	if userID > 0 {
		h.logger.InfoContext(ctx, "user logged out", "user_id", userID)
	}
	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, userToResponse(user), nil)
}

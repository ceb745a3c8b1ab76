// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures cookie sessions backed by the sessions table.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys
const (
	KeyUserID = "user_id"
)

// cleanupInterval is how often expired sessions are purged from the table.
const cleanupInterval = 10 * time.Minute

// New creates a session manager storing sessions in db.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, cleanupInterval)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		// The __Host- prefix pins the cookie to this origin over HTTPS.
		sm.Cookie.Name = "__Host-session"
	}
	return sm
}

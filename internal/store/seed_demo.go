// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-pages/internal/auth"
	"github.com/olegiv/ocms-pages/internal/model"
)

// Demo mode credentials
const (
	DemoEditorEmail    = "editor@example.com"
	DemoEditorPassword = "demo1234demo"
	DemoEditorName     = "Demo Editor"

	DemoGuestEmail    = "guest@example.com"
	DemoGuestPassword = "demo1234demo"
	DemoGuestName     = "Demo Guest"
)

// SeedDemo creates the demo editor and guest accounts. Existing accounts
// are kept.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	slog.Info("seeding demo accounts")

	if err := seedDemoUsers(ctx, NewUsers(db)); err != nil {
		return fmt.Errorf("seeding demo users: %w", err)
	}
	return nil
}

func seedDemoUsers(ctx context.Context, users *Users) error {
	accounts := []struct {
		email, password, role, name string
	}{
		{DemoEditorEmail, DemoEditorPassword, model.RoleEditor, DemoEditorName},
		{DemoGuestEmail, DemoGuestPassword, model.RoleGuest, DemoGuestName},
	}
	for _, acc := range accounts {
		hash, err := auth.HashPassword(acc.password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		_, err = users.CreateUser(ctx, CreateUserParams{
			Email:        acc.email,
			PasswordHash: hash,
			Role:         acc.role,
			Name:         acc.name,
		})
		if err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("creating %s: %w", acc.email, err)
		}
	}
	return nil
}

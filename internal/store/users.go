// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/ocms-pages/internal/model"
)

const userColumns = `id, email, password_hash, role, name, created_at, updated_at, last_login_at`

// Users provides access to the users table.
type Users struct {
	db *sql.DB
}

// NewUsers creates a Users store on db.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// CreateUserParams holds the fields of a new user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	Name         string
}

// CreateUser inserts a user. Emails are unique; a second user with the
// same email yields ErrDuplicate.
func (u *Users) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	now := time.Now().UTC()
	res, err := u.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, role, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`,
		strings.ToLower(arg.Email), arg.PasswordHash, arg.Role, arg.Name, now, now)
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.User{}, ErrDuplicate
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("reading user id: %w", err)
	}
	return u.GetUserByID(ctx, id)
}

// GetUserByID returns a user by primary key or ErrNotFound.
func (u *Users) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return u.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail returns a user by email (case-insensitive) or ErrNotFound.
func (u *Users) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return u.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
}

// UpdateLastLogin records a successful sign-in.
func (u *Users) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := u.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// UpdatePasswordHash replaces a user's stored password hash.
func (u *Users) UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error {
	_, err := u.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating password hash: %w", err)
	}
	return nil
}

func (u *Users) getUser(ctx context.Context, query string, arg any) (model.User, error) {
	var usr model.User
	err := u.db.QueryRowContext(ctx, query, arg).Scan(
		&usr.ID, &usr.Email, &usr.PasswordHash, &usr.Role, &usr.Name,
		&usr.CreatedAt, &usr.UpdatedAt, &usr.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("getting user: %w", err)
	}
	return usr, nil
}

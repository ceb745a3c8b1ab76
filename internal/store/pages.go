// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ocms-pages/internal/model"
)

const pageColumns = `language, page_id, data, link, format, sections, status, created_at, updated_at`

// PageStore persists pages in the pages table. The (language, page_id)
// primary key is the authority on identity uniqueness.
type PageStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPageStore creates a PageStore on db. The schema must be migrated.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db, now: time.Now}
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Get returns the page with the given identity or ErrNotFound.
func (s *PageStore) Get(ctx context.Context, id model.PageIdentity) (model.Page, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE language = ? AND page_id = ?`,
		id.Language, id.PageID)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, ErrNotFound
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("getting page %s: %w", id, err)
	}
	return p, nil
}

// Create inserts a new page. It returns ErrDuplicate if the identity is
// already taken, including when a concurrent writer won the race.
func (s *PageStore) Create(ctx context.Context, p model.Page) (model.Page, error) {
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := insertPage(ctx, s.db, p); err != nil {
		return model.Page{}, err
	}
	return p, nil
}

// Save overwrites the mutable fields of an existing page.
func (s *PageStore) Save(ctx context.Context, p model.Page) (model.Page, error) {
	sections, err := encodeSections(p.Sections)
	if err != nil {
		return model.Page{}, err
	}
	p.UpdatedAt = s.now().UTC()
	data, link := contentColumns(p.Content)

	res, err := s.db.ExecContext(ctx, `
		UPDATE pages
		SET data = ?, link = ?, format = ?, sections = ?, status = ?, updated_at = ?
		WHERE language = ? AND page_id = ?`,
		data, link, string(p.Format), sections, string(p.Status), p.UpdatedAt,
		p.Identity.Language, p.Identity.PageID)
	if err != nil {
		return model.Page{}, fmt.Errorf("saving page %s: %w", p.Identity, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Page{}, ErrNotFound
	}
	return p, nil
}

// Rename moves the page stored at from to p.Identity, storing p's fields.
// Insert and delete run in one transaction, so either both happen or
// neither does.
func (s *PageStore) Rename(ctx context.Context, from model.PageIdentity, p model.Page) (model.Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Page{}, fmt.Errorf("beginning rename: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p.UpdatedAt = s.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	if err := insertPage(ctx, tx, p); err != nil {
		return model.Page{}, err
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM pages WHERE language = ? AND page_id = ?`, from.Language, from.PageID)
	if err != nil {
		return model.Page{}, fmt.Errorf("deleting page %s: %w", from, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Page{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return model.Page{}, fmt.Errorf("committing rename: %w", err)
	}
	return p, nil
}

// Delete removes a page or returns ErrNotFound.
func (s *PageStore) Delete(ctx context.Context, id model.PageIdentity) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pages WHERE language = ? AND page_id = ?`, id.Language, id.PageID)
	if err != nil {
		return fmt.Errorf("deleting page %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the pages of one language, or of all languages when
// language is empty, in insertion order.
func (s *PageStore) List(ctx context.Context, language string) ([]model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages`
	var args []any
	if language != "" {
		query += ` WHERE language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pages := make([]model.Page, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	return pages, nil
}

// Ping checks that the database is reachable.
func (s *PageStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func insertPage(ctx context.Context, q dbtx, p model.Page) error {
	sections, err := encodeSections(p.Sections)
	if err != nil {
		return err
	}
	data, link := contentColumns(p.Content)

	res, err := q.ExecContext(ctx, `
		INSERT INTO pages (`+pageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (language, page_id) DO NOTHING`,
		p.Identity.Language, p.Identity.PageID, data, link,
		string(p.Format), sections, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting page %s: %w", p.Identity, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicate
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (model.Page, error) {
	var (
		p        model.Page
		data     []byte
		link     sql.NullString
		format   string
		sections string
		status   string
	)
	err := row.Scan(&p.Identity.Language, &p.Identity.PageID, &data, &link,
		&format, &sections, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Page{}, err
	}

	if link.Valid && link.String != "" {
		p.Content = model.LinkedContent(link.String)
	} else {
		p.Content = model.UploadedContent(data)
	}
	p.Format = model.Format(format)
	p.Status = model.Status(status)
	if err := json.Unmarshal([]byte(sections), &p.Sections); err != nil {
		return model.Page{}, fmt.Errorf("decoding sections of %s: %w", p.Identity, err)
	}
	return p, nil
}

func contentColumns(c model.Content) (data []byte, link sql.NullString) {
	if c.IsLink() {
		return nil, sql.NullString{String: c.Link(), Valid: true}
	}
	return c.Data(), sql.NullString{}
}

func encodeSections(sections []model.Section) (string, error) {
	if sections == nil {
		sections = []model.Section{}
	}
	b, err := json.Marshal(sections)
	if err != nil {
		return "", fmt.Errorf("encoding sections: %w", err)
	}
	return string(b), nil
}

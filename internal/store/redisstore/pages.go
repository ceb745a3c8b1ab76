// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package redisstore keeps pages in Redis so several API instances can
// share one page registry.
//
// Each page is a JSON record under <prefix>page:<lang>:<id>. A sorted set
// <prefix>index, scored by the <prefix>seq counter, preserves insertion
// order for listing. Mutations run inside WATCH/MULTI transactions.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
)

// maxTxRetries bounds optimistic retries of Save and Delete when a
// watched key changes under them.
const maxTxRetries = 5

// Options configures the Redis page store.
type Options struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "ocms:pages:")
	Prefix string

	// PoolSize is the maximum number of connections (0 = use default)
	PoolSize int

	// ConnectTimeout is the timeout for establishing a connection
	ConnectTimeout time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Prefix:         "ocms:pages:",
		PoolSize:       10,
		ConnectTimeout: 5 * time.Second,
	}
}

// PageStore is a Redis-backed page store.
type PageStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

type record struct {
	Language  string          `json:"language"`
	PageID    string          `json:"pageId"`
	Data      []byte          `json:"data,omitempty"`
	Link      string          `json:"link,omitempty"`
	Format    model.Format    `json:"format"`
	Sections  []model.Section `json:"sections"`
	Status    model.Status    `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// New connects to Redis and verifies the connection.
func New(opts Options) (*PageStore, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	} else {
		opts.ConnectTimeout = DefaultOptions().ConnectTimeout
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *PageStore {
	if prefix == "" {
		prefix = DefaultOptions().Prefix
	}
	return &PageStore{client: client, prefix: prefix, now: time.Now}
}

// Close closes the Redis connection.
func (s *PageStore) Close() error {
	return s.client.Close()
}

// Ping checks that Redis is reachable.
func (s *PageStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *PageStore) indexKey() string { return s.prefix + "index" }
func (s *PageStore) seqKey() string   { return s.prefix + "seq" }

// member encodes an identity so that ':' in either part cannot collide.
func member(id model.PageIdentity) string {
	return url.QueryEscape(id.Language) + ":" + url.QueryEscape(id.PageID)
}

func (s *PageStore) pageKey(id model.PageIdentity) string {
	return s.prefix + "page:" + member(id)
}

// Get returns the page with the given identity or store.ErrNotFound.
func (s *PageStore) Get(ctx context.Context, id model.PageIdentity) (model.Page, error) {
	return s.load(ctx, s.client, id)
}

// Create stores a new page or returns store.ErrDuplicate.
func (s *PageStore) Create(ctx context.Context, p model.Page) (model.Page, error) {
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	key := s.pageKey(p.Identity)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return store.ErrDuplicate
		}
		return s.insert(ctx, tx, p)
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return model.Page{}, store.ErrDuplicate
	}
	if err != nil {
		return model.Page{}, wrap("creating page", p.Identity, err)
	}
	return p, nil
}

// Save overwrites the mutable fields of an existing page.
func (s *PageStore) Save(ctx context.Context, p model.Page) (model.Page, error) {
	key := s.pageKey(p.Identity)

	txf := func(tx *redis.Tx) error {
		cur, err := s.load(ctx, tx, p.Identity)
		if err != nil {
			return err
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = s.now().UTC()
		b, err := jsonRecord(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			return nil
		})
		return err
	}
	if err := s.retry(ctx, txf, key); err != nil {
		return model.Page{}, wrap("saving page", p.Identity, err)
	}
	return p, nil
}

// Rename moves the page at from to p.Identity in one transaction.
func (s *PageStore) Rename(ctx context.Context, from model.PageIdentity, p model.Page) (model.Page, error) {
	fromKey, toKey := s.pageKey(from), s.pageKey(p.Identity)

	txf := func(tx *redis.Tx) error {
		cur, err := s.load(ctx, tx, from)
		if err != nil {
			return err
		}
		n, err := tx.Exists(ctx, toKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return store.ErrDuplicate
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = s.now().UTC()
		return s.insert(ctx, tx, p, func(pipe redis.Pipeliner) {
			pipe.Del(ctx, fromKey)
			pipe.ZRem(ctx, s.indexKey(), member(from))
		})
	}
	if err := s.retry(ctx, txf, fromKey, toKey); err != nil {
		return model.Page{}, wrap("renaming page", from, err)
	}
	return p, nil
}

// Delete removes a page or returns store.ErrNotFound.
func (s *PageStore) Delete(ctx context.Context, id model.PageIdentity) error {
	key := s.pageKey(id)

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, s.indexKey(), member(id))
			return nil
		})
		return err
	}
	if err := s.retry(ctx, txf, key); err != nil {
		return wrap("deleting page", id, err)
	}
	return nil
}

// List returns the pages of one language, or of all languages when
// language is empty, in insertion order.
func (s *PageStore) List(ctx context.Context, language string) ([]model.Page, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	langPrefix := url.QueryEscape(language) + ":"
	keys := make([]string, 0, len(members))
	for _, m := range members {
		if language == "" || strings.HasPrefix(m, langPrefix) {
			keys = append(keys, s.prefix+"page:"+m)
		}
	}

	pages := make([]model.Page, 0, len(keys))
	if len(keys) == 0 {
		return pages, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	for i, v := range vals {
		// Deleted between ZRANGE and MGET.
		str, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decode([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", keys[i], err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// insert queues SET and ZADD of p in a MULTI block, together with any
// extra commands.
func (s *PageStore) insert(ctx context.Context, tx *redis.Tx, p model.Page, extra ...func(redis.Pipeliner)) error {
	b, err := jsonRecord(p)
	if err != nil {
		return err
	}
	seq, err := tx.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return err
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, fn := range extra {
			fn(pipe)
		}
		pipe.Set(ctx, s.pageKey(p.Identity), b, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(seq), Member: member(p.Identity)})
		return nil
	})
	return err
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *PageStore) load(ctx context.Context, c getter, id model.PageIdentity) (model.Page, error) {
	b, err := c.Get(ctx, s.pageKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Page{}, store.ErrNotFound
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("getting page %s: %w", id, err)
	}
	return decode(b)
}

func (s *PageStore) retry(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

func wrap(op string, id model.PageIdentity, err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrDuplicate) {
		return err
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}

func jsonRecord(p model.Page) ([]byte, error) {
	return json.Marshal(toRecord(p))
}

func toRecord(p model.Page) record {
	r := record{
		Language:  p.Identity.Language,
		PageID:    p.Identity.PageID,
		Format:    p.Format,
		Sections:  p.Sections,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if r.Sections == nil {
		r.Sections = []model.Section{}
	}
	if p.Content.IsLink() {
		r.Link = p.Content.Link()
	} else {
		r.Data = p.Content.Data()
	}
	return r
}

func decode(b []byte) (model.Page, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return model.Page{}, err
	}
	p := model.Page{
		Identity:  model.PageIdentity{Language: r.Language, PageID: r.PageID},
		Format:    r.Format,
		Sections:  r.Sections,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Link != "" {
		p.Content = model.LinkedContent(r.Link)
	} else {
		p.Content = model.UploadedContent(r.Data)
	}
	return p, nil
}

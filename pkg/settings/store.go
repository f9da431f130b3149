package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/vannyakh/pkasla-pro-sub001/internal/db"
)

const (
	cacheKey = "pkasla:settings"
	cacheTTL = 5 * time.Minute
)

// Store persists the settings document as a single row and keeps a
// read-through copy in redis. A nil redis client disables caching.
type Store struct {
	db  db.DBTX
	rdb *redis.Client
}

func NewStore(dbtx db.DBTX, rdb *redis.Client) *Store {
	return &Store{db: dbtx, rdb: rdb}
}

// cacheEnvelope carries updated_at alongside the document: the Settings JSON
// shape drops the timestamp, so caching the bare document would zero it.
type cacheEnvelope struct {
	Doc       *Settings `json:"doc"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Get returns the current document, creating the default one on first
// access. Concurrent first reads race on the insert; ON CONFLICT keeps the
// table single-row either way.
func (s *Store) Get(ctx context.Context) (*Settings, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached cacheEnvelope
			if err := json.Unmarshal(raw, &cached); err == nil && cached.Doc != nil {
				cached.Doc.UpdatedAt = cached.UpdatedAt
				return cached.Doc, nil
			}
		}
	}

	doc, err := s.fetch(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		doc, err = s.create(ctx)
	}
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(cacheEnvelope{Doc: doc, UpdatedAt: doc.UpdatedAt}); err == nil {
			s.rdb.Set(ctx, cacheKey, raw, cacheTTL)
		}
	}
	return doc, nil
}

// Put replaces the stored document and drops the cached copy.
func (s *Store) Put(ctx context.Context, doc *Settings) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(ctx, `
		INSERT INTO settings (id, doc, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`, raw, now)
	if err != nil {
		return fmt.Errorf("store settings: %w", err)
	}
	doc.UpdatedAt = now

	if s.rdb != nil {
		s.rdb.Del(ctx, cacheKey)
	}
	return nil
}

func (s *Store) fetch(ctx context.Context) (*Settings, error) {
	var raw []byte
	var updatedAt time.Time
	row := s.db.QueryRow(ctx, `SELECT doc, updated_at FROM settings WHERE id = 1`)
	if err := row.Scan(&raw, &updatedAt); err != nil {
		return nil, err
	}
	var doc Settings
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	doc.UpdatedAt = updatedAt
	return &doc, nil
}

func (s *Store) create(ctx context.Context) (*Settings, error) {
	doc := Defaults()
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(ctx, `
		INSERT INTO settings (id, doc, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, raw, now)
	if err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	// Re-read in case another writer won the insert.
	return s.fetch(ctx)
}

// Package session keeps the table each browser session uploaded.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"volcanoweb/internal/dataset"
)

// ErrNotFound is returned when a session has no table or it expired.
var ErrNotFound = errors.New("session: not found")

// Store holds one table per session id.
type Store interface {
	Get(ctx context.Context, id string) (*dataset.Table, error)
	Put(ctx context.Context, id string, t *dataset.Table) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// MemoryStore is an in-process Store with per-entry expiry.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	table   *dataset.Table
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*dataset.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	// sliding expiry
	e.expires = s.now().Add(s.ttl)
	s.entries[id] = e
	return e.table, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, t *dataset.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[id] = memoryEntry{table: t, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.entries)
}

func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
}

// RedisStore keeps JSON-encoded tables in Redis under a key prefix.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "volcano:session:"}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*dataset.Table, error) {
	raw, err := s.rdb.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get %s: %w", id, err)
	}
	var t dataset.Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &t, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, t *dataset.Table) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: put %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

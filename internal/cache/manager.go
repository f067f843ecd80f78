// Package cache provides the TTL-backed memoization layer for expensive
// generated data such as search suggestions and smart filters
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/db/repos"
)

// TTL policies per cache kind
const (
	// SuggestionTTL is how long cached search suggestions stay fresh
	SuggestionTTL = 24 * time.Hour
	// SmartFilterTTL is how long cached smart filter suggestions stay fresh
	SmartFilterTTL = time.Hour
)

// Key uniquely identifies one cached generation
type Key struct {
	Kind       models.CacheKind
	Query      string
	EntityType string
	CompanyID  string
}

// GenerateFunc produces a payload on a cache miss. It may be slow and it may
// fail; a failed generation is never written to the cache.
type GenerateFunc func(ctx context.Context) (json.RawMessage, error)

// Manager wraps generator functions with TTL-keyed memoization backed by the
// cache entry store. Expiry is checked at read time against the stored
// absolute expiry timestamp.
type Manager struct {
	repo *repos.CacheEntryRepository

	mu       sync.Mutex
	keyLocks map[Key]*keyLock

	now func() time.Time
}

// keyLock carries a waiter count so the map entry can be dropped once the
// last caller for the key releases it
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a new cache manager on top of the given repository
func NewManager(repo *repos.CacheEntryRepository) *Manager {
	return &Manager{
		repo:     repo,
		keyLocks: make(map[Key]*keyLock),
		now:      time.Now,
	}
}

// lockKey serializes the miss path per key so concurrent misses for the same
// key collapse into a single generator call within this process
func (m *Manager) lockKey(key Key) func() {
	m.mu.Lock()
	l, ok := m.keyLocks[key]
	if !ok {
		l = &keyLock{}
		m.keyLocks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.keyLocks, key)
		}
		m.mu.Unlock()
	}
}

// GetOrGenerate returns the payload stored under key if it is still fresh.
// Otherwise it invokes generate synchronously, stores the result with
// expiry now+ttl (replacing any previous entry under the same key) and
// returns it. A generator error propagates without touching the cache.
func (m *Manager) GetOrGenerate(ctx context.Context, key Key, ttl time.Duration, generate GenerateFunc) (json.RawMessage, error) {
	unlock := m.lockKey(key)
	defer unlock()

	entry, err := m.repo.Get(ctx, key.Kind, key.Query, key.EntityType, key.CompanyID)
	if err == nil && entry.Fresh(m.now()) {
		return entry.Payload, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	payload, err := generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	fresh := &models.CacheEntry{
		Kind:       key.Kind,
		Query:      key.Query,
		EntityType: key.EntityType,
		CompanyID:  key.CompanyID,
		Payload:    payload,
		ExpiresAt:  m.now().Add(ttl),
	}
	if err := m.repo.Upsert(ctx, fresh); err != nil {
		return nil, fmt.Errorf("cache store failed: %w", err)
	}

	return payload, nil
}

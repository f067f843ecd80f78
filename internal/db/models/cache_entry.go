package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CacheKind identifies which generated artifact a cache entry holds
type CacheKind string

// Cache kind constants
const (
	// CacheKindSuggestions marks cached AI search suggestions
	CacheKindSuggestions CacheKind = "suggestions"
	// CacheKindSmartFilters marks cached smart filter suggestions
	CacheKindSmartFilters CacheKind = "smart_filters"
)

// CacheEntry holds one generated payload under a composite key with an
// absolute expiry. Expiry is enforced at read time by comparing the current
// time against ExpiresAt; an expired row is a miss regardless of its payload.
type CacheEntry struct {
	ID         string          `json:"id" gorm:"primaryKey"`
	Kind       CacheKind       `json:"kind" gorm:"not null;uniqueIndex:idx_cache_entry_key"`
	Query      string          `json:"query" gorm:"uniqueIndex:idx_cache_entry_key"`
	EntityType string          `json:"entityType" gorm:"not null;uniqueIndex:idx_cache_entry_key"`
	CompanyID  string          `json:"companyId" gorm:"not null;uniqueIndex:idx_cache_entry_key"`
	Payload    json.RawMessage `json:"payload" gorm:"not null;type:jsonb"`
	ExpiresAt  time.Time       `json:"expiresAt" gorm:"not null;index"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Fresh reports whether the entry is still live at the given instant
func (e *CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// BeforeCreate is a GORM hook that runs before persisting a new cache entry
func (e *CacheEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

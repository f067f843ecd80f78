package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitegrid/sitegrid/internal/db/models"
)

// CacheEntryRepository handles database operations for generation cache entries
type CacheEntryRepository struct {
	db *gorm.DB
}

// NewCacheEntryRepository creates a new instance of CacheEntryRepository
func NewCacheEntryRepository(db *gorm.DB) *CacheEntryRepository {
	return &CacheEntryRepository{
		db: db,
	}
}

// Get retrieves the cache entry stored under the composite key, expired or not.
// Freshness is the caller's concern; see models.CacheEntry.Fresh.
func (r *CacheEntryRepository) Get(ctx context.Context, kind models.CacheKind, query, entityType, companyID string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := r.db.WithContext(ctx).
		Where("kind = ? AND query = ? AND entity_type = ? AND company_id = ?",
			kind, query, entityType, companyID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert stores the entry under its composite key, replacing any previous
// payload and expiry for the same key (last-writer-wins, no merge)
func (r *CacheEntryRepository) Upsert(ctx context.Context, entry *models.CacheEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "kind"},
				{Name: "query"},
				{Name: "entity_type"},
				{Name: "company_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
		}).
		Create(entry).Error
}

// DeleteExpired removes entries whose expiry has passed. Reads already treat
// expired rows as misses; this only keeps the table from growing unbounded.
func (r *CacheEntryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

// DeleteForEntity removes every entry of the given kind scoped to the entity
// type and company, regardless of expiry. Used to invalidate generated data
// after bulk mutations change the underlying records.
func (r *CacheEntryRepository) DeleteForEntity(ctx context.Context, kind models.CacheKind, entityType, companyID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("kind = ? AND entity_type = ? AND company_id = ?", kind, entityType, companyID).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

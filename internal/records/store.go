// Package records defines the record store contract the bulk executor mutates
// entities through, plus the GORM-backed implementation used in production
package records

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sitegrid/sitegrid/internal/db/models"
)

// Store is the contract the executor needs from entity storage: fetch by id,
// update fields by id, delete by id and filtered listing. Implementations own
// the mapping from entity types to their backing collections.
type Store interface {
	Get(ctx context.Context, entityType, id string) (map[string]interface{}, error)
	Update(ctx context.Context, entityType, id string, changes map[string]interface{}) error
	Delete(ctx context.Context, entityType, id string) error
	List(ctx context.Context, entityType string, filter map[string]interface{}, opts *models.ListOptions) ([]map[string]interface{}, error)
}

// tableByEntityType is the allowlist of entity collections bulk operations
// may touch. Everything else is rejected before any row is mutated.
var tableByEntityType = map[string]string{
	"tasks":       "tasks",
	"projects":    "projects",
	"rfis":        "rfis",
	"punch_items": "punch_items",
	"daily_logs":  "daily_logs",
}

// GormStore implements Store against the relational entity tables
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed record store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = &GormStore{}

func tableFor(entityType string) (string, error) {
	table, ok := tableByEntityType[entityType]
	if !ok {
		return "", fmt.Errorf("unknown entity type: %s", entityType)
	}
	return table, nil
}

// Get retrieves a single record by id
func (s *GormStore) Get(ctx context.Context, entityType, id string) (map[string]interface{}, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	var record map[string]interface{}
	if err := s.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Take(&record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update applies the field changes to the record with the given id
func (s *GormStore) Update(ctx context.Context, entityType, id string, changes map[string]interface{}) error {
	table, err := tableFor(entityType)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return fmt.Errorf("no changes to apply to %s %s", entityType, id)
	}
	result := s.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s record %s not found", entityType, id)
	}
	return nil
}

// Delete removes the record with the given id
func (s *GormStore) Delete(ctx context.Context, entityType, id string) error {
	table, err := tableFor(entityType)
	if err != nil {
		return err
	}
	// Table names come from the allowlist above, never from user input.
	result := s.db.WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s record %s not found", entityType, id)
	}
	return nil
}

// List retrieves records matching the equality filter with pagination
func (s *GormStore) List(ctx context.Context, entityType string, filter map[string]interface{}, opts *models.ListOptions) ([]map[string]interface{}, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Table(table)
	if len(filter) > 0 {
		query = query.Where(filter)
	}
	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	var records []map[string]interface{}
	err = query.Find(&records).Error
	return records, err
}

// Package repos contains the database repositories
package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sitegrid/sitegrid/internal/db/models"
)

// BulkOperationRepository handles database operations for bulk operations
type BulkOperationRepository struct {
	db *gorm.DB
}

// NewBulkOperationRepository creates a new instance of BulkOperationRepository
func NewBulkOperationRepository(db *gorm.DB) *BulkOperationRepository {
	return &BulkOperationRepository{
		db: db,
	}
}

// Create creates a new bulk operation in the database
func (r *BulkOperationRepository) Create(ctx context.Context, op *models.BulkOperation) error {
	return r.db.WithContext(ctx).Create(op).Error
}

// GetByID retrieves a bulk operation by ID from the database
func (r *BulkOperationRepository) GetByID(ctx context.Context, id string) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&op).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

// GetStatus retrieves only the current status of a bulk operation. The
// executor polls this between record mutations to observe cancellations.
func (r *BulkOperationRepository) GetStatus(ctx context.Context, id string) (models.BulkOperationStatus, error) {
	var statuses []models.BulkOperationStatus
	err := r.db.WithContext(ctx).
		Model(&models.BulkOperation{}).
		Where("id = ?", id).
		Limit(1).
		Pluck(models.BulkOperationStatusField, &statuses).Error
	if err != nil {
		return "", err
	}
	if len(statuses) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return statuses[0], nil
}

// List retrieves bulk operations matching the filter with pagination,
// returning the rows and the total count across all pages
func (r *BulkOperationRepository) List(ctx context.Context, filter models.BulkOperationFilter, opts *models.ListOptions) ([]models.BulkOperation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BulkOperation{})
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	var ops []models.BulkOperation
	err := query.Order("created_at DESC").Find(&ops).Error
	return ops, total, err
}

// MarkProcessing transitions a bulk operation from pending to processing.
// The guard is a compare-and-swap on status so only one caller can win;
// it returns false when the operation was not in pending status.
func (r *BulkOperationRepository) MarkProcessing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BulkOperation{}).
		Where("id = ? AND status = ?", id, models.BulkOperationStatusPending).
		Updates(map[string]interface{}{
			models.BulkOperationStatusField:   models.BulkOperationStatusProcessing,
			models.BulkOperationProgressField: 0,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateProgress persists the progress of a processing bulk operation.
// Writes are guarded so progress never moves backwards and never lands on a
// row that has already reached a terminal status.
func (r *BulkOperationRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	return r.db.WithContext(ctx).
		Model(&models.BulkOperation{}).
		Where("id = ? AND status = ? AND progress <= ?", id, models.BulkOperationStatusProcessing, progress).
		Update(models.BulkOperationProgressField, progress).Error
}

// Finalize transitions a bulk operation into a terminal status. Terminal rows
// are write-once: once completed or failed is recorded, further finalize
// calls affect zero rows and return false.
func (r *BulkOperationRepository) Finalize(ctx context.Context, id string, status models.BulkOperationStatus, errorMessage string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		models.BulkOperationStatusField: status,
		"error_message":                 errorMessage,
		"completed_at":                  &now,
	}
	if status == models.BulkOperationStatusCompleted {
		updates[models.BulkOperationProgressField] = 100
	}

	result := r.db.WithContext(ctx).
		Model(&models.BulkOperation{}).
		Where("id = ? AND status NOT IN ?", id, []models.BulkOperationStatus{
			models.BulkOperationStatusCompleted,
			models.BulkOperationStatusFailed,
		}).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FailStale marks every processing bulk operation as failed. It runs once on
// startup so executions orphaned by a restart do not stay processing forever.
func (r *BulkOperationRepository) FailStale(ctx context.Context, reason string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.BulkOperation{}).
		Where("status = ?", models.BulkOperationStatusProcessing).
		Updates(map[string]interface{}{
			models.BulkOperationStatusField: models.BulkOperationStatusFailed,
			"error_message":                 reason,
			"completed_at":                  &now,
		})
	return result.RowsAffected, result.Error
}

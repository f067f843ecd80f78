package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/db/repos"
	"github.com/sitegrid/sitegrid/internal/events"
	"github.com/sitegrid/sitegrid/internal/logger"
)

// BulkOperation handles bulk operation lifecycle requests: create, list,
// execute and cancel. Execution itself runs in the Executor.
type BulkOperation struct {
	repo     *repos.BulkOperationRepository
	executor *Executor
}

// NewBulkOperationService creates a new instance of the bulk operation service
func NewBulkOperationService(repo *repos.BulkOperationRepository, executor *Executor) *BulkOperation {
	return &BulkOperation{
		repo:     repo,
		executor: executor,
	}
}

// Create persists a new bulk operation in pending status with progress 0
func (s *BulkOperation) Create(ctx context.Context, op *models.BulkOperation) error {
	return s.repo.Create(ctx, op)
}

// Get retrieves a bulk operation by ID
func (s *BulkOperation) Get(ctx context.Context, id string) (*models.BulkOperation, error) {
	op, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBulkOperationNotFound
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// List retrieves bulk operations matching the filter with pagination,
// returning the rows and the total count across all pages
func (s *BulkOperation) List(ctx context.Context, filter models.BulkOperationFilter, opts *models.ListOptions) ([]models.BulkOperation, int64, error) {
	return s.repo.List(ctx, filter, opts)
}

// Execute starts executing a pending bulk operation. The transition to
// processing is a compare-and-swap, so exactly one execute call can win;
// every other caller gets ErrNotPending. The call returns as soon as the
// transition is recorded, execution continues in the background.
func (s *BulkOperation) Execute(ctx context.Context, id string) (*models.BulkOperation, error) {
	op, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.MarkProcessing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark bulk operation %s processing: %w", id, err)
	}
	if !updated {
		return nil, ErrNotPending
	}

	op.Status = models.BulkOperationStatusProcessing
	op.Progress = 0
	s.executor.Spawn(op)

	events.Publish(events.Event{
		Type:        events.EventOperationStarted,
		OperationID: op.ID,
		EntityType:  op.EntityType,
		Operation:   op.Operation,
		CompanyID:   op.CompanyID,
	})

	logger.InfoWithFields("Bulk operation execution started", map[string]interface{}{
		"id":          op.ID,
		"entity_type": op.EntityType,
		"operation":   op.Operation,
		"records":     len(op.SelectedIDs),
	})
	return op, nil
}

// Cancel stops a pending or processing bulk operation. A pending operation
// never reaches the executor; a processing one is observed by the executor
// at its next per-record status poll. Cancelling a failed operation is an
// idempotent no-op, cancelling a completed one is a conflict.
func (s *BulkOperation) Cancel(ctx context.Context, id string) (*models.BulkOperation, error) {
	op, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch op.Status {
	case models.BulkOperationStatusCompleted:
		return nil, ErrCancelCompleted
	case models.BulkOperationStatusFailed:
		return op, nil
	}

	updated, err := s.repo.Finalize(ctx, id, models.BulkOperationStatusFailed, CancelReason)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel bulk operation %s: %w", id, err)
	}
	if !updated {
		// The executor reached a terminal status first; report what it became.
		op, err = s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if op.Status == models.BulkOperationStatusCompleted {
			return nil, ErrCancelCompleted
		}
		return op, nil
	}

	events.Publish(events.Event{
		Type:        events.EventOperationFailed,
		OperationID: op.ID,
		EntityType:  op.EntityType,
		Operation:   op.Operation,
		CompanyID:   op.CompanyID,
		Error:       CancelReason,
	})

	logger.InfoWithFields("Bulk operation cancelled", map[string]interface{}{
		"id": id,
	})
	return s.Get(ctx, id)
}

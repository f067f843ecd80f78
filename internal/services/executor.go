package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/db/repos"
	"github.com/sitegrid/sitegrid/internal/events"
	"github.com/sitegrid/sitegrid/internal/logger"
	"github.com/sitegrid/sitegrid/internal/records"
)

// DefaultItemTimeout bounds a single record mutation; a timeout counts as a
// per-record failure and fails the whole operation
const DefaultItemTimeout = 30 * time.Second

// StaleReason is the error message recorded on operations that were still
// processing when the service restarted
const StaleReason = "execution interrupted by service restart"

// Executor applies a processing bulk operation to every selected record,
// one goroutine per operation. Record mutations are sequential and in the
// order of SelectedIDs; the persisted status is polled between records so a
// cancellation stops the loop cooperatively. Mutations already applied are
// never rolled back.
type Executor struct {
	ctx         context.Context
	ops         *repos.BulkOperationRepository
	store       records.Store
	itemTimeout time.Duration
	wg          sync.WaitGroup
}

// NewExecutor creates a new executor. The context bounds the lifetime of all
// spawned executions; cancelling it stops in-flight loops between records.
func NewExecutor(ctx context.Context, ops *repos.BulkOperationRepository, store records.Store, itemTimeout time.Duration) *Executor {
	if itemTimeout <= 0 {
		itemTimeout = DefaultItemTimeout
	}
	return &Executor{
		ctx:         ctx,
		ops:         ops,
		store:       store,
		itemTimeout: itemTimeout,
	}
}

// Spawn launches the execution of an operation already marked processing
func (e *Executor) Spawn(op *models.BulkOperation) {
	e.wg.Add(1)
	go e.run(op)
}

// Wait blocks until every spawned execution has returned
func (e *Executor) Wait() {
	e.wg.Wait()
}

// RecoverStale marks operations orphaned in processing status as failed.
// Run once on startup, before the first Spawn.
func (e *Executor) RecoverStale(ctx context.Context) error {
	count, err := e.ops.FailStale(ctx, StaleReason)
	if err != nil {
		return fmt.Errorf("failed to recover stale bulk operations: %w", err)
	}
	if count > 0 {
		logger.Warnf("Marked %d stale bulk operations as failed after restart", count)
	}
	return nil
}

func (e *Executor) run(op *models.BulkOperation) {
	defer e.wg.Done()

	total := len(op.SelectedIDs)
	processed := 0

	for _, recordID := range op.SelectedIDs {
		select {
		case <-e.ctx.Done():
			// Shutting down; leave the row processing, RecoverStale picks it
			// up on the next start.
			logger.Warnf("Bulk operation %s interrupted by shutdown after %d/%d records", op.ID, processed, total)
			return
		default:
		}

		status, err := e.ops.GetStatus(e.ctx, op.ID)
		if err != nil {
			e.finalize(op, models.BulkOperationStatusFailed,
				fmt.Sprintf("status check failed: %v", err))
			return
		}
		if status.IsTerminal() {
			logger.InfoWithFields("Bulk operation stopped before completion", map[string]interface{}{
				"id":        op.ID,
				"status":    status.String(),
				"processed": processed,
				"total":     total,
			})
			return
		}

		if err := e.applyRecord(op, recordID); err != nil {
			e.finalize(op, models.BulkOperationStatusFailed,
				fmt.Sprintf("failed on %s record %s: %v", op.EntityType, recordID, err))
			return
		}

		processed++
		if err := e.ops.UpdateProgress(e.ctx, op.ID, processed*100/total); err != nil {
			// Progress is advisory between terminal writes; keep going.
			logger.Warnf("Failed to update progress for bulk operation %s: %v", op.ID, err)
		}
	}

	e.finalize(op, models.BulkOperationStatusCompleted, "")
}

// applyRecord mutates one record under the per-record timeout
func (e *Executor) applyRecord(op *models.BulkOperation, recordID string) error {
	ctx, cancel := context.WithTimeout(e.ctx, e.itemTimeout)
	defer cancel()

	switch op.Operation {
	case models.OperationUpdate:
		return e.store.Update(ctx, op.EntityType, recordID, op.Changes)
	case models.OperationDelete:
		return e.store.Delete(ctx, op.EntityType, recordID)
	default:
		return fmt.Errorf("unsupported operation: %s", op.Operation)
	}
}

func (e *Executor) finalize(op *models.BulkOperation, status models.BulkOperationStatus, errorMessage string) {
	updated, err := e.ops.Finalize(e.ctx, op.ID, status, errorMessage)
	if err != nil {
		logger.ErrorWithFields("Failed to finalize bulk operation", map[string]interface{}{
			"id":     op.ID,
			"status": status.String(),
			"error":  err.Error(),
		})
		return
	}
	if !updated {
		// A cancel landed first; the terminal state it wrote stands.
		logger.Infof("Bulk operation %s already terminal, skipping %s", op.ID, status)
		return
	}

	eventType := events.EventOperationCompleted
	if status == models.BulkOperationStatusFailed {
		eventType = events.EventOperationFailed
	}
	events.Publish(events.Event{
		Type:        eventType,
		OperationID: op.ID,
		EntityType:  op.EntityType,
		Operation:   op.Operation,
		CompanyID:   op.CompanyID,
		Error:       errorMessage,
	})

	logger.InfoWithFields("Bulk operation finished", map[string]interface{}{
		"id":     op.ID,
		"status": status.String(),
		"error":  errorMessage,
	})
}

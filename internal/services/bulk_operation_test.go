package services

import (
	"errors"

	"github.com/sitegrid/sitegrid/internal/db/models"
)

func (s *ServicesTestSuite) TestGetNotFound() {
	_, err := s.svc.Get(s.ctx, "missing")
	s.Require().True(errors.Is(err, ErrBulkOperationNotFound))
}

func (s *ServicesTestSuite) TestExecuteUpdateHappyPath() {
	op := s.createOperation(models.OperationUpdate, []string{"1", "2", "3"})

	started, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusProcessing, started.Status)
	s.Require().Zero(started.Progress)

	s.executor.Wait()

	found, err := s.svc.Get(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusCompleted, found.Status)
	s.Require().Equal(100, found.Progress)
	s.Require().Empty(found.ErrorMessage)
	s.Require().NotNil(found.CompletedAt)

	// Records are mutated in selection order
	s.Require().Equal([]string{"1", "2", "3"}, s.store.updatedIDs())
	s.Require().Empty(s.store.deletedIDs())
}

func (s *ServicesTestSuite) TestExecuteDelete() {
	op := s.createOperation(models.OperationDelete, []string{"7", "8"})

	_, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)
	s.executor.Wait()

	found, err := s.svc.Get(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusCompleted, found.Status)
	s.Require().Equal([]string{"7", "8"}, s.store.deletedIDs())
	s.Require().Empty(s.store.updatedIDs())
}

func (s *ServicesTestSuite) TestExecuteNotFound() {
	_, err := s.svc.Execute(s.ctx, "missing")
	s.Require().True(errors.Is(err, ErrBulkOperationNotFound))
}

func (s *ServicesTestSuite) TestExecuteOnlyOnce() {
	op := s.createOperation(models.OperationUpdate, []string{"1"})

	_, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)

	// The compare-and-swap already happened, re-execution is rejected no
	// matter how far the first run has gotten
	_, err = s.svc.Execute(s.ctx, op.ID)
	s.Require().True(errors.Is(err, ErrNotPending))

	s.executor.Wait()
	s.Require().Equal([]string{"1"}, s.store.updatedIDs())
}

func (s *ServicesTestSuite) TestExecuteFailsOnRecordError() {
	op := s.createOperation(models.OperationUpdate, []string{"1", "2", "3"})
	s.store.failOn["2"] = errors.New("record locked")

	_, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)
	s.executor.Wait()

	found, err := s.svc.Get(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, found.Status)
	s.Require().Contains(found.ErrorMessage, "record 2")
	s.Require().Contains(found.ErrorMessage, "record locked")
	s.Require().NotNil(found.CompletedAt)

	// The failure reflects the one record already processed
	s.Require().Equal(33, found.Progress)

	// The first record stays mutated, the remaining ones are untouched
	s.Require().Equal([]string{"1"}, s.store.updatedIDs())
}

func (s *ServicesTestSuite) TestExecuteUnsupportedOperation() {
	op := s.createOperation("archive", []string{"1"})

	_, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)
	s.executor.Wait()

	found, err := s.svc.Get(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, found.Status)
	s.Require().Contains(found.ErrorMessage, "unsupported operation")
}

func (s *ServicesTestSuite) TestCancelPendingNeverExecutes() {
	op := s.createOperation(models.OperationUpdate, []string{"1", "2"})

	cancelled, err := s.svc.Cancel(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, cancelled.Status)
	s.Require().Equal(CancelReason, cancelled.ErrorMessage)
	s.Require().NotNil(cancelled.CompletedAt)

	// Execution is refused afterwards and nothing was ever mutated
	_, err = s.svc.Execute(s.ctx, op.ID)
	s.Require().True(errors.Is(err, ErrNotPending))
	s.Require().Empty(s.store.updatedIDs())
}

func (s *ServicesTestSuite) TestCancelProcessingStopsBetweenRecords() {
	op := s.createOperation(models.OperationUpdate, []string{"1", "2", "3"})
	point := newBlockPoint()
	s.store.blockOn["1"] = point

	_, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)

	// The executor is inside the first record mutation; cancel now
	<-point.entered
	cancelled, err := s.svc.Cancel(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, cancelled.Status)
	s.Require().Equal(CancelReason, cancelled.ErrorMessage)

	close(point.release)
	s.executor.Wait()

	// The in-flight record finished, the rest were never touched and the
	// cancellation outcome stands
	s.Require().Equal([]string{"1"}, s.store.updatedIDs())
	found, err := s.svc.Get(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, found.Status)
	s.Require().Equal(CancelReason, found.ErrorMessage)
}

func (s *ServicesTestSuite) TestCancelDuringFinalRecordStands() {
	op := s.createOperation(models.OperationUpdate, []string{"1", "2", "3"})
	point := newBlockPoint()
	s.store.blockOn["3"] = point

	_, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)

	// Cancel while the executor is inside the last record mutation; there is
	// no status poll left after it, so the executor goes straight to finalize
	<-point.entered
	cancelled, err := s.svc.Cancel(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, cancelled.Status)

	close(point.release)
	s.executor.Wait()

	// Every record was mutated, but the executor's completed write loses to
	// the terminal state the cancel already recorded
	s.Require().Equal([]string{"1", "2", "3"}, s.store.updatedIDs())
	found, err := s.svc.Get(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, found.Status)
	s.Require().Equal(CancelReason, found.ErrorMessage)
	s.Require().NotEqual(100, found.Progress)
}

func (s *ServicesTestSuite) TestCancelCompletedConflicts() {
	op := s.createOperation(models.OperationUpdate, []string{"1"})

	_, err := s.svc.Execute(s.ctx, op.ID)
	s.Require().NoError(err)
	s.executor.Wait()

	_, err = s.svc.Cancel(s.ctx, op.ID)
	s.Require().True(errors.Is(err, ErrCancelCompleted))
}

func (s *ServicesTestSuite) TestCancelFailedIsIdempotent() {
	op := s.createOperation(models.OperationUpdate, []string{"1"})

	_, err := s.svc.Cancel(s.ctx, op.ID)
	s.Require().NoError(err)

	again, err := s.svc.Cancel(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, again.Status)
	s.Require().Equal(CancelReason, again.ErrorMessage)
}

func (s *ServicesTestSuite) TestRecoverStale() {
	stale := s.createOperation(models.OperationUpdate, []string{"1"})
	pending := s.createOperation(models.OperationUpdate, []string{"2"})

	updated, err := s.repo.MarkProcessing(s.ctx, stale.ID)
	s.Require().NoError(err)
	s.Require().True(updated)

	s.Require().NoError(s.executor.RecoverStale(s.ctx))

	found, err := s.svc.Get(s.ctx, stale.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, found.Status)
	s.Require().Equal(StaleReason, found.ErrorMessage)

	found, err = s.svc.Get(s.ctx, pending.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusPending, found.Status)
}

package repos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sitegrid/sitegrid/internal/db/models"
)

func (s *DBRepositoryTestSuite) TestCreateAndGetBulkOperation() {
	op := s.createTestBulkOperation()
	s.Require().NotEmpty(op.ID)
	s.Require().Equal(models.BulkOperationStatusPending, op.Status)

	found, err := s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(op.ID, found.ID)
	s.Require().Equal(op.EntityType, found.EntityType)
	s.Require().Equal(op.SelectedIDs, found.SelectedIDs)
	s.Require().Equal("In Progress", found.Changes["status"])
	s.Require().Zero(found.Progress)
	s.Require().Nil(found.CompletedAt)

	_, err = s.bulkOpRepo.GetByID(s.ctx, "missing")
	s.Require().True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *DBRepositoryTestSuite) TestGetStatus() {
	op := s.createTestBulkOperation()

	status, err := s.bulkOpRepo.GetStatus(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusPending, status)

	_, err = s.bulkOpRepo.GetStatus(s.ctx, "missing")
	s.Require().True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *DBRepositoryTestSuite) TestListBulkOperations() {
	first := s.createTestBulkOperation()
	s.createTestBulkOperation()

	other := &models.BulkOperation{
		EntityType:  "projects",
		Operation:   models.OperationDelete,
		SelectedIDs: []string{"9"},
		CreatedBy:   "u2",
		CompanyID:   "c1",
	}
	s.Require().NoError(s.bulkOpRepo.Create(s.ctx, other))

	// No filter returns everything
	ops, total, err := s.bulkOpRepo.List(s.ctx, models.BulkOperationFilter{}, nil)
	s.Require().NoError(err)
	s.Require().Equal(int64(3), total)
	s.Require().Len(ops, 3)

	// Filter by creator
	ops, total, err = s.bulkOpRepo.List(s.ctx, models.BulkOperationFilter{CreatedBy: "u2"}, nil)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), total)
	s.Require().Len(ops, 1)
	s.Require().Equal(other.ID, ops[0].ID)

	// Filter by entity type
	ops, _, err = s.bulkOpRepo.List(s.ctx, models.BulkOperationFilter{EntityType: "tasks"}, nil)
	s.Require().NoError(err)
	s.Require().Len(ops, 2)

	// Filter by status
	updated, err := s.bulkOpRepo.MarkProcessing(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Require().True(updated)

	status := models.BulkOperationStatusPending
	ops, total, err = s.bulkOpRepo.List(s.ctx, models.BulkOperationFilter{Status: &status}, nil)
	s.Require().NoError(err)
	s.Require().Equal(int64(2), total)
	s.Require().Len(ops, 2)

	// Pagination keeps the total across all pages
	ops, total, err = s.bulkOpRepo.List(s.ctx, models.BulkOperationFilter{}, &models.ListOptions{Limit: 2})
	s.Require().NoError(err)
	s.Require().Equal(int64(3), total)
	s.Require().Len(ops, 2)

	ops, _, err = s.bulkOpRepo.List(s.ctx, models.BulkOperationFilter{}, &models.ListOptions{Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Require().Len(ops, 1)
}

func (s *DBRepositoryTestSuite) TestMarkProcessing() {
	op := s.createTestBulkOperation()

	updated, err := s.bulkOpRepo.MarkProcessing(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().True(updated)

	found, err := s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusProcessing, found.Status)
	s.Require().Zero(found.Progress)

	// Second attempt loses the compare-and-swap
	updated, err = s.bulkOpRepo.MarkProcessing(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().False(updated)

	// Unknown id simply affects no rows
	updated, err = s.bulkOpRepo.MarkProcessing(s.ctx, "missing")
	s.Require().NoError(err)
	s.Require().False(updated)
}

func (s *DBRepositoryTestSuite) TestUpdateProgress() {
	op := s.createTestBulkOperation()

	// Progress writes only land on processing operations
	s.Require().NoError(s.bulkOpRepo.UpdateProgress(s.ctx, op.ID, 50))
	found, err := s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Zero(found.Progress)

	updated, err := s.bulkOpRepo.MarkProcessing(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().True(updated)

	s.Require().NoError(s.bulkOpRepo.UpdateProgress(s.ctx, op.ID, 33))
	found, err = s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(33, found.Progress)

	// Progress never moves backwards
	s.Require().NoError(s.bulkOpRepo.UpdateProgress(s.ctx, op.ID, 10))
	found, err = s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(33, found.Progress)
}

func (s *DBRepositoryTestSuite) TestFinalizeIsWriteOnce() {
	op := s.createTestBulkOperation()

	updated, err := s.bulkOpRepo.MarkProcessing(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().True(updated)

	updated, err = s.bulkOpRepo.Finalize(s.ctx, op.ID, models.BulkOperationStatusCompleted, "")
	s.Require().NoError(err)
	s.Require().True(updated)

	found, err := s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusCompleted, found.Status)
	s.Require().Equal(100, found.Progress)
	s.Require().NotNil(found.CompletedAt)

	// A terminal row never changes again
	updated, err = s.bulkOpRepo.Finalize(s.ctx, op.ID, models.BulkOperationStatusFailed, "too late")
	s.Require().NoError(err)
	s.Require().False(updated)

	found, err = s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusCompleted, found.Status)
	s.Require().Empty(found.ErrorMessage)

	// Progress writes are no-ops too
	s.Require().NoError(s.bulkOpRepo.UpdateProgress(s.ctx, op.ID, 10))
	found, err = s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(100, found.Progress)
}

func (s *DBRepositoryTestSuite) TestFinalizeFailedKeepsProgress() {
	op := s.createTestBulkOperation()

	updated, err := s.bulkOpRepo.MarkProcessing(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().True(updated)
	s.Require().NoError(s.bulkOpRepo.UpdateProgress(s.ctx, op.ID, 66))

	updated, err = s.bulkOpRepo.Finalize(s.ctx, op.ID, models.BulkOperationStatusFailed, "boom")
	s.Require().NoError(err)
	s.Require().True(updated)

	found, err := s.bulkOpRepo.GetByID(s.ctx, op.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, found.Status)
	s.Require().Equal("boom", found.ErrorMessage)
	s.Require().Equal(66, found.Progress)
	s.Require().NotNil(found.CompletedAt)
}

func (s *DBRepositoryTestSuite) TestFailStale() {
	stale := s.createTestBulkOperation()
	pending := s.createTestBulkOperation()

	updated, err := s.bulkOpRepo.MarkProcessing(s.ctx, stale.ID)
	s.Require().NoError(err)
	s.Require().True(updated)

	count, err := s.bulkOpRepo.FailStale(s.ctx, "execution interrupted by service restart")
	s.Require().NoError(err)
	s.Require().Equal(int64(1), count)

	found, err := s.bulkOpRepo.GetByID(s.ctx, stale.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusFailed, found.Status)
	s.Require().Contains(found.ErrorMessage, "restart")

	// Pending operations are untouched
	found, err = s.bulkOpRepo.GetByID(s.ctx, pending.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.BulkOperationStatusPending, found.Status)
}

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sitegrid/sitegrid/internal/api/v1/handlers"
	"github.com/sitegrid/sitegrid/internal/api/v1/routes"
	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/services"
	"github.com/sitegrid/sitegrid/internal/types"
)

func (s *APITestSuite) TestCreateBulkOperation() {
	op := s.createOperation()
	s.Require().NotEmpty(op.ID)
	s.Require().Equal(models.BulkOperationStatusPending, op.Status)
	s.Require().Zero(op.Progress)
	s.Require().Equal([]string{"1", "2"}, op.SelectedIDs)
}

func (s *APITestSuite) TestCreateBulkOperationRejectsBadBody() {
	req, err := http.NewRequest(http.MethodPost, routes.CreateBulkOperationURL(), nil)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	s.Require().Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *APITestSuite) TestCreateBulkOperationRejectsMissingFields() {
	status, env := s.request(http.MethodPost, routes.CreateBulkOperationURL(), types.CreateBulkOperationRequest{
		EntityType: "tasks",
		Operation:  models.OperationUpdate,
	})
	s.Require().Equal(fiber.StatusBadRequest, status)
	s.Require().False(env.Success)
	s.Require().Contains(env.Error, "missing required fields")
	s.Require().Contains(env.Error, "selectedIds")
	s.Require().Contains(env.Error, "changes")
}

func (s *APITestSuite) TestGetBulkOperation() {
	op := s.createOperation()

	found := s.getOperation(op.ID)
	s.Require().Equal(op.ID, found.ID)

	status, env := s.request(http.MethodGet, routes.GetBulkOperationURL("missing"), nil)
	s.Require().Equal(fiber.StatusNotFound, status)
	s.Require().False(env.Success)
	s.Require().Equal(handlers.ErrMsgBulkOpNotFound, env.Error)
}

func (s *APITestSuite) TestListBulkOperationsDefaults() {
	s.createOperation()
	s.createOperation()

	status, env := s.request(http.MethodGet, routes.ListBulkOperationsURL(nil), nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().True(env.Success)

	var ops []models.BulkOperation
	s.Require().NoError(json.Unmarshal(env.Data, &ops))
	s.Require().Len(ops, 2)

	s.Require().NotNil(env.Pagination)
	s.Require().Equal(models.DefaultPage, env.Pagination.Page)
	s.Require().Equal(models.DefaultLimit, env.Pagination.Limit)
	s.Require().Equal(2, env.Pagination.Total)
	s.Require().Equal(1, env.Pagination.TotalPages)
}

func (s *APITestSuite) TestListBulkOperationsNonNumericPaginationFallsBack() {
	s.createOperation()

	query := url.Values{}
	query.Set("page", "abc")
	query.Set("limit", "xyz")
	status, env := s.request(http.MethodGet, routes.ListBulkOperationsURL(query), nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal(models.DefaultPage, env.Pagination.Page)
	s.Require().Equal(models.DefaultLimit, env.Pagination.Limit)
}

func (s *APITestSuite) TestListBulkOperationsPagination() {
	for i := 0; i < 5; i++ {
		s.createOperation()
	}

	query := url.Values{}
	query.Set("page", "2")
	query.Set("limit", "2")
	status, env := s.request(http.MethodGet, routes.ListBulkOperationsURL(query), nil)
	s.Require().Equal(fiber.StatusOK, status)

	var ops []models.BulkOperation
	s.Require().NoError(json.Unmarshal(env.Data, &ops))
	s.Require().Len(ops, 2)

	s.Require().Equal(2, env.Pagination.Page)
	s.Require().Equal(2, env.Pagination.Limit)
	s.Require().Equal(5, env.Pagination.Total)
	s.Require().Equal(3, env.Pagination.TotalPages)
}

func (s *APITestSuite) TestListBulkOperationsFilters() {
	op := s.createOperation()

	query := url.Values{}
	query.Set("createdBy", "u1")
	query.Set("entityType", "tasks")
	query.Set("status", models.BulkOperationStatusPending.String())
	status, env := s.request(http.MethodGet, routes.ListBulkOperationsURL(query), nil)
	s.Require().Equal(fiber.StatusOK, status)

	var ops []models.BulkOperation
	s.Require().NoError(json.Unmarshal(env.Data, &ops))
	s.Require().Len(ops, 1)
	s.Require().Equal(op.ID, ops[0].ID)

	query.Set("createdBy", "someone-else")
	_, env = s.request(http.MethodGet, routes.ListBulkOperationsURL(query), nil)
	s.Require().NoError(json.Unmarshal(env.Data, &ops))
	s.Require().Empty(ops)
}

func (s *APITestSuite) TestListBulkOperationsRejectsUnknownStatus() {
	query := url.Values{}
	query.Set("status", "running")
	status, env := s.request(http.MethodGet, routes.ListBulkOperationsURL(query), nil)
	s.Require().Equal(fiber.StatusBadRequest, status)
	s.Require().Equal(handlers.ErrMsgInvalidStatus, env.Error)
}

func (s *APITestSuite) TestExecuteBulkOperationFlow() {
	op := s.createOperation()

	status, env := s.request(http.MethodPost, routes.ExecuteBulkOperationURL(op.ID), nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().True(env.Success)
	s.Require().Equal("Bulk operation execution started", env.Message)

	var started models.BulkOperation
	s.Require().NoError(json.Unmarshal(env.Data, &started))
	s.Require().Equal(models.BulkOperationStatusProcessing, started.Status)

	done := s.waitForTerminal(op.ID)
	s.Require().Equal(models.BulkOperationStatusCompleted, done.Status)
	s.Require().Equal(100, done.Progress)
	s.Require().NotNil(done.CompletedAt)

	// Executing again is rejected, the operation already left pending
	status, env = s.request(http.MethodPost, routes.ExecuteBulkOperationURL(op.ID), nil)
	s.Require().Equal(fiber.StatusBadRequest, status)
	s.Require().Equal(handlers.ErrMsgNotPending, env.Error)
}

func (s *APITestSuite) TestExecuteBulkOperationNotFound() {
	status, env := s.request(http.MethodPost, routes.ExecuteBulkOperationURL("missing"), nil)
	s.Require().Equal(fiber.StatusNotFound, status)
	s.Require().Equal(handlers.ErrMsgBulkOpNotFound, env.Error)
}

func (s *APITestSuite) TestCancelBulkOperation() {
	op := s.createOperation()

	status, env := s.request(http.MethodPost, routes.CancelBulkOperationURL(op.ID), nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().True(env.Success)

	var cancelled models.BulkOperation
	s.Require().NoError(json.Unmarshal(env.Data, &cancelled))
	s.Require().Equal(models.BulkOperationStatusFailed, cancelled.Status)
	s.Require().Equal(services.CancelReason, cancelled.ErrorMessage)
}

func (s *APITestSuite) TestCancelCompletedBulkOperation() {
	op := s.createOperation()

	status, _ := s.request(http.MethodPost, routes.ExecuteBulkOperationURL(op.ID), nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.waitForTerminal(op.ID)
	s.executor.Wait()

	status, env := s.request(http.MethodPost, routes.CancelBulkOperationURL(op.ID), nil)
	s.Require().Equal(fiber.StatusBadRequest, status)
	s.Require().Equal(handlers.ErrMsgCancelCompleted, env.Error)
}

func (s *APITestSuite) TestHealthCheck() {
	req, err := http.NewRequest(http.MethodGet, routes.HealthCheckURL(), nil)
	s.Require().NoError(err)

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
}

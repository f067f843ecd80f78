package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/services"
	"github.com/sitegrid/sitegrid/internal/types"
)

// BulkOperationHandler handles HTTP requests for bulk operations
type BulkOperationHandler struct {
	service *services.BulkOperation
}

// NewBulkOperationHandler creates a new bulk operation handler instance
func NewBulkOperationHandler(s *services.BulkOperation) *BulkOperationHandler {
	return &BulkOperationHandler{service: s}
}

// CreateBulkOperation handles the request to create a new bulk operation
func (h *BulkOperationHandler) CreateBulkOperation(c *fiber.Ctx) error {
	var req types.CreateBulkOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, ErrMsgInvalidReqFormat)
	}

	op := req.ToModel()
	if err := op.Validate(); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Create(c.Context(), op); err != nil {
		return respondServerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(types.Response{
		Success: true,
		Data:    op,
	})
}

// ListBulkOperations handles the request to list bulk operations with
// optional createdBy, status and entityType filters
func (h *BulkOperationHandler) ListBulkOperations(c *fiber.Ctx) error {
	filter := models.BulkOperationFilter{
		CreatedBy:  c.Query("createdBy"),
		EntityType: c.Query("entityType"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseBulkOperationStatus(statusStr)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, ErrMsgInvalidStatus)
		}
		filter.Status = &status
	}

	page, limit := parsePagination(c)
	opts := &models.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	ops, total, err := h.service.List(c.Context(), filter, opts)
	if err != nil {
		return respondServerError(c, err)
	}

	return c.JSON(types.Response{
		Success:    true,
		Data:       ops,
		Pagination: types.NewPagination(page, limit, int(total)),
	})
}

// GetBulkOperation handles the request to get a single bulk operation
func (h *BulkOperationHandler) GetBulkOperation(c *fiber.Ctx) error {
	op, err := h.service.Get(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrBulkOperationNotFound) {
		return respondError(c, fiber.StatusNotFound, ErrMsgBulkOpNotFound)
	}
	if err != nil {
		return respondServerError(c, err)
	}

	return c.JSON(types.Response{
		Success: true,
		Data:    op,
	})
}

// ExecuteBulkOperation handles the request to start executing a pending bulk
// operation. The response returns as soon as the operation is marked
// processing; execution continues in the background.
func (h *BulkOperationHandler) ExecuteBulkOperation(c *fiber.Ctx) error {
	op, err := h.service.Execute(c.Context(), c.Params("id"))
	switch {
	case errors.Is(err, services.ErrBulkOperationNotFound):
		return respondError(c, fiber.StatusNotFound, ErrMsgBulkOpNotFound)
	case errors.Is(err, services.ErrNotPending):
		return respondError(c, fiber.StatusBadRequest, ErrMsgNotPending)
	case err != nil:
		return respondServerError(c, err)
	}

	return c.JSON(types.Response{
		Success: true,
		Data:    op,
		Message: "Bulk operation execution started",
	})
}

// CancelBulkOperation handles the request to cancel a pending or processing
// bulk operation
func (h *BulkOperationHandler) CancelBulkOperation(c *fiber.Ctx) error {
	op, err := h.service.Cancel(c.Context(), c.Params("id"))
	switch {
	case errors.Is(err, services.ErrBulkOperationNotFound):
		return respondError(c, fiber.StatusNotFound, ErrMsgBulkOpNotFound)
	case errors.Is(err, services.ErrCancelCompleted):
		return respondError(c, fiber.StatusBadRequest, ErrMsgCancelCompleted)
	case err != nil:
		return respondServerError(c, err)
	}

	return c.JSON(types.Response{
		Success: true,
		Data:    op,
	})
}

package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/sitegrid/sitegrid/internal/services"
	"github.com/sitegrid/sitegrid/internal/types"
)

// SuggestionHandler handles HTTP requests for cached generated data
type SuggestionHandler struct {
	service *services.Suggestion
}

// NewSuggestionHandler creates a new suggestion handler instance
func NewSuggestionHandler(s *services.Suggestion) *SuggestionHandler {
	return &SuggestionHandler{service: s}
}

// SearchSuggestions handles the request for AI search suggestions
func (h *SuggestionHandler) SearchSuggestions(c *fiber.Ctx) error {
	query := c.Query("q")
	entityType := c.Query("entityType")
	companyID := c.Query("companyId")
	if query == "" || entityType == "" || companyID == "" {
		return respondError(c, fiber.StatusBadRequest, ErrMsgSuggestionParams)
	}

	suggestions, err := h.service.SearchSuggestions(c.Context(), query, entityType, companyID)
	if err != nil {
		return respondServerError(c, err)
	}

	return c.JSON(types.Response{
		Success: true,
		Data:    suggestions,
	})
}

// SmartFilters handles the request for smart filter suggestions
func (h *SuggestionHandler) SmartFilters(c *fiber.Ctx) error {
	entityType := c.Query("entityType")
	companyID := c.Query("companyId")
	if entityType == "" || companyID == "" {
		return respondError(c, fiber.StatusBadRequest, ErrMsgSmartFilterParams)
	}

	filters, err := h.service.SmartFilters(c.Context(), entityType, companyID)
	if err != nil {
		return respondServerError(c, err)
	}

	return c.JSON(types.Response{
		Success: true,
		Data:    filters,
	})
}

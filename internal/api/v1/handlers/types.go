// Package handlers provides HTTP request handling
package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/logger"
	"github.com/sitegrid/sitegrid/internal/types"
)

// respondError writes the error envelope with the given HTTP status
func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(types.Response{
		Success: false,
		Error:   msg,
	})
}

// respondServerError logs the full error and returns the generic 500 envelope
// so internals never leak to the caller
func respondServerError(c *fiber.Ctx, err error) error {
	logger.ErrorWithFields("Request failed", map[string]interface{}{
		"path":  c.Path(),
		"error": err.Error(),
	})
	return respondError(c, fiber.StatusInternalServerError, ErrMsgInternal)
}

// parsePagination reads page and limit from the query string. Unset or
// non-numeric values fall back to the defaults; any numeric value, including
// negative or oversized ones, passes through unclamped.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", models.DefaultPage)
	limit = c.QueryInt("limit", models.DefaultLimit)
	return page, limit
}

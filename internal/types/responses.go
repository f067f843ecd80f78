// Package types defines the request and response contracts of the HTTP API
package types

// Response is the envelope every API endpoint responds with
// Example: {"success":true,"data":{"id":"3f6c...","status":"pending"}}
type Response struct {
	// Whether the request succeeded
	Success bool `json:"success"`

	// Payload of a successful response, shape depends on the endpoint
	Data interface{} `json:"data,omitempty"`

	// Error message describing what went wrong
	Error string `json:"error,omitempty"`

	// Optional human readable detail accompanying the response
	Message string `json:"message,omitempty"`

	// Pagination information, present on list endpoints only
	Pagination *PaginationResponse `json:"pagination,omitempty"`
}

// PaginationResponse represents pagination information for list endpoints
// Example: {"page":1,"limit":50,"total":120,"totalPages":3}
type PaginationResponse struct {
	// Current page number (1-based)
	Page int `json:"page"`

	// Maximum number of items per page
	Limit int `json:"limit"`

	// Total number of items available across all pages
	Total int `json:"total"`

	// Total number of pages at the current limit
	TotalPages int `json:"totalPages"`
}

// NewPagination builds the pagination envelope for a list response
func NewPagination(page, limit, total int) *PaginationResponse {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

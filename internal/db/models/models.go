// Package models defines the persisted data model for the service
package models

const (
	// DefaultLimit is the default number of rows returned per listing API call
	DefaultLimit = 50
	// DefaultPage is the default page number for listing API calls
	DefaultPage = 1
)

// ListOptions represents pagination options for list operations
type ListOptions struct {
	Limit  int `json:"limit"`  // Number of items to return
	Offset int `json:"offset"` // Number of items to skip
}

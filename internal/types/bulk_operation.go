package types

import (
	"github.com/sitegrid/sitegrid/internal/db/models"
)

// CreateBulkOperationRequest is the body of POST /bulk-operations
// Example: {"entityType":"tasks","operation":"update","selectedIds":["1","2"],"changes":{"status":"In Progress"},"createdBy":"u1","companyId":"c1"}
type CreateBulkOperationRequest struct {
	// Entity collection the operation mutates, e.g. "tasks"
	EntityType string `json:"entityType"`

	// Mutation kind, e.g. "update" or "delete"
	Operation string `json:"operation"`

	// IDs of the records to mutate, in order
	SelectedIDs []string `json:"selectedIds"`

	// Field changes applied to each record; required for "update"
	Changes map[string]interface{} `json:"changes,omitempty"`

	// User that requested the operation
	CreatedBy string `json:"createdBy"`

	// Tenant the operation is scoped to
	CompanyID string `json:"companyId"`
}

// ToModel converts the request into a bulk operation record
func (r *CreateBulkOperationRequest) ToModel() *models.BulkOperation {
	return &models.BulkOperation{
		EntityType:  r.EntityType,
		Operation:   r.Operation,
		SelectedIDs: r.SelectedIDs,
		Changes:     r.Changes,
		CreatedBy:   r.CreatedBy,
		CompanyID:   r.CompanyID,
	}
}

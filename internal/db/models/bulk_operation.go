package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Field names for the bulk operation model
const (
	// BulkOperationStatusField is the database field name for the status column
	BulkOperationStatusField = "status"
	// BulkOperationProgressField is the database field name for the progress column
	BulkOperationProgressField = "progress"
)

// BulkOperationStatus represents the current state of a bulk operation
type BulkOperationStatus string

// Bulk operation status constants
const (
	// BulkOperationStatusPending indicates the operation is waiting to be executed
	BulkOperationStatusPending BulkOperationStatus = "pending"
	// BulkOperationStatusProcessing indicates the operation is currently being executed
	BulkOperationStatusProcessing BulkOperationStatus = "processing"
	// BulkOperationStatusCompleted indicates every selected record was mutated successfully
	BulkOperationStatusCompleted BulkOperationStatus = "completed"
	// BulkOperationStatusFailed indicates the operation stopped before mutating every record
	BulkOperationStatusFailed BulkOperationStatus = "failed"
)

// String returns the string representation of the bulk operation status
func (s BulkOperationStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status permits no further transitions
func (s BulkOperationStatus) IsTerminal() bool {
	return s == BulkOperationStatusCompleted || s == BulkOperationStatusFailed
}

// ParseBulkOperationStatus converts a string to a BulkOperationStatus
func ParseBulkOperationStatus(str string) (BulkOperationStatus, error) {
	switch str {
	case string(BulkOperationStatusPending):
		return BulkOperationStatusPending, nil
	case string(BulkOperationStatusProcessing):
		return BulkOperationStatusProcessing, nil
	case string(BulkOperationStatusCompleted):
		return BulkOperationStatusCompleted, nil
	case string(BulkOperationStatusFailed):
		return BulkOperationStatusFailed, nil
	default:
		return "", fmt.Errorf("invalid bulk operation status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for BulkOperationStatus
func (s *BulkOperationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseBulkOperationStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// BulkOperation represents a single user requested mutation applied to a batch
// of records, tracked as one stateful job
type BulkOperation struct {
	ID           string                 `json:"id" gorm:"primaryKey"`
	EntityType   string                 `json:"entityType" gorm:"not null;index"`
	Operation    string                 `json:"operation" gorm:"not null"`
	SelectedIDs  []string               `json:"selectedIds" gorm:"not null;serializer:json"`
	Changes      map[string]interface{} `json:"changes,omitempty" gorm:"serializer:json"`
	Status       BulkOperationStatus    `json:"status" gorm:"not null;index"`
	Progress     int                    `json:"progress" gorm:"not null;default:0"`
	CreatedBy    string                 `json:"createdBy" gorm:"not null;index"`
	CompanyID    string                 `json:"companyId" gorm:"not null;index"`
	ErrorMessage string                 `json:"errorMessage,omitempty" gorm:"type:text"`
	CreatedAt    time.Time              `json:"createdAt" gorm:"index"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
}

// Validate ensures the bulk operation carries every required field.
// The returned error enumerates all missing fields at once.
func (b *BulkOperation) Validate() error {
	var missing []string
	if b.EntityType == "" {
		missing = append(missing, "entityType")
	}
	if b.Operation == "" {
		missing = append(missing, "operation")
	}
	if len(b.SelectedIDs) == 0 {
		missing = append(missing, "selectedIds")
	}
	if b.CreatedBy == "" {
		missing = append(missing, "createdBy")
	}
	if b.CompanyID == "" {
		missing = append(missing, "companyId")
	}
	if b.Operation == OperationUpdate && len(b.Changes) == 0 {
		missing = append(missing, "changes")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Supported bulk operation kinds
const (
	// OperationUpdate applies the changes payload to every selected record
	OperationUpdate = "update"
	// OperationDelete removes every selected record
	OperationDelete = "delete"
)

// BeforeCreate is a GORM hook that runs before persisting a new bulk operation
func (b *BulkOperation) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BulkOperationStatusPending
	}
	return b.Validate()
}

// BulkOperationFilter narrows listing queries
type BulkOperationFilter struct {
	CreatedBy  string
	Status     *BulkOperationStatus
	EntityType string
}

// Package services contains the business logic of the service layer
package services

import "errors"

// Sentinel errors the handlers translate into HTTP statuses
var (
	// ErrBulkOperationNotFound indicates the requested bulk operation id is unknown
	ErrBulkOperationNotFound = errors.New("bulk operation not found")
	// ErrNotPending indicates an execute request against an operation that already left pending
	ErrNotPending = errors.New("bulk operation is not in pending status")
	// ErrCancelCompleted indicates a cancel request against a completed operation
	ErrCancelCompleted = errors.New("cannot cancel completed operation")
)

// CancelReason is the error message recorded on a user cancelled operation
const CancelReason = "cancelled by user"

package handlers

// Common error messages
const (
	ErrMsgInvalidReqFormat = "Invalid request format"
	ErrMsgInternal         = "Internal server error"
)

// Bulk operation error messages
const (
	ErrMsgBulkOpNotFound   = "Bulk operation not found"
	ErrMsgNotPending       = "Bulk operation is not in pending status"
	ErrMsgCancelCompleted  = "Cannot cancel completed operation"
	ErrMsgInvalidStatus    = "Invalid status filter"
	ErrMsgBulkOpListFailed = "Failed to list bulk operations"
	ErrMsgBulkOpGetFailed  = "Failed to get bulk operation"
)

// Suggestion error messages
const (
	ErrMsgSuggestionParams  = "q, entityType and companyId are required"
	ErrMsgSmartFilterParams = "entityType and companyId are required"
)

// Package types holds the request and response shapes of the HTTP API
package types

// PaginationResponse represents pagination information for list endpoints
// Example: {"total":42,"page":1,"limit":50,"offset":0}
type PaginationResponse struct {
	// Total number of items available across all pages
	Total int `json:"total"`

	// Current page number (1-based)
	Page int `json:"page"`

	// Maximum number of items per page
	Limit int `json:"limit"`

	// Number of items skipped from the beginning of the result set
	Offset int `json:"offset"`
}

// ListResponse defines a generic response structure for listing resources
type ListResponse[T any] struct {
	// Array of resource items
	Rows []T `json:"rows"`

	// Pagination information for the result set
	Pagination PaginationResponse `json:"pagination"`
}

// DepositErrorResponse is the body of a rejected deposit. Actual and Claimed
// are only set on an amount mismatch.
type DepositErrorResponse struct {
	Error   string `json:"error"`
	Actual  *int64 `json:"actual,omitempty"`
	Claimed *int64 `json:"claimed,omitempty"`
}

// DepositSuccessResponse is the body of a recorded deposit
type DepositSuccessResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	TxSignature string `json:"tx_signature"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// Package models defines the database models
package models

import "github.com/google/uuid"

const (
	// DefaultLimit is the max number of rows that are retrieved from the DB per listing API call
	DefaultLimit = 50
)

// ListOptions represents pagination options for list operations
type ListOptions struct {
	Limit  int `json:"limit"`  // Number of items to return
	Offset int `json:"offset"` // Number of items to skip
}

// newID assigns a random UUID to id if it is empty
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

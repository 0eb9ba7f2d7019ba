// Package handlers provides HTTP request handlers for the API
package handlers

import "github.com/talentpad/presale/internal/services"

// APIHandler carries the services shared by every handler
type APIHandler struct {
	talent   *services.Talent
	presale  *services.Presale
	position *services.Position
	deposit  *services.Deposit
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	talent *services.Talent,
	presale *services.Presale,
	position *services.Position,
	deposit *services.Deposit,
) *APIHandler {
	return &APIHandler{
		talent:   talent,
		presale:  presale,
		position: position,
		deposit:  deposit,
	}
}

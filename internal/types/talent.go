package types

// CreateTalentRequest is the body of a talent creation
type CreateTalentRequest struct {
	Handle        string  `json:"handle" validate:"required,handle"`
	Name          string  `json:"name" validate:"required,max=100"`
	Logline       string  `json:"logline,omitempty" validate:"max=280"`
	WalletAddress *string `json:"wallet_address,omitempty" validate:"omitempty,wallet"`
	Status        string  `json:"status,omitempty" validate:"omitempty,oneof=Rising Breakout A-List"`
}

// Validate checks the request fields
func (r CreateTalentRequest) Validate() error {
	return validateStruct(r)
}

// UpdateWalletRequest sets the wallet that receives a talent's deposits
type UpdateWalletRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,wallet"`
}

// Validate checks the request fields
func (r UpdateWalletRequest) Validate() error {
	return validateStruct(r)
}

package handlers

// Common error messages
const (
	ErrMsgInvalidReqBody = "Invalid request body"
	ErrMsgInternal       = "Internal server error"
)

// Talent error messages
const (
	ErrMsgTalentIDRequired     = "Talent id is required"
	ErrMsgTalentHandleRequired = "Talent handle is required"
	ErrMsgTalentNotFound       = "Talent not found"
	ErrMsgTalentHandleTaken    = "Talent handle already taken"
	ErrMsgTalentCreateFailed   = "Failed to create talent"
	ErrMsgTalentListFailed     = "Failed to list talents"
	ErrMsgTalentGetFailed      = "Failed to get talent"
)

// Presale error messages
const (
	ErrMsgPresaleNotFound       = "Presale not found"
	ErrMsgPresaleOpen           = "Talent already has an open presale"
	ErrMsgPresaleNotEnded       = "Presale has not ended"
	ErrMsgPresaleFinalized      = "Presale already finalized"
	ErrMsgPresaleCreateFailed   = "Failed to create presale"
	ErrMsgPresaleListFailed     = "Failed to list presales"
	ErrMsgPresaleGetFailed      = "Failed to get presale"
	ErrMsgPresaleFinalizeFailed = "Failed to finalize presale"
)

// Position and transaction error messages
const (
	ErrMsgWalletRequired        = "Wallet address is required"
	ErrMsgPositionNotFound      = "Position not found"
	ErrMsgPositionListFailed    = "Failed to list positions"
	ErrMsgPositionGetFailed     = "Failed to get position"
	ErrMsgTransactionListFailed = "Failed to list transactions"
	ErrMsgDepositCheckFailed    = "Failed to check deposit"
)

// Pagination error messages
const (
	ErrMsgInvalidLimit   = "Limit must be between 1 and 1000"
	ErrMsgNegativeOffset = "Offset must not be negative"
)

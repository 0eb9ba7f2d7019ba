package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Resource service errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrTalentNotFound    = errors.New("talent not found")
	ErrHandleTaken       = errors.New("talent handle already taken")
	ErrTalentHasPresale  = errors.New("talent already has an open presale")
	ErrPresaleNotFound   = errors.New("presale not found")
	ErrPresaleNotEnded   = errors.New("presale has not ended")
	ErrAlreadyFinalized  = errors.New("presale already finalized")
	ErrPositionNotFound  = errors.New("position not found")
)

// Deposit rejection messages. Clients match on these strings.
const (
	MsgMissingFields          = "Missing required fields"
	MsgInvalidAmount          = "Invalid deposit amount"
	MsgInvalidWallet          = "Invalid wallet address"
	MsgAlreadyProcessed       = "Transaction already processed"
	MsgCouldNotVerify         = "Could not verify transaction on blockchain"
	MsgTxNotFound             = "Transaction not found on blockchain"
	MsgTxFailed               = "Transaction failed on blockchain"
	MsgSignerMismatch         = "Transaction signer does not match wallet address"
	MsgAmountMismatch         = "Transaction amount does not match claimed amount"
	MsgPresaleNotFound        = "Presale not found"
	MsgTalentWalletNotFound   = "Talent wallet not found"
	MsgDestinationMismatch    = "Transaction destination does not match talent wallet"
	MsgDepositRecorded        = "Deposit recorded successfully"
	MsgDepositInternalFailure = "Failed to record deposit"
)

// DepositError is a rejected deposit. Status is the HTTP status to answer with,
// Reason a stable label used for metrics and logs.
type DepositError struct {
	Status  int
	Reason  string
	Message string
	// Actual and Claimed are set on an amount mismatch
	Actual  *int64
	Claimed *int64
	Err     error
}

func (e *DepositError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DepositError) Unwrap() error {
	return e.Err
}

func rejectDeposit(status int, reason, msg string) *DepositError {
	return &DepositError{Status: status, Reason: reason, Message: msg}
}

func errMissingFields() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "missing_fields", MsgMissingFields)
}

func errInvalidAmount() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "invalid_amount", MsgInvalidAmount)
}

func errInvalidWallet() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "invalid_wallet", MsgInvalidWallet)
}

func errAlreadyProcessed() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "duplicate", MsgAlreadyProcessed)
}

func errCouldNotVerify(err error) *DepositError {
	e := rejectDeposit(http.StatusBadRequest, "ledger_unavailable", MsgCouldNotVerify)
	e.Err = err
	return e
}

func errTxNotFound() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "tx_not_found", MsgTxNotFound)
}

func errTxFailed() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "tx_failed", MsgTxFailed)
}

func errSignerMismatch() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "signer_mismatch", MsgSignerMismatch)
}

func errAmountMismatch(actual, claimed int64) *DepositError {
	e := rejectDeposit(http.StatusBadRequest, "amount_mismatch", MsgAmountMismatch)
	e.Actual, e.Claimed = &actual, &claimed
	return e
}

func errPresaleNotFound() *DepositError {
	return rejectDeposit(http.StatusNotFound, "presale_not_found", MsgPresaleNotFound)
}

func errTalentWalletNotFound() *DepositError {
	return rejectDeposit(http.StatusNotFound, "talent_wallet_not_found", MsgTalentWalletNotFound)
}

func errDestinationMismatch() *DepositError {
	return rejectDeposit(http.StatusBadRequest, "destination_mismatch", MsgDestinationMismatch)
}

func errDepositInternal(err error) *DepositError {
	e := rejectDeposit(http.StatusInternalServerError, "internal", MsgDepositInternalFailure)
	e.Err = err
	return e
}

// Package ledger looks up confirmed transactions on the Solana chain.
package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the chain has no record of the signature
	ErrNotFound = errors.New("transaction not found")
	// ErrInvalidSignature is returned when the signature is not valid base58
	ErrInvalidSignature = errors.New("invalid transaction signature")
)

// Client fetches transactions from the chain.
type Client interface {
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)
}

// Transaction is the subset of a confirmed transaction that deposit
// verification needs. Account keys are the static keys of the message, in order.
type Transaction struct {
	Signature    string
	Slot         uint64
	BlockTime    *time.Time
	AccountKeys  []string
	PreBalances  []uint64
	PostBalances []uint64
	Fee          uint64
	Failed       bool
	HasMeta      bool
}

// HasBalances reports whether balance data is present for the fee payer.
func (t *Transaction) HasBalances() bool {
	return t.HasMeta && len(t.PreBalances) > 0 && len(t.PostBalances) > 0
}

// Signer returns the first static account key, the fee payer.
func (t *Transaction) Signer() string {
	if len(t.AccountKeys) == 0 {
		return ""
	}
	return t.AccountKeys[0]
}

// Recipient returns the second static account key. For a plain system
// transfer this is the destination.
func (t *Transaction) Recipient() string {
	if len(t.AccountKeys) < 2 {
		return ""
	}
	return t.AccountKeys[1]
}

// NetDebit is the fee payer's balance decrease minus feeEstimate.
func (t *Transaction) NetDebit(feeEstimate int64) int64 {
	if !t.HasBalances() {
		return 0
	}
	return int64(t.PreBalances[0]) - int64(t.PostBalances[0]) - feeEstimate
}

// Package mocks provides mock implementations of the external services the presale API depends on
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/talentpad/presale/internal/ledger"
)

// DefaultFeeLamports is the network fee charged by transfers built with Transfer
const DefaultFeeLamports = 5000

// SystemProgram is the account key of the Solana system program
const SystemProgram = "11111111111111111111111111111111"

var _ ledger.Client = &MockLedger{}

// MockLedger is a mock implementation of ledger.Client
type MockLedger struct {
	mock.Mock
}

// NewMockLedger creates a MockLedger with no expectations
func NewMockLedger() *MockLedger {
	return &MockLedger{}
}

// GetTransaction returns the transaction registered for signature
func (m *MockLedger) GetTransaction(ctx context.Context, signature string) (*ledger.Transaction, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

// ExpectTransfer registers a confirmed transfer of amount lamports from payer
// to dest under signature.
func (m *MockLedger) ExpectTransfer(signature, payer, dest string, amount uint64) *mock.Call {
	return m.On("GetTransaction", mock.Anything, signature).Return(Transfer(signature, payer, dest, amount), nil)
}

// ExpectNotFound makes signature unknown to the chain
func (m *MockLedger) ExpectNotFound(signature string) *mock.Call {
	return m.On("GetTransaction", mock.Anything, signature).Return(nil, ledger.ErrNotFound)
}

// Transfer builds a confirmed system transfer that paid DefaultFeeLamports
func Transfer(signature, payer, dest string, amount uint64) *ledger.Transaction {
	const start = 500_000_000_000
	return &ledger.Transaction{
		Signature:    signature,
		Slot:         4242,
		AccountKeys:  []string{payer, dest, SystemProgram},
		PreBalances:  []uint64{start, 0, 1},
		PostBalances: []uint64{start - amount - DefaultFeeLamports, amount, 1},
		Fee:          DefaultFeeLamports,
		HasMeta:      true,
	}
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"

	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/metrics"
)

// SolanaOptions configures a SolanaClient
type SolanaOptions struct {
	Endpoint   string
	Commitment string
	// RPS and Burst size the token bucket in front of the RPC node. RPS <= 0 disables it.
	RPS   float64
	Burst int
}

// SolanaClient looks up transactions through a Solana JSON-RPC node
type SolanaClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
	limiter    *rate.Limiter
}

var _ Client = (*SolanaClient)(nil)

// NewSolanaClient creates a client for the given RPC endpoint
func NewSolanaClient(opts SolanaOptions) (*SolanaClient, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("solana rpc endpoint is required")
	}
	commitment, err := parseCommitment(opts.Commitment)
	if err != nil {
		return nil, err
	}

	c := &SolanaClient{
		rpc:        rpc.New(opts.Endpoint),
		commitment: commitment,
	}
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return c, nil
}

func parseCommitment(s string) (rpc.CommitmentType, error) {
	switch strings.ToLower(s) {
	case "", "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	case "processed":
		return rpc.CommitmentProcessed, nil
	default:
		return "", fmt.Errorf("unknown commitment %q", s)
	}
}

// GetTransaction fetches a transaction by signature. Versioned (v0)
// transactions are accepted.
func (c *SolanaClient) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	maxVersion := uint64(0)
	start := time.Now()
	out, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, rpc.ErrNotFound):
		metrics.ObserveLedgerRPC("not_found", elapsed)
		return nil, ErrNotFound
	case err != nil:
		metrics.ObserveLedgerRPC("error", elapsed)
		logger.WarnWithFields("Solana RPC getTransaction failed", logger.Fields{
			"signature": signature,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	metrics.ObserveLedgerRPC("ok", elapsed)

	if out == nil || out.Transaction == nil {
		return nil, ErrNotFound
	}
	decoded, err := out.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	txn := &Transaction{
		Signature:   signature,
		Slot:        out.Slot,
		AccountKeys: make([]string, 0, len(decoded.Message.AccountKeys)),
	}
	for _, key := range decoded.Message.AccountKeys {
		txn.AccountKeys = append(txn.AccountKeys, key.String())
	}
	if out.BlockTime != nil {
		bt := out.BlockTime.Time()
		txn.BlockTime = &bt
	}
	if out.Meta != nil {
		txn.HasMeta = true
		txn.Fee = out.Meta.Fee
		txn.Failed = out.Meta.Err != nil
		txn.PreBalances = out.Meta.PreBalances
		txn.PostBalances = out.Meta.PostBalances
	}
	return txn, nil
}

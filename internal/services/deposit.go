package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/db/repos"
	"github.com/talentpad/presale/internal/events"
	"github.com/talentpad/presale/internal/lamports"
	"github.com/talentpad/presale/internal/ledger"
	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/metrics"
	"github.com/talentpad/presale/internal/types"
)

// Default deposit verification parameters, in lamports
const (
	DefaultFeeEstimateLamports int64 = 5000
	DefaultToleranceLamports   int64 = 10000
)

// DepositOptions configures on-chain amount verification
type DepositOptions struct {
	// FeeEstimateLamports is subtracted from the payer's balance decrease
	FeeEstimateLamports int64
	// ToleranceLamports is the accepted deviation between chain and claim
	ToleranceLamports int64
}

// DepositResult describes a credited deposit
type DepositResult struct {
	Signature        string
	PresaleID        string
	WalletAddress    string
	AmountLamports   int64
	PositionLamports int64
	Slot             uint64
}

// Deposit verifies deposit claims against the chain and credits them
type Deposit struct {
	presales     *repos.PresaleRepository
	talents      *repos.TalentRepository
	positions    *repos.PositionRepository
	transactions *repos.TransactionRepository
	deposits     *repos.DepositRepository
	ledger       ledger.Client
	opts         DepositOptions
	now          func() time.Time
}

// NewDepositService creates a new deposit service instance
func NewDepositService(
	presales *repos.PresaleRepository,
	talents *repos.TalentRepository,
	positions *repos.PositionRepository,
	transactions *repos.TransactionRepository,
	deposits *repos.DepositRepository,
	ledgerClient ledger.Client,
	opts DepositOptions,
) *Deposit {
	if opts.FeeEstimateLamports == 0 {
		opts.FeeEstimateLamports = DefaultFeeEstimateLamports
	}
	if opts.ToleranceLamports == 0 {
		opts.ToleranceLamports = DefaultToleranceLamports
	}
	return &Deposit{
		presales:     presales,
		talents:      talents,
		positions:    positions,
		transactions: transactions,
		deposits:     deposits,
		ledger:       ledgerClient,
		opts:         opts,
		now:          time.Now,
	}
}

// Record verifies a deposit claim and credits it. Checks run in a fixed order
// and the first failure is returned as a *DepositError. Input checks come
// before the replay check, which comes before any chain lookup.
func (s *Deposit) Record(ctx context.Context, req types.DepositRequest) (*DepositResult, error) {
	res, derr := s.record(ctx, req)
	if derr != nil {
		metrics.RecordDeposit(derr.Reason)
		fields := logger.Fields{
			"presale_id":   req.PresaleID,
			"wallet":       req.WalletAddress,
			"tx_signature": req.TxSignature,
			"reason":       derr.Reason,
		}
		if derr.Err != nil {
			fields["error"] = derr.Err.Error()
		}
		if derr.Status >= 500 {
			logger.ErrorWithFields("Deposit failed", fields)
		} else {
			logger.WarnWithFields("Deposit rejected", fields)
		}
		return nil, derr
	}

	metrics.RecordDeposit("recorded")
	metrics.AddDepositedLamports(res.AmountLamports)
	logger.InfoWithFields("Deposit recorded", logger.Fields{
		"presale_id":        res.PresaleID,
		"wallet":            res.WalletAddress,
		"tx_signature":      res.Signature,
		"amount":            lamports.Lamports(res.AmountLamports).String(),
		"position_lamports": res.PositionLamports,
	})
	events.Publish(events.Event{
		Type:             events.EventDepositRecorded,
		PresaleID:        res.PresaleID,
		WalletAddress:    res.WalletAddress,
		Signature:        res.Signature,
		AmountLamports:   res.AmountLamports,
		PositionLamports: res.PositionLamports,
	})
	return res, nil
}

func (s *Deposit) record(ctx context.Context, req types.DepositRequest) (*DepositResult, *DepositError) {
	if !req.HasRequiredFields() {
		return nil, errMissingFields()
	}
	claimed, err := req.Lamports()
	if err != nil {
		return nil, errInvalidAmount()
	}
	if !types.IsWalletAddress(req.WalletAddress) {
		return nil, errInvalidWallet()
	}

	processed, err := s.transactions.Exists(ctx, req.TxSignature)
	if err != nil {
		return nil, errDepositInternal(err)
	}
	if processed {
		return nil, errAlreadyProcessed()
	}

	txn, err := s.ledger.GetTransaction(ctx, req.TxSignature)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return nil, errTxNotFound()
	case err != nil:
		return nil, errCouldNotVerify(err)
	case txn == nil || !txn.HasBalances():
		return nil, errTxNotFound()
	case txn.Failed:
		return nil, errTxFailed()
	}

	if txn.Signer() != req.WalletAddress {
		return nil, errSignerMismatch()
	}

	actual := txn.NetDebit(s.opts.FeeEstimateLamports)
	if diff := actual - claimed; diff > s.opts.ToleranceLamports || -diff > s.opts.ToleranceLamports {
		return nil, errAmountMismatch(actual, claimed)
	}

	presale, err := s.presales.Get(ctx, req.PresaleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errPresaleNotFound()
	}
	if err != nil {
		return nil, errDepositInternal(err)
	}

	talent, err := s.talents.Get(ctx, presale.TalentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errTalentWalletNotFound()
	}
	if err != nil {
		return nil, errDepositInternal(err)
	}
	if talent.WalletAddress == nil || *talent.WalletAddress == "" {
		return nil, errTalentWalletNotFound()
	}
	if txn.Recipient() != *talent.WalletAddress {
		return nil, errDestinationMismatch()
	}

	position, err := s.deposits.Record(ctx, repos.DepositRecord{
		Signature:      req.TxSignature,
		PresaleID:      presale.ID,
		WalletAddress:  req.WalletAddress,
		AmountLamports: claimed,
		ReferralCode:   req.Referral(),
		Slot:           txn.Slot,
		ProcessedAt:    s.now(),
	})
	switch {
	case errors.Is(err, repos.ErrDuplicateSignature):
		return nil, errAlreadyProcessed()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errPresaleNotFound()
	case err != nil:
		return nil, errDepositInternal(err)
	}

	return &DepositResult{
		Signature:        req.TxSignature,
		PresaleID:        presale.ID,
		WalletAddress:    req.WalletAddress,
		AmountLamports:   claimed,
		PositionLamports: position.DepositedLamports,
		Slot:             txn.Slot,
	}, nil
}

// Check reports whether a deposit would satisfy the presale window, the
// per-wallet limits and the hard cap. It is advisory: Record credits funds
// that already moved on chain regardless of these rules.
func (s *Deposit) Check(ctx context.Context, req types.DepositCheckRequest) (*types.DepositCheckResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	presale, err := s.presales.Get(ctx, req.PresaleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Join(ErrPresaleNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load presale: %w", err)
	}

	var current int64
	position, err := s.positions.Get(ctx, req.PresaleID, req.WalletAddress)
	switch {
	case err == nil:
		current = position.DepositedLamports
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load position: %w", err)
	}

	status := presale.Status(s.now())
	remaining := presale.HardCapLamports - presale.RaisedLamports
	if remaining < 0 {
		remaining = 0
	}

	resp := &types.DepositCheckResponse{
		Status:               string(status),
		CurrentLamports:      current,
		MinDepositLamports:   presale.MinDepositLamports,
		MaxDepositLamports:   presale.MaxDepositLamports,
		RemainingCapLamports: remaining,
	}
	if status != models.PresaleStatusLive {
		resp.Reasons = append(resp.Reasons, fmt.Sprintf("Presale is %s", status))
	}
	if req.AmountLamports < presale.MinDepositLamports {
		resp.Reasons = append(resp.Reasons, fmt.Sprintf("Minimum deposit is %s",
			lamports.Lamports(presale.MinDepositLamports)))
	}
	if current+req.AmountLamports > presale.MaxDepositLamports {
		resp.Reasons = append(resp.Reasons, fmt.Sprintf("Maximum per wallet is %s, already deposited %s",
			lamports.Lamports(presale.MaxDepositLamports), lamports.Lamports(current)))
	}
	if req.AmountLamports > remaining {
		resp.Reasons = append(resp.Reasons, fmt.Sprintf("Only %s left before the hard cap",
			lamports.Lamports(remaining)))
	}
	resp.Allowed = len(resp.Reasons) == 0
	return resp, nil
}

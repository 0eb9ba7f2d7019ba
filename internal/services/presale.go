package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/db/repos"
	"github.com/talentpad/presale/internal/events"
	"github.com/talentpad/presale/internal/lamports"
	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/metrics"
	"github.com/talentpad/presale/internal/types"
)

const msPerDay = int64(24 * time.Hour / time.Millisecond)

// Presale provides business logic for presale operations
type Presale struct {
	repo         *repos.PresaleRepository
	talents      *repos.TalentRepository
	positions    *repos.PositionRepository
	transactions *repos.TransactionRepository
	now          func() time.Time
}

// NewPresaleService creates a new presale service instance
func NewPresaleService(
	repo *repos.PresaleRepository,
	talents *repos.TalentRepository,
	positions *repos.PositionRepository,
	transactions *repos.TransactionRepository,
) *Presale {
	return &Presale{
		repo:         repo,
		talents:      talents,
		positions:    positions,
		transactions: transactions,
		now:          time.Now,
	}
}

// Create opens a presale for a talent. A talent may only have one presale
// that is not finalized.
func (s *Presale) Create(ctx context.Context, req types.CreatePresaleRequest) (*models.Presale, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	talent, err := s.talents.Get(ctx, req.TalentID)
	if err != nil {
		return nil, notFound(ErrTalentNotFound, err)
	}
	if talent.PresaleID != nil {
		current, err := s.repo.Get(ctx, *talent.PresaleID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to check open presale: %w", err)
		case !current.IsFinalized:
			return nil, ErrTalentHasPresale
		}
	}

	start := req.StartTS
	if start == 0 {
		start = s.now().UnixMilli()
	}
	end := req.EndTS
	if end == 0 {
		end = start + int64(req.DurationDays)*msPerDay
	}
	if end <= start {
		return nil, errors.Join(ErrInvalidInput, errors.New("presale must end after it starts"))
	}

	presale := &models.Presale{
		TalentID:           talent.ID,
		Mint:               req.Mint,
		StartTS:            start,
		EndTS:              end,
		SoftCapLamports:    req.SoftCapLamports,
		HardCapLamports:    req.HardCapLamports,
		MinDepositLamports: req.MinDepositLamports,
		MaxDepositLamports: req.MaxDepositLamports,
		WhitelistEnabled:   req.WhitelistEnabled,
	}
	if err := s.repo.Create(ctx, presale); err != nil {
		return nil, fmt.Errorf("failed to create presale: %w", err)
	}
	logger.InfoWithFields("Presale created", logger.Fields{
		"presale_id": presale.ID,
		"talent_id":  talent.ID,
		"hard_cap":   lamports.Lamports(presale.HardCapLamports).String(),
	})
	return presale, nil
}

// Get retrieves a presale by ID
func (s *Presale) Get(ctx context.Context, id string) (*models.Presale, error) {
	presale, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(ErrPresaleNotFound, err)
	}
	return presale, nil
}

// List returns a page of presales and the total count
func (s *Presale) List(ctx context.Context, opts *models.ListOptions) ([]models.Presale, int64, error) {
	presales, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count presales: %w", err)
	}
	return presales, total, nil
}

// Summary derives the progress figures shown on a presale page
func (s *Presale) Summary(ctx context.Context, id string) (*types.PresaleSummary, error) {
	presale, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	contributors, err := s.positions.CountByPresale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count contributors: %w", err)
	}

	now := s.now()
	raised := lamports.Lamports(presale.RaisedLamports)
	progress, _ := lamports.Share(raised, lamports.Lamports(presale.HardCapLamports), 6).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		Float64()

	timeLeft := presale.EndTS - now.UnixMilli()
	if timeLeft < 0 {
		timeLeft = 0
	}
	return &types.PresaleSummary{
		PresaleID:       presale.ID,
		Status:          string(presale.Status(now)),
		Outcome:         presale.Outcome.String(),
		RaisedLamports:  presale.RaisedLamports,
		RaisedSOL:       raised.String(),
		SoftCapSOL:      lamports.Lamports(presale.SoftCapLamports).String(),
		HardCapSOL:      lamports.Lamports(presale.HardCapLamports).String(),
		ProgressPercent: progress,
		SoftCapReached:  presale.RaisedLamports >= presale.SoftCapLamports,
		Contributors:    contributors,
		TimeLeftMS:      timeLeft,
	}, nil
}

// ListTransactions returns the credited transactions of a presale and their count
func (s *Presale) ListTransactions(
	ctx context.Context,
	id string,
	opts *models.ListOptions,
) ([]models.ProcessedTransaction, int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, 0, err
	}
	txns, err := s.transactions.ListByPresale(ctx, id, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transactions.CountByPresale(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return txns, total, nil
}

// ListDue returns presales whose window has closed and that still need finalizing
func (s *Presale) ListDue(ctx context.Context, limit int) ([]models.Presale, error) {
	return s.repo.ListDue(ctx, s.now(), limit)
}

// Finalize settles an ended presale. The outcome is succeeded when the raised
// total reached the soft cap. Each position gets its share of the summed deposits.
func (s *Presale) Finalize(ctx context.Context, id string) (*models.Presale, error) {
	presale, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch presale.Status(s.now()) {
	case models.PresaleStatusFinalized:
		return nil, ErrAlreadyFinalized
	case models.PresaleStatusUpcoming, models.PresaleStatusLive:
		return nil, ErrPresaleNotEnded
	}

	settled, count, err := s.repo.Finalize(ctx, id)
	if err != nil {
		if errors.Is(err, repos.ErrAlreadyFinalized) {
			return nil, ErrAlreadyFinalized
		}
		return nil, notFound(ErrPresaleNotFound, err)
	}
	outcome := settled.Outcome

	metrics.RecordFinalized(outcome.String())
	logger.InfoWithFields("Presale finalized", logger.Fields{
		"presale_id": id,
		"outcome":    outcome.String(),
		"raised":     lamports.Lamports(settled.RaisedLamports).String(),
		"positions":  count,
	})
	events.Publish(events.Event{
		Type:      events.EventPresaleFinalized,
		PresaleID: id,
		Outcome:   outcome.String(),
	})
	return settled, nil
}

// HardCapWatcher returns an event handler that warns when a credited deposit
// left a presale above its hard cap. Deposits already moved on chain, so they
// are kept and the overflow is reported for manual refund.
func (s *Presale) HardCapWatcher() events.Handler {
	return func(ctx context.Context, e events.Event) error {
		presale, err := s.repo.Get(ctx, e.PresaleID)
		if err != nil {
			return fmt.Errorf("failed to load presale %s: %w", e.PresaleID, err)
		}
		over := presale.RaisedLamports - presale.HardCapLamports
		if over <= 0 {
			return nil
		}
		metrics.RecordHardCapOverflow()
		logger.WarnWithFields("Presale raised above hard cap", logger.Fields{
			"presale_id": presale.ID,
			"signature":  e.Signature,
			"wallet":     e.WalletAddress,
			"overflow":   lamports.Lamports(over).String(),
		})
		return nil
	}
}

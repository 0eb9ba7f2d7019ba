package services

import (
	"context"
	"fmt"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/db/repos"
	"github.com/talentpad/presale/internal/lamports"
	"github.com/talentpad/presale/internal/types"
)

// Position provides read access to wallet positions
type Position struct {
	repo     *repos.PositionRepository
	presales *repos.PresaleRepository
}

// NewPositionService creates a new position service instance
func NewPositionService(repo *repos.PositionRepository, presales *repos.PresaleRepository) *Position {
	return &Position{repo: repo, presales: presales}
}

// List returns a page of positions in a presale and the total count
func (s *Position) List(
	ctx context.Context,
	presaleID string,
	opts *models.ListOptions,
) ([]types.PositionResponse, int64, error) {
	presale, err := s.presales.Get(ctx, presaleID)
	if err != nil {
		return nil, 0, notFound(ErrPresaleNotFound, err)
	}
	positions, err := s.repo.ListByPresale(ctx, presaleID, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByPresale(ctx, presaleID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count positions: %w", err)
	}

	rows := make([]types.PositionResponse, 0, len(positions))
	for i := range positions {
		rows = append(rows, toPositionResponse(presale, &positions[i]))
	}
	return rows, total, nil
}

// Get returns the position of a wallet in a presale
func (s *Position) Get(ctx context.Context, presaleID, wallet string) (*types.PositionResponse, error) {
	presale, err := s.presales.Get(ctx, presaleID)
	if err != nil {
		return nil, notFound(ErrPresaleNotFound, err)
	}
	position, err := s.repo.Get(ctx, presaleID, wallet)
	if err != nil {
		return nil, notFound(ErrPositionNotFound, err)
	}
	resp := toPositionResponse(presale, position)
	return &resp, nil
}

func toPositionResponse(presale *models.Presale, p *models.Position) types.PositionResponse {
	share := lamports.Share(
		lamports.Lamports(p.DepositedLamports),
		lamports.Lamports(presale.RaisedLamports),
		models.SharePlaces,
	).String()
	if p.ProRataShare != nil {
		share = *p.ProRataShare
	}
	return types.PositionResponse{
		PresaleID:         p.PresaleID,
		WalletAddress:     p.WalletAddress,
		DepositedLamports: p.DepositedLamports,
		DepositedSOL:      lamports.Lamports(p.DepositedLamports).String(),
		ReferralCode:      p.ReferralCode,
		ProRataShare:      share,
	}
}

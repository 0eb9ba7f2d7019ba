package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/lamports"
)

// PositionRepository provides read access to wallet positions
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new position repository instance
func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Get retrieves the position of a wallet in a presale
func (r *PositionRepository) Get(ctx context.Context, presaleID, wallet string) (*models.Position, error) {
	var position models.Position
	err := r.db.WithContext(ctx).
		Where(&models.Position{PresaleID: presaleID, WalletAddress: wallet}).
		First(&position).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &position, nil
}

// ListByPresale returns the positions of a presale, largest deposit first.
// A nil opts returns every position.
func (r *PositionRepository) ListByPresale(
	ctx context.Context,
	presaleID string,
	opts *models.ListOptions,
) ([]models.Position, error) {
	var positions []models.Position
	query := r.db.WithContext(ctx).Where(&models.Position{PresaleID: presaleID})
	if opts != nil {
		query = applyListOptions(query, opts)
	}
	err := query.
		Order(models.PositionDepositedField + " DESC").
		Order("created_at ASC").
		Find(&positions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// CountByPresale returns the number of positions in a presale
func (r *PositionRepository) CountByPresale(ctx context.Context, presaleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Position{}).
		Where(&models.Position{PresaleID: presaleID}).
		Count(&count).Error
	return count, err
}

// storeShares writes every position's share of the summed deposits of a
// presale and returns the number of positions. It must run inside the
// transaction that changed the deposits.
func storeShares(tx *gorm.DB, presaleID string) (int, error) {
	var positions []models.Position
	err := tx.Select("id", models.PositionDepositedField).
		Where(&models.Position{PresaleID: presaleID}).
		Find(&positions).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load positions: %w", err)
	}

	var total lamports.Lamports
	for _, p := range positions {
		if total, err = total.Add(lamports.Lamports(p.DepositedLamports)); err != nil {
			return 0, fmt.Errorf("failed to sum positions: %w", err)
		}
	}
	for _, p := range positions {
		share := lamports.Share(lamports.Lamports(p.DepositedLamports), total, models.SharePlaces).String()
		err := tx.Model(&models.Position{}).
			Where("id = ?", p.ID).
			Update(models.PositionShareField, share).Error
		if err != nil {
			return 0, fmt.Errorf("failed to store pro-rata share: %w", err)
		}
	}
	return len(positions), nil
}

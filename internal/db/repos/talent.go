package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/talentpad/presale/internal/db/models"
)

// TalentRepository provides access to talent-related database operations
type TalentRepository struct {
	db *gorm.DB
}

// NewTalentRepository creates a new talent repository instance
func NewTalentRepository(db *gorm.DB) *TalentRepository {
	return &TalentRepository{db: db}
}

// Create creates a new talent in the database
func (r *TalentRepository) Create(ctx context.Context, talent *models.Talent) error {
	return r.db.WithContext(ctx).Create(talent).Error
}

// Get retrieves a talent by its ID
func (r *TalentRepository) Get(ctx context.Context, id string) (*models.Talent, error) {
	var talent models.Talent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&talent).Error; err != nil {
		return nil, fmt.Errorf("failed to get talent: %w", err)
	}
	return &talent, nil
}

// GetByHandle retrieves a talent by its unique handle
func (r *TalentRepository) GetByHandle(ctx context.Context, handle string) (*models.Talent, error) {
	var talent models.Talent
	if err := r.db.WithContext(ctx).Where(&models.Talent{Handle: handle}).First(&talent).Error; err != nil {
		return nil, fmt.Errorf("failed to get talent by handle: %w", err)
	}
	return &talent, nil
}

// List returns talents ordered by creation date, newest first
func (r *TalentRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Talent, error) {
	var talents []models.Talent
	err := applyListOptions(r.db.WithContext(ctx), opts).
		Order("created_at DESC").
		Find(&talents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list talents: %w", err)
	}
	return talents, nil
}

// Count returns the total number of talents
func (r *TalentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Talent{}).Count(&count).Error
	return count, err
}

// UpdateWallet sets the wallet that receives the talent's presale deposits
func (r *TalentRepository) UpdateWallet(ctx context.Context, id, wallet string) error {
	res := r.db.WithContext(ctx).Model(&models.Talent{}).
		Where("id = ?", id).
		Update(models.TalentWalletField, wallet)
	if res.Error != nil {
		return fmt.Errorf("failed to update talent wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update talent wallet: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// applyListOptions applies pagination to the given query
func applyListOptions(query *gorm.DB, opts *models.ListOptions) *gorm.DB {
	limit := models.DefaultLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}
	query = query.Limit(limit)
	if opts != nil && opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	return query
}

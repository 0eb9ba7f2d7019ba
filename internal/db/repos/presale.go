package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talentpad/presale/internal/db/models"
)

// ErrAlreadyFinalized is returned when finalizing a presale a second time
var ErrAlreadyFinalized = errors.New("presale already finalized")

// PresaleRepository provides access to presale-related database operations
type PresaleRepository struct {
	db *gorm.DB
}

// NewPresaleRepository creates a new presale repository instance
func NewPresaleRepository(db *gorm.DB) *PresaleRepository {
	return &PresaleRepository{db: db}
}

// Create inserts the presale and links it to its talent in one transaction
func (r *PresaleRepository) Create(ctx context.Context, presale *models.Presale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(presale).Error; err != nil {
			return fmt.Errorf("failed to create presale: %w", err)
		}
		res := tx.Model(&models.Talent{}).
			Where("id = ?", presale.TalentID).
			Update(models.TalentPresaleField, presale.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to link presale to talent: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("failed to link presale to talent: %w", gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// Get retrieves a presale by its ID
func (r *PresaleRepository) Get(ctx context.Context, id string) (*models.Presale, error) {
	var presale models.Presale
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&presale).Error; err != nil {
		return nil, fmt.Errorf("failed to get presale: %w", err)
	}
	return &presale, nil
}

// List returns presales ordered by end time, soonest first
func (r *PresaleRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Presale, error) {
	var presales []models.Presale
	err := applyListOptions(r.db.WithContext(ctx), opts).
		Order(models.PresaleEndField + " ASC").
		Find(&presales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list presales: %w", err)
	}
	return presales, nil
}

// Count returns the total number of presales
func (r *PresaleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Presale{}).Count(&count).Error
	return count, err
}

// ListDue returns presales whose window closed before now and are not finalized yet
func (r *PresaleRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Presale, error) {
	if limit <= 0 {
		limit = models.DefaultLimit
	}
	var presales []models.Presale
	err := r.db.WithContext(ctx).
		Where(models.PresaleEndField+" < ? AND "+models.PresaleFinalizedField+" = ?", now.UnixMilli(), false).
		Order(models.PresaleEndField + " ASC").
		Limit(limit).
		Find(&presales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due presales: %w", err)
	}
	return presales, nil
}

// Finalize settles the presale in one transaction. The presale row is locked
// so concurrent deposits serialize against it, the outcome is decided on the
// locked raised total and every position gets its share of the summed
// deposits. It returns the settled presale and its number of positions.
func (r *PresaleRepository) Finalize(ctx context.Context, id string) (*models.Presale, int, error) {
	var (
		presale models.Presale
		count   int
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&presale).Error
		if err != nil {
			return fmt.Errorf("failed to finalize presale: %w", err)
		}
		if presale.IsFinalized {
			return ErrAlreadyFinalized
		}

		outcome := models.PresaleOutcomeFailed
		if presale.RaisedLamports >= presale.SoftCapLamports {
			outcome = models.PresaleOutcomeSucceeded
		}
		err = tx.Model(&presale).Updates(map[string]interface{}{
			models.PresaleFinalizedField: true,
			"outcome":                    outcome,
			"updated_at":                 time.Now(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to finalize presale: %w", err)
		}
		presale.IsFinalized = true
		presale.Outcome = outcome

		count, err = storeShares(tx, id)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return &presale, count, nil
}

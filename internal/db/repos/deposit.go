package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talentpad/presale/internal/db"
	"github.com/talentpad/presale/internal/db/models"
)

// ErrDuplicateSignature is returned when the signature is already in the replay log
var ErrDuplicateSignature = errors.New("transaction already processed")

// DepositRecord is a verified deposit ready to be credited
type DepositRecord struct {
	Signature      string
	PresaleID      string
	WalletAddress  string
	AmountLamports int64
	ReferralCode   *string
	Slot           uint64
	ProcessedAt    time.Time
}

// DepositRepository credits verified deposits
type DepositRepository struct {
	db *gorm.DB
}

// NewDepositRepository creates a new deposit repository instance
func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

// Record appends the signature to the replay log, raises the presale total
// and credits the wallet position in a single transaction. Both totals are
// incremented in SQL so concurrent deposits never lose an update. The presale
// row is updated before the position so the deposit serializes against a
// concurrent Finalize.
func (r *DepositRepository) Record(ctx context.Context, rec DepositRecord) (*models.Position, error) {
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now()
	}

	var position models.Position
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := signatureExists(tx, rec.Signature)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSignature
		}

		err = tx.Create(&models.ProcessedTransaction{
			Signature:      rec.Signature,
			PresaleID:      rec.PresaleID,
			WalletAddress:  rec.WalletAddress,
			AmountLamports: rec.AmountLamports,
			Slot:           rec.Slot,
			ProcessedAt:    rec.ProcessedAt,
		}).Error
		if db.IsDuplicateKeyError(err) {
			return ErrDuplicateSignature
		}
		if err != nil {
			return fmt.Errorf("failed to insert processed transaction: %w", err)
		}

		res := tx.Model(&models.Presale{}).
			Where("id = ?", rec.PresaleID).
			Updates(map[string]interface{}{
				models.PresaleRaisedField: gorm.Expr(models.PresaleRaisedField+" + ?", rec.AmountLamports),
				"updated_at":              rec.ProcessedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update presale total: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("failed to update presale total: %w", gorm.ErrRecordNotFound)
		}

		var presale models.Presale
		err = tx.Select("id", models.PresaleFinalizedField).
			Where("id = ?", rec.PresaleID).
			First(&presale).Error
		if err != nil {
			return fmt.Errorf("failed to load presale: %w", err)
		}

		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "presale_id"}, {Name: "wallet_address"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				models.PositionDepositedField: gorm.Expr(
					"user_positions."+models.PositionDepositedField+" + ?", rec.AmountLamports),
				models.PositionReferralField: gorm.Expr(
					"COALESCE(user_positions." + models.PositionReferralField + ", excluded." + models.PositionReferralField + ")"),
				"updated_at": rec.ProcessedAt,
			}),
		}).Create(&models.Position{
			PresaleID:         rec.PresaleID,
			WalletAddress:     rec.WalletAddress,
			DepositedLamports: rec.AmountLamports,
			ReferralCode:      rec.ReferralCode,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to upsert position: %w", err)
		}

		// Late deposits into a settled presale rebalance the stored shares.
		if presale.IsFinalized {
			if _, err := storeShares(tx, rec.PresaleID); err != nil {
				return err
			}
		}

		return tx.Where(&models.Position{PresaleID: rec.PresaleID, WalletAddress: rec.WalletAddress}).
			First(&position).Error
	})
	if err != nil {
		return nil, err
	}
	return &position, nil
}

package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/talentpad/presale/internal/db/models"
)

// TransactionRepository provides read access to the processed-transaction log
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Exists reports whether the signature was already credited
func (r *TransactionRepository) Exists(ctx context.Context, signature string) (bool, error) {
	return signatureExists(r.db.WithContext(ctx), signature)
}

// Get retrieves a processed transaction by signature
func (r *TransactionRepository) Get(ctx context.Context, signature string) (*models.ProcessedTransaction, error) {
	var txn models.ProcessedTransaction
	if err := r.db.WithContext(ctx).Where("signature = ?", signature).First(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

// ListByPresale returns the transactions credited to a presale, newest first
func (r *TransactionRepository) ListByPresale(
	ctx context.Context,
	presaleID string,
	opts *models.ListOptions,
) ([]models.ProcessedTransaction, error) {
	var txns []models.ProcessedTransaction
	err := applyListOptions(r.db.WithContext(ctx), opts).
		Where(&models.ProcessedTransaction{PresaleID: presaleID}).
		Order("processed_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// CountByPresale returns the number of transactions credited to a presale
func (r *TransactionRepository) CountByPresale(ctx context.Context, presaleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProcessedTransaction{}).
		Where(&models.ProcessedTransaction{PresaleID: presaleID}).
		Count(&count).Error
	return count, err
}

func signatureExists(db *gorm.DB, signature string) (bool, error) {
	var count int64
	err := db.Model(&models.ProcessedTransaction{}).
		Where("signature = ?", signature).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up transaction: %w", err)
	}
	return count > 0, nil
}

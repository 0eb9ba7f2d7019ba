package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// PositionDepositedField is the column holding a wallet's cumulative deposit
	PositionDepositedField = "deposited_lamports"
	// PositionReferralField is the column holding the referral code of the first deposit
	PositionReferralField = "referral_code"
	// PositionShareField is the column holding the share written at finalization
	PositionShareField = "pro_rata_share"

	// SharePlaces is the precision of stored pro-rata shares
	SharePlaces = 12
)

// Position is a wallet's cumulative deposit into one presale
type Position struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PresaleID         string    `json:"presale_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_position_presale_wallet"`
	WalletAddress     string    `json:"wallet_address" gorm:"not null;type:varchar(44);uniqueIndex:idx_position_presale_wallet"`
	DepositedLamports int64     `json:"deposited_lamports" gorm:"not null;default:0"`
	ReferralCode      *string   `json:"referral_code,omitempty" gorm:"type:varchar(64)"`
	ProRataShare      *string   `json:"pro_rata_share,omitempty" gorm:"type:varchar(40)"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName keeps the table name used by the web client
func (Position) TableName() string {
	return "user_positions"
}

// BeforeCreate assigns the position ID
func (p *Position) BeforeCreate(_ *gorm.DB) error {
	newID(&p.ID)
	return nil
}

package models

import "time"

// ProcessedTransaction is an entry of the replay log. A signature is credited at most once.
type ProcessedTransaction struct {
	Signature      string    `json:"signature" gorm:"primaryKey;type:varchar(88)"`
	PresaleID      string    `json:"presale_id" gorm:"not null;type:varchar(36);index"`
	WalletAddress  string    `json:"wallet_address" gorm:"not null;type:varchar(44);index"`
	AmountLamports int64     `json:"amount_lamports" gorm:"not null"`
	Slot           uint64    `json:"slot"`
	ProcessedAt    time.Time `json:"processed_at" gorm:"not null;index"`
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	// PresaleRaisedField is the column holding the running total of deposits
	PresaleRaisedField = "raised_lamports"
	// PresaleEndField is the column holding the presale end (unix ms)
	PresaleEndField = "end_ts"
	// PresaleFinalizedField is the column marking a finalized presale
	PresaleFinalizedField = "is_finalized"
)

// PresaleOutcome is the result of a finalized presale
type PresaleOutcome int

const (
	// PresaleOutcomePending means the presale has not been finalized
	PresaleOutcomePending PresaleOutcome = iota
	// PresaleOutcomeSucceeded means the soft cap was reached
	PresaleOutcomeSucceeded
	// PresaleOutcomeFailed means the soft cap was not reached
	PresaleOutcomeFailed
)

var presaleOutcomeNames = []string{
	"pending",
	"succeeded",
	"failed",
}

// Presale is a time-boxed fundraising round for a talent.
// All amounts are integer lamports, timestamps are unix milliseconds.
type Presale struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TalentID           string         `json:"talent_id" gorm:"not null;type:varchar(36);index"`
	Mint               *string        `json:"mint,omitempty" gorm:"type:varchar(44)"`
	StartTS            int64          `json:"start_ts" gorm:"not null"`
	EndTS              int64          `json:"end_ts" gorm:"not null;index"`
	SoftCapLamports    int64          `json:"soft_cap_lamports" gorm:"not null"`
	HardCapLamports    int64          `json:"hard_cap_lamports" gorm:"not null"`
	MinDepositLamports int64          `json:"min_deposit_lamports" gorm:"not null"`
	MaxDepositLamports int64          `json:"max_deposit_lamports" gorm:"not null"`
	RaisedLamports     int64          `json:"raised_lamports" gorm:"not null;default:0"`
	IsFinalized        bool           `json:"is_finalized" gorm:"not null;default:false;index"`
	Outcome            PresaleOutcome `json:"outcome" gorm:"not null;default:0"`
	WhitelistEnabled   bool           `json:"whitelist_enabled" gorm:"not null;default:false"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// BeforeCreate assigns the presale ID
func (p *Presale) BeforeCreate(_ *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (o PresaleOutcome) String() string {
	if int(o) < 0 || int(o) >= len(presaleOutcomeNames) {
		return "unknown"
	}
	return presaleOutcomeNames[o]
}

// ParsePresaleOutcome converts a string representation of an outcome to PresaleOutcome
func ParsePresaleOutcome(str string) (PresaleOutcome, error) {
	for i, outcome := range presaleOutcomeNames {
		if outcome == str {
			return PresaleOutcome(i), nil
		}
	}
	return PresaleOutcomePending, fmt.Errorf("invalid presale outcome: %s", str)
}

// MarshalJSON implements the json.Marshaler interface for PresaleOutcome
func (o PresaleOutcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for PresaleOutcome
func (o *PresaleOutcome) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	outcome, err := ParsePresaleOutcome(str)
	if err != nil {
		return err
	}
	*o = outcome
	return nil
}

// Status derives the lifecycle status at the given time
func (p *Presale) Status(now time.Time) PresaleStatus {
	ms := now.UnixMilli()
	switch {
	case p.IsFinalized:
		return PresaleStatusFinalized
	case ms < p.StartTS:
		return PresaleStatusUpcoming
	case ms > p.EndTS:
		return PresaleStatusEnded
	default:
		return PresaleStatusLive
	}
}

// PresaleStatus is the lifecycle status of a presale, derived from its window
type PresaleStatus string

const (
	// PresaleStatusUpcoming means the window has not opened yet
	PresaleStatusUpcoming PresaleStatus = "upcoming"
	// PresaleStatusLive means deposits are being accepted
	PresaleStatusLive PresaleStatus = "live"
	// PresaleStatusEnded means the window closed but the presale is not finalized
	PresaleStatusEnded PresaleStatus = "ended"
	// PresaleStatusFinalized means the presale was settled
	PresaleStatusFinalized PresaleStatus = "finalized"
)

package types

import "errors"

// MaxPresaleDays bounds the length of a presale window
const MaxPresaleDays = 90

// CreatePresaleRequest is the body of a presale creation. Either EndTS or
// DurationDays must be set. A zero StartTS means now. Timestamps are unix ms.
type CreatePresaleRequest struct {
	TalentID           string  `json:"talent_id" validate:"required"`
	StartTS            int64   `json:"start_ts,omitempty" validate:"gte=0"`
	EndTS              int64   `json:"end_ts,omitempty" validate:"gte=0"`
	DurationDays       int     `json:"duration_days,omitempty" validate:"gte=0,lte=90"`
	SoftCapLamports    int64   `json:"soft_cap_lamports" validate:"required,gt=0"`
	HardCapLamports    int64   `json:"hard_cap_lamports" validate:"required,gtfield=SoftCapLamports"`
	MinDepositLamports int64   `json:"min_deposit_lamports" validate:"required,gt=0"`
	MaxDepositLamports int64   `json:"max_deposit_lamports" validate:"required,gtfield=MinDepositLamports,ltefield=HardCapLamports"`
	WhitelistEnabled   bool    `json:"whitelist_enabled,omitempty"`
	Mint               *string `json:"mint,omitempty" validate:"omitempty,wallet"`
}

// Validate checks the request fields
func (r CreatePresaleRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	switch {
	case r.EndTS == 0 && r.DurationDays == 0:
		return errors.New("validation failed: end_ts or duration_days is required")
	case r.EndTS != 0 && r.StartTS != 0 && r.EndTS <= r.StartTS:
		return errors.New("validation failed: end_ts must be after start_ts")
	}
	return nil
}

// PresaleSummary is a presale with its derived progress figures
type PresaleSummary struct {
	PresaleID       string  `json:"presale_id"`
	Status          string  `json:"status"`
	Outcome         string  `json:"outcome"`
	RaisedLamports  int64   `json:"raised_lamports"`
	RaisedSOL       string  `json:"raised_sol"`
	SoftCapSOL      string  `json:"soft_cap_sol"`
	HardCapSOL      string  `json:"hard_cap_sol"`
	ProgressPercent float64 `json:"progress_percent"`
	SoftCapReached  bool    `json:"soft_cap_reached"`
	Contributors    int64   `json:"contributors"`
	TimeLeftMS      int64   `json:"time_left_ms"`
}

// PositionResponse is a wallet position with its current pro-rata share
type PositionResponse struct {
	PresaleID         string  `json:"presale_id"`
	WalletAddress     string  `json:"wallet_address"`
	DepositedLamports int64   `json:"deposited_lamports"`
	DepositedSOL      string  `json:"deposited_sol"`
	ReferralCode      *string `json:"referral_code,omitempty"`
	// Share of the raised total; frozen at finalization, live before it
	ProRataShare string `json:"pro_rata_share"`
}

package types

import (
	"encoding/json"
	"errors"
	"math/big"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxDepositLamports is the largest amount a single deposit may claim (1,000,000 SOL)
	MaxDepositLamports int64 = 1_000_000_000_000_000
	// MaxReferralCodeLength matches the width of the referral_code column
	MaxReferralCodeLength = 64
)

var (
	// ErrAmountMissing is returned for an absent or zero amount
	ErrAmountMissing = errors.New("amount is missing")
	// ErrAmountInvalid is returned for a negative, fractional or oversized amount
	ErrAmountInvalid = errors.New("amount is invalid")

	maxDeposit    = new(big.Rat).SetInt64(MaxDepositLamports)
	numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

// DepositRequest is the body of a deposit submission. The amount is kept as
// a raw JSON number so that fractional and out-of-range values can be told
// apart from missing ones.
type DepositRequest struct {
	PresaleID      string      `json:"presale_id"`
	WalletAddress  string      `json:"wallet_address"`
	AmountLamports json.Number `json:"amount_lamports"`
	TxSignature    string      `json:"tx_signature"`
	ReferralCode   *string     `json:"referral_code,omitempty"`
}

// UnmarshalJSON accepts the amount as a JSON number or a numeric string.
// null, false and empty strings decode to an empty amount, which counts as
// missing rather than as a malformed body.
func (r *DepositRequest) UnmarshalJSON(data []byte) error {
	type plain DepositRequest
	aux := struct {
		*plain
		AmountLamports json.RawMessage `json:"amount_lamports"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.AmountLamports = amountFromJSON(aux.AmountLamports)
	return nil
}

func amountFromJSON(raw json.RawMessage) json.Number {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "", s == "null", s == "false":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return json.Number(s)
		}
		return json.Number(strings.TrimSpace(str))
	}
	return json.Number(s)
}

// Referral returns the trimmed referral code, or nil when it is empty or too
// long to store.
func (r DepositRequest) Referral() *string {
	if r.ReferralCode == nil {
		return nil
	}
	code := strings.TrimSpace(*r.ReferralCode)
	if code == "" || utf8.RuneCountInString(code) > MaxReferralCodeLength {
		return nil
	}
	return &code
}

// HasRequiredFields reports whether every required field is present. A zero
// amount counts as missing.
func (r DepositRequest) HasRequiredFields() bool {
	if strings.TrimSpace(r.PresaleID) == "" ||
		strings.TrimSpace(r.WalletAddress) == "" ||
		strings.TrimSpace(r.TxSignature) == "" {
		return false
	}
	_, err := ParseLamports(r.AmountLamports)
	return !errors.Is(err, ErrAmountMissing)
}

// Lamports parses the claimed amount
func (r DepositRequest) Lamports() (int64, error) {
	return ParseLamports(r.AmountLamports)
}

// ParseLamports converts a JSON number literal to lamports. The value must be
// an integer in (0, MaxDepositLamports].
func ParseLamports(n json.Number) (int64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, ErrAmountMissing
	}
	if !numberPattern.MatchString(s) {
		return 0, ErrAmountInvalid
	}
	v, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, ErrAmountInvalid
	}
	switch {
	case v.Sign() == 0:
		return 0, ErrAmountMissing
	case v.Sign() < 0, !v.IsInt(), v.Cmp(maxDeposit) > 0:
		return 0, ErrAmountInvalid
	}
	return v.Num().Int64(), nil
}

// DepositCheckRequest asks whether a deposit of AmountLamports would satisfy
// the presale rules before the wallet signs it
type DepositCheckRequest struct {
	PresaleID      string `json:"presale_id" validate:"required"`
	WalletAddress  string `json:"wallet_address" validate:"required,wallet"`
	AmountLamports int64  `json:"amount_lamports" validate:"required,gt=0,lte=1000000000000000"`
}

// Validate checks the request fields
func (r DepositCheckRequest) Validate() error {
	return validateStruct(r)
}

// DepositCheckResponse is the outcome of a preflight check. Reasons lists
// every rule the deposit would break.
type DepositCheckResponse struct {
	Allowed              bool     `json:"allowed"`
	Reasons              []string `json:"reasons,omitempty"`
	Status               string   `json:"status"`
	CurrentLamports      int64    `json:"current_lamports"`
	MinDepositLamports   int64    `json:"min_deposit_lamports"`
	MaxDepositLamports   int64    `json:"max_deposit_lamports"`
	RemainingCapLamports int64    `json:"remaining_cap_lamports"`
}

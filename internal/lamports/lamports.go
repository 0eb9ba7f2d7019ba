// Package lamports provides integer handling of SOL amounts
package lamports

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// PerSOL is the number of lamports in one SOL
const PerSOL = 1_000_000_000

// solDecimals is the number of fractional digits of a SOL amount
const solDecimals = 9

var (
	// ErrOverflow is returned when an amount does not fit in 64 bits
	ErrOverflow = errors.New("lamport amount overflows uint64")
	// ErrNegative is returned when a negative SOL amount is parsed
	ErrNegative = errors.New("lamport amount cannot be negative")
	// ErrPrecision is returned when a SOL amount has sub-lamport precision
	ErrPrecision = errors.New("SOL amount has more than 9 decimal places")
)

var perSOL = decimal.NewFromInt(PerSOL)

// Lamports is an amount of the smallest SOL unit.
// Amounts are never represented as floating point.
type Lamports uint64

// Add returns l+other or ErrOverflow
func (l Lamports) Add(other Lamports) (Lamports, error) {
	sum, carry := bits.Add64(uint64(l), uint64(other), 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return Lamports(sum), nil
}

// Int64 returns the amount as an int64, as stored in BIGINT columns
func (l Lamports) Int64() (int64, error) {
	if uint64(l) > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(l), nil
}

// SOL returns the amount in SOL as an exact decimal
func (l Lamports) SOL() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(l)), 0).Div(perSOL)
}

// String formats the amount as SOL with full lamport precision
func (l Lamports) String() string {
	return fmt.Sprintf("%s SOL", l.SOL().StringFixed(solDecimals))
}

// FromSOL parses a decimal SOL string (e.g. "2.5") into lamports
func FromSOL(s string) (Lamports, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}
	scaled := d.Mul(perSOL)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrPrecision
	}
	bi := scaled.BigInt()
	if !bi.IsUint64() {
		return 0, ErrOverflow
	}
	return Lamports(bi.Uint64()), nil
}

// Share returns part/total as a decimal truncated to the given places, so the
// shares of a set of parts never add up to more than one. A zero total yields zero.
func Share(part, total Lamports, places int32) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	p := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(part)), 0)
	t := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(total)), 0)
	q, _ := p.QuoRem(t, places)
	return q
}

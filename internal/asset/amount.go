package asset

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fd1az/swapquote/internal/apperror"
)

// Amount is an immutable Value Object representing a quantity of an asset.
// The raw value is always in chain units, scaled by 10^exp.
type Amount struct {
	raw   *big.Int
	asset AssetID
	exp   Exponent
}

// NewAmount creates a new Amount from a raw big.Int value.
func NewAmount(id AssetID, exp Exponent, raw *big.Int) (Amount, error) {
	if err := exp.Validate(); err != nil {
		return Amount{}, err
	}
	if raw == nil {
		raw = new(big.Int)
	}
	if raw.Sign() < 0 {
		return Amount{}, apperror.Newf(apperror.CodeNegativeAmount, "%s %s", raw, id)
	}

	return Amount{
		raw:   new(big.Int).Set(raw), // callers keep ownership of raw
		asset: id,
		exp:   exp,
	}, nil
}

// MustNewAmount creates an Amount, panics on error.
func MustNewAmount(id AssetID, exp Exponent, raw *big.Int) Amount {
	a, err := NewAmount(id, exp, raw)
	if err != nil {
		panic(err)
	}
	return a
}

// Zero creates a zero Amount for the given asset.
func Zero(id AssetID, exp Exponent) Amount {
	return MustNewAmount(id, exp, new(big.Int))
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() AssetID {
	return a.asset
}

// Exponent returns the decimal exponent of the raw value.
func (a Amount) Exponent() Exponent {
	return a.exp
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Sub subtracts b from a (same asset only).
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkCompatible(b); err != nil {
		return Amount{}, err
	}
	if a.Raw().Cmp(b.Raw()) < 0 {
		return Amount{}, apperror.Newf(apperror.CodeNegativeResult, "%s - %s", a, b)
	}
	return NewAmount(a.asset, a.exp, new(big.Int).Sub(a.Raw(), b.Raw()))
}

// Cmp compares two amounts of the same asset.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkCompatible(b); err != nil {
		return 0, err
	}
	return a.Raw().Cmp(b.Raw()), nil
}

// Equals returns true if both amounts are equal (same asset and value).
func (a Amount) Equals(b Amount) bool {
	return a.asset == b.asset && a.exp == b.exp && a.Raw().Cmp(b.Raw()) == 0
}

// Display returns the decimal string truncated to precision digits.
func (a Amount) Display(precision int) string {
	s, err := ToDisplay(a.Raw(), a.exp, max(precision, 0), false)
	if err != nil {
		return "?"
	}
	return s
}

// Abbreviated returns the K/M/B/T short form.
func (a Amount) Abbreviated(precision int) string {
	s, err := Abbreviate(a.Raw(), a.exp, max(precision, 0))
	if err != nil {
		return "?"
	}
	return s
}

// ToDecimal converts the amount to decimal.Decimal.
// This is a BOUNDARY function - use only for display, not calculations.
func (a Amount) ToDecimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.Raw(), -int32(a.exp))
}

// String returns a human-readable representation (e.g., "1.5 KAR").
func (a Amount) String() string {
	return fmt.Sprintf("%s %s", StripTrailingZeros(a.Display(a.exp.Digits())), a.asset)
}

func (a Amount) checkCompatible(b Amount) error {
	if a.asset != b.asset {
		return apperror.Newf(apperror.CodeInvalidAssetID, "asset mismatch: %s vs %s", a.asset, b.asset)
	}
	if a.exp != b.exp {
		return apperror.Newf(apperror.CodeInvalidExponent, "exponent mismatch: %d vs %d", a.exp, b.exp)
	}
	return nil
}

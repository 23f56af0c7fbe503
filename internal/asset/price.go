package asset

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fd1az/swapquote/internal/apperror"
)

// PricePrecision is the number of fractional digits kept in a Price rate.
const PricePrecision = 18

var pricePrecisionMultiplier = Exponent(PricePrecision).Scale()

// Price represents an exchange rate between two assets: how many units of
// quote one unit of base is worth. Stored as a fixed-point integer with
// PricePrecision decimals, truncated.
type Price struct {
	rate  *big.Int
	base  AssetID
	quote AssetID
}

// NewPriceFromRatio builds the price num/den exactly in integer arithmetic.
// Both sides must share the same exponent, so chain units cancel out.
func NewPriceFromRatio(base, quote AssetID, num, den *big.Int) (Price, error) {
	if num == nil || den == nil {
		return Price{}, apperror.Newf(apperror.CodeInvalidInput, "nil ratio for %s/%s", base, quote)
	}
	if num.Sign() < 0 || den.Sign() < 0 {
		return Price{}, apperror.Newf(apperror.CodeNegativeAmount, "ratio %s/%s", num, den)
	}
	if den.Sign() == 0 {
		return Price{}, apperror.Newf(apperror.CodeInvalidInput, "zero denominator for %s/%s", base, quote)
	}

	rate := new(big.Int).Mul(num, pricePrecisionMultiplier)
	rate.Quo(rate, den)

	return Price{rate: rate, base: base, quote: quote}, nil
}

// Rate returns the price rate as a decimal.
func (p Price) Rate() decimal.Decimal {
	if p.rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(p.rate, -PricePrecision)
}

// RateRaw returns the raw fixed-point rate.
func (p Price) RateRaw() *big.Int {
	if p.rate == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(p.rate)
}

// Base returns the base asset.
func (p Price) Base() AssetID {
	return p.base
}

// Quote returns the quote asset.
func (p Price) Quote() AssetID {
	return p.quote
}

// Pair returns the pair symbol (e.g., "KAR/KUSD").
func (p Price) Pair() string {
	return p.base.String() + "/" + p.quote.String()
}

// IsZero returns true if the price is zero.
func (p Price) IsZero() bool {
	return p.rate == nil || p.rate.Sign() == 0
}

// Invert returns the inverse price (e.g., KAR/KUSD -> KUSD/KAR).
func (p Price) Invert() (Price, error) {
	if p.IsZero() {
		return Price{}, apperror.Newf(apperror.CodeInvalidInput, "cannot invert zero price %s", p.Pair())
	}
	return NewPriceFromRatio(p.quote, p.base, pricePrecisionMultiplier, p.rate)
}

// Convert converts an amount of the base asset into the quote asset.
func (p Price) Convert(amount Amount) (Amount, error) {
	if amount.Asset() != p.base {
		return Amount{}, apperror.Newf(apperror.CodeInvalidAssetID,
			"asset mismatch: expected %s, got %s", p.base, amount.Asset())
	}

	out := new(big.Int).Mul(amount.Raw(), p.RateRaw())
	out.Quo(out, pricePrecisionMultiplier)

	return NewAmount(p.quote, amount.Exponent(), out)
}

// String returns a human-readable representation.
func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.Rate().String(), p.Pair())
}

package domain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/swapquote/internal/apperror"
)

// BasisPoints is a tolerance in hundredths of a percent.
type BasisPoints int

// MaxBasisPoints is 100%.
const MaxBasisPoints BasisPoints = 10000

var bpsDenominator = big.NewInt(int64(MaxBasisPoints))

// Validate checks the tolerance lies in [0, 10000].
func (b BasisPoints) Validate() error {
	if b < 0 || b > MaxBasisPoints {
		return apperror.Newf(apperror.CodeInvalidTolerance, "%d bps outside [0, %d]", b, MaxBasisPoints)
	}
	return nil
}

// Percent returns the tolerance as a percentage, e.g. 50 -> 0.5.
func (b BasisPoints) Percent() decimal.Decimal {
	return decimal.New(int64(b), -2)
}

// ParseTolerancePercent converts a user-entered percentage ("0.5") into
// basis points (50). Fractions of a basis point are rejected.
func ParseTolerancePercent(s string) (BasisPoints, error) {
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeInvalidTolerance, s)
	}
	bps := d.Shift(2)
	if !bps.Equal(bps.Truncate(0)) {
		return 0, apperror.Newf(apperror.CodeInvalidTolerance, "%s%% is finer than one basis point", s)
	}
	if bps.IsNegative() || bps.GreaterThan(decimal.NewFromInt(int64(MaxBasisPoints))) {
		return 0, apperror.Newf(apperror.CodeInvalidTolerance, "%s%% outside [0, 100]", s)
	}
	return BasisPoints(bps.IntPart()), nil
}

// MinimumReceived is the lowest output accepted for a quoted output q:
// q - floor(q * t / 10000).
func MinimumReceived(quote *big.Int, tolerance BasisPoints) (*big.Int, error) {
	cut, err := slippage(quote, tolerance)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(quote, cut), nil
}

// MaximumPaid is the highest input accepted for a quoted input q:
// q + ceil(q * t / 10000).
func MaximumPaid(quote *big.Int, tolerance BasisPoints) (*big.Int, error) {
	if _, err := slippage(quote, tolerance); err != nil {
		return nil, err
	}
	// ceil(a/b) = floor((a + b - 1) / b) for non-negative a
	extra := new(big.Int).Mul(quote, big.NewInt(int64(tolerance)))
	extra.Add(extra, bpsDenominator)
	extra.Sub(extra, one)
	extra.Quo(extra, bpsDenominator)
	return extra.Add(extra, quote), nil
}

// slippage returns floor(q * t / 10000) after validating its inputs.
func slippage(quote *big.Int, tolerance BasisPoints) (*big.Int, error) {
	if err := tolerance.Validate(); err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.Newf(apperror.CodeInvalidInput, "nil quote")
	}
	if quote.Sign() < 0 {
		return nil, apperror.Newf(apperror.CodeNegativeAmount, "quote %s", quote)
	}
	cut := new(big.Int).Mul(quote, big.NewInt(int64(tolerance)))
	return cut.Quo(cut, bpsDenominator), nil
}

// Bound applies the tolerance to the dependent side of a quote: the minimum
// target when the supply was fixed, the maximum supply when the target was.
func Bound(q SwapQuote, tolerance BasisPoints) (*big.Int, error) {
	if q.Given == SideTarget {
		return MaximumPaid(q.Supply, tolerance)
	}
	return MinimumReceived(q.Target, tolerance)
}

package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/fd1az/swapquote/internal/apperror"
)

// FeeRate is the fraction of the input amount retained by the pool as a
// trading fee, e.g. 3/1000 for 0.3%.
type FeeRate struct {
	Numerator   uint64
	Denominator uint64
}

// DefaultFeeRate is 0.3%.
var DefaultFeeRate = FeeRate{Numerator: 3, Denominator: 1000}

// Validate checks the denominator is non-zero and the rate is below one.
func (f FeeRate) Validate() error {
	if f.Denominator == 0 {
		return apperror.Newf(apperror.CodeZeroFeeDenominator, "fee %d/0", f.Numerator)
	}
	if f.Numerator >= f.Denominator {
		return apperror.Newf(apperror.CodeInvalidFeeRate, "fee %d/%d must be below 1", f.Numerator, f.Denominator)
	}
	return nil
}

// ParseFeeRate parses "3/1000".
func ParseFeeRate(s string) (FeeRate, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return FeeRate{}, apperror.Newf(apperror.CodeInvalidFeeRate, "%q: expected NUM/DEN", s)
	}
	num, err := strconv.ParseUint(strings.TrimSpace(left), 10, 64)
	if err != nil {
		return FeeRate{}, apperror.Wrap(err, apperror.CodeInvalidFeeRate, fmt.Sprintf("numerator %q", left))
	}
	den, err := strconv.ParseUint(strings.TrimSpace(right), 10, 64)
	if err != nil {
		return FeeRate{}, apperror.Wrap(err, apperror.CodeInvalidFeeRate, fmt.Sprintf("denominator %q", right))
	}
	f := FeeRate{Numerator: num, Denominator: den}
	if err := f.Validate(); err != nil {
		return FeeRate{}, err
	}
	return f, nil
}

// String returns "NUM/DEN".
func (f FeeRate) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// parts returns the denominator and the retained multiplier (den - num).
func (f FeeRate) parts() (den, keep *big.Int) {
	den = new(big.Int).SetUint64(f.Denominator)
	keep = new(big.Int).Sub(den, new(big.Int).SetUint64(f.Numerator))
	return den, keep
}

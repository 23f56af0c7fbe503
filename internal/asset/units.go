package asset

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/swapquote/internal/apperror"
)

// PrecisionPolicy decides what ToRaw does with fractional digits beyond the
// chain exponent.
type PrecisionPolicy string

const (
	// PolicyReject fails with PRECISION_LOSS.
	PolicyReject PrecisionPolicy = "reject"
	// PolicyTruncate drops the extra digits and flags the conversion.
	PolicyTruncate PrecisionPolicy = "truncate"
)

// ParsePrecisionPolicy parses "reject" or "truncate".
func ParsePrecisionPolicy(s string) (PrecisionPolicy, error) {
	switch p := PrecisionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyReject, PolicyTruncate:
		return p, nil
	case "":
		return PolicyReject, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidInput, "precision policy %q", s)
	}
}

// Conversion is the result of parsing a display amount.
type Conversion struct {
	Raw       *big.Int
	Truncated bool   // digits beyond the exponent were dropped
	Dropped   string // the dropped digits, for diagnostics
}

// Warning returns a PRECISION_LOSS error describing a truncation, nil otherwise.
func (c Conversion) Warning() error {
	if !c.Truncated {
		return nil
	}
	return apperror.Newf(apperror.CodePrecisionLoss, "dropped digits %q", c.Dropped)
}

// ToRaw converts a display amount into chain units.
func ToRaw(display string, exp Exponent, policy PrecisionPolicy) (*big.Int, error) {
	c, err := ParseRaw(display, exp, policy)
	if err != nil {
		return nil, err
	}
	return c.Raw, nil
}

// displayFormat accepts plain decimals only: no exponents, separators or hex.
var displayFormat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// ParseRaw converts a display amount ("12.5", ".5", "+3") into chain units,
// reporting whether excess precision was truncated under PolicyTruncate.
// Excess digits that are all zero lose nothing and are accepted under both
// policies.
func ParseRaw(display string, exp Exponent, policy PrecisionPolicy) (Conversion, error) {
	if err := exp.Validate(); err != nil {
		return Conversion{}, err
	}

	s := strings.TrimSpace(display)
	if !displayFormat.MatchString(s) {
		return Conversion{}, apperror.Newf(apperror.CodeInvalidNumericFormat, "%q", display)
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return Conversion{}, apperror.New(apperror.CodeInvalidNumericFormat,
			apperror.WithContext(fmt.Sprintf("%q", display)), apperror.WithCause(err))
	}
	if d.IsNegative() {
		return Conversion{}, apperror.Newf(apperror.CodeNegativeAmount, "%q", display)
	}

	// Scale up by the exponent; anything left after the point cannot be represented
	scaled := d.Shift(int32(exp))
	whole := scaled.Truncate(0)

	var out Conversion
	if !scaled.Equal(whole) {
		if policy != PolicyTruncate {
			return Conversion{}, apperror.Newf(apperror.CodePrecisionLoss,
				"%q has more than the %d decimal places the chain supports", display, exp.Digits())
		}
		out.Truncated = true
		out.Dropped = strings.TrimPrefix(scaled.Sub(whole).String(), "0.")
	}

	out.Raw = whole.BigInt()
	return out, nil
}

// ToDisplay converts chain units into a display amount, truncating (never
// rounding) the fractional part to precision digits, at most the exponent.
// With abbreviate set it returns the suffixed short form instead.
func ToDisplay(raw *big.Int, exp Exponent, precision int, abbreviate bool) (string, error) {
	if err := checkDisplayArgs(raw, exp, precision); err != nil {
		return "", err
	}
	if raw == nil {
		raw = new(big.Int)
	}
	if abbreviate {
		return Abbreviate(raw, exp, precision)
	}

	places := int32(min(precision, exp.Digits()))
	return decimal.NewFromBigInt(raw, -int32(exp)).Truncate(places).StringFixed(places), nil
}

type magnitude struct {
	shift  int32
	suffix string
}

// largest first
var magnitudes = []magnitude{
	{18, "Qi"},
	{15, "Qa"},
	{12, "T"},
	{9, "B"},
	{6, "M"},
	{3, "K"},
	{0, ""},
}

// Abbreviate formats chain units as a short form such as "2.53M", using the
// largest magnitude not above the value. The mantissa is truncated to
// precision digits and trailing zeros are stripped.
func Abbreviate(raw *big.Int, exp Exponent, precision int) (string, error) {
	if err := checkDisplayArgs(raw, exp, precision); err != nil {
		return "", err
	}
	if raw == nil {
		raw = new(big.Int)
	}

	value := decimal.NewFromBigInt(raw, -int32(exp))
	for _, m := range magnitudes {
		if m.shift != 0 && value.LessThan(decimal.New(1, m.shift)) {
			continue
		}
		mantissa := value.Shift(-m.shift).Truncate(int32(precision))
		return StripTrailingZeros(mantissa.StringFixed(int32(precision))) + m.suffix, nil
	}
	return "0", nil
}

// StripTrailingZeros removes trailing fractional zeros and a dangling decimal
// point. Values below one keep their leading "0".
func StripTrailingZeros(display string) string {
	if !strings.Contains(display, ".") {
		return display
	}
	s := strings.TrimRight(display, "0")
	s = strings.TrimSuffix(s, ".")
	switch {
	case s == "":
		return "0"
	case strings.HasPrefix(s, "."):
		return "0" + s
	}
	return s
}

func checkDisplayArgs(raw *big.Int, exp Exponent, precision int) error {
	if err := exp.Validate(); err != nil {
		return err
	}
	if raw != nil && raw.Sign() < 0 {
		return apperror.Newf(apperror.CodeNegativeAmount, "raw %s", raw)
	}
	if precision < 0 {
		return apperror.Newf(apperror.CodeInvalidInput, "precision %d", precision)
	}
	return nil
}

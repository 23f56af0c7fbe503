package asset

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fd1az/swapquote/internal/apperror"
)

// Exponent is the chain's decimal exponent: how many low-order digits of a
// raw amount are fractional. It is fixed for the lifetime of a connection.
type Exponent uint8

// MaxExponent bounds the exponents accepted from configuration.
const MaxExponent Exponent = 36

// powers of ten, read-only after init
var scales = func() [MaxExponent + 1]*big.Int {
	var out [MaxExponent + 1]*big.Int
	for i := range out {
		out[i] = math.BigPow(10, int64(i))
	}
	return out
}()

// Validate checks the exponent is supported.
func (e Exponent) Validate() error {
	if e > MaxExponent {
		return apperror.Newf(apperror.CodeInvalidExponent, "%d exceeds %d", e, MaxExponent)
	}
	return nil
}

// Scale returns a copy of 10^e.
func (e Exponent) Scale() *big.Int {
	if e > MaxExponent {
		return math.BigPow(10, int64(e))
	}
	return new(big.Int).Set(scales[e])
}

// Digits returns the exponent as an int.
func (e Exponent) Digits() int {
	return int(e)
}

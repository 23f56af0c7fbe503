package domain

import (
	"fmt"
	"math/big"

	"github.com/fd1az/swapquote/internal/apperror"
)

// Side names the independent variable of a quote.
type Side string

const (
	// SideSupply: the caller fixes the amount paid in, the target is computed.
	SideSupply Side = "supply"
	// SideTarget: the caller fixes the amount received, the supply is computed.
	SideTarget Side = "target"
)

// ParseSide parses "supply" or "target".
func ParseSide(s string) (Side, error) {
	switch side := Side(s); side {
	case SideSupply, SideTarget:
		return side, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidInput, "side %q: expected supply or target", s)
	}
}

var one = big.NewInt(1)

// QuoteGivenSupply returns the amount received for paying supply into a
// constant-product pool, with the fee taken from the input side:
//
//	eff    = supply * (den - num)
//	target = floor(eff * reserveOut / (reserveIn * den + eff))
func QuoteGivenSupply(reserveIn, reserveOut, supply *big.Int, fee FeeRate) (*big.Int, error) {
	if err := checkQuoteInputs(reserveIn, reserveOut, supply, fee); err != nil {
		return nil, err
	}
	if supply.Sign() == 0 {
		return new(big.Int), nil
	}

	den, keep := fee.parts()
	eff := new(big.Int).Mul(supply, keep)
	num := new(big.Int).Mul(eff, reserveOut)
	div := new(big.Int).Mul(reserveIn, den)
	div.Add(div, eff)
	if err := nonNegative(eff, num, div); err != nil {
		return nil, err
	}
	if div.Sign() == 0 {
		return nil, apperror.Newf(apperror.CodeNoLiquidity, "zero denominator")
	}

	target := new(big.Int).Quo(num, div)
	if err := nonNegative(target); err != nil {
		return nil, err
	}
	// Not reachable with valid inputs: reserveIn*den > 0 keeps target below reserveOut.
	if target.Cmp(reserveOut) >= 0 {
		return nil, apperror.Newf(apperror.CodeInsufficientLiquidity,
			"target %s would drain reserve %s", target, reserveOut)
	}
	return target, nil
}

// QuoteGivenTarget returns the amount to pay in to receive target. The
// result is biased one unit upward so the pool invariant never moves in the
// caller's favor:
//
//	supply = floor(reserveIn * target * den / ((reserveOut - target) * (den - num))) + 1
func QuoteGivenTarget(reserveIn, reserveOut, target *big.Int, fee FeeRate) (*big.Int, error) {
	if err := checkQuoteInputs(reserveIn, reserveOut, target, fee); err != nil {
		return nil, err
	}
	if target.Sign() == 0 {
		return new(big.Int), nil
	}
	if target.Cmp(reserveOut) >= 0 {
		return nil, apperror.Newf(apperror.CodeTargetExceedsReserve,
			"target %s, reserve %s", target, reserveOut)
	}

	den, keep := fee.parts()
	num := new(big.Int).Mul(reserveIn, target)
	num.Mul(num, den)
	div := new(big.Int).Sub(reserveOut, target)
	div.Mul(div, keep)
	if err := nonNegative(num, div); err != nil {
		return nil, err
	}
	if div.Sign() == 0 {
		return nil, apperror.Newf(apperror.CodeInvalidFeeRate, "fee %s retains the whole input", fee)
	}

	supply := new(big.Int).Quo(num, div)
	supply.Add(supply, one)
	return supply, nil
}

// SwapQuote is the result of quoting a swap against a pool snapshot.
type SwapQuote struct {
	Resolution Resolution
	Given      Side
	Supply     *big.Int
	Target     *big.Int
	Fee        FeeRate
}

// Counter returns the computed (dependent) side of the quote.
func (q SwapQuote) Counter() *big.Int {
	if q.Given == SideTarget {
		return new(big.Int).Set(q.Supply)
	}
	return new(big.Int).Set(q.Target)
}

// String implements fmt.Stringer.
func (q SwapQuote) String() string {
	req := q.Resolution.Requested()
	return fmt.Sprintf("%s %s -> %s %s (given %s)", q.Supply, req.Base, q.Target, req.Quote, q.Given)
}

// QuoteSupply quotes paying supply of the resolution's supply asset.
func QuoteSupply(pool Pool, res Resolution, supply *big.Int, fee FeeRate) (SwapQuote, error) {
	if err := checkPool(pool, res); err != nil {
		return SwapQuote{}, err
	}
	reserveIn, reserveOut := res.Orient(pool)
	target, err := QuoteGivenSupply(reserveIn, reserveOut, supply, fee)
	if err != nil {
		return SwapQuote{}, err
	}
	return SwapQuote{
		Resolution: res,
		Given:      SideSupply,
		Supply:     new(big.Int).Set(supply),
		Target:     target,
		Fee:        fee,
	}, nil
}

// QuoteTarget quotes receiving target of the resolution's target asset.
func QuoteTarget(pool Pool, res Resolution, target *big.Int, fee FeeRate) (SwapQuote, error) {
	if err := checkPool(pool, res); err != nil {
		return SwapQuote{}, err
	}
	reserveIn, reserveOut := res.Orient(pool)
	supply, err := QuoteGivenTarget(reserveIn, reserveOut, target, fee)
	if err != nil {
		return SwapQuote{}, err
	}
	return SwapQuote{
		Resolution: res,
		Given:      SideTarget,
		Supply:     supply,
		Target:     new(big.Int).Set(target),
		Fee:        fee,
	}, nil
}

func checkPool(pool Pool, res Resolution) error {
	if !pool.Pair.Equals(res.Pair) {
		return apperror.Newf(apperror.CodePoolNotFound, "pool %s does not back %s", pool.Pair, res.Pair)
	}
	return nil
}

// checkQuoteInputs validates in order: fee, signs, liquidity.
func checkQuoteInputs(reserveIn, reserveOut, amount *big.Int, fee FeeRate) error {
	if err := fee.Validate(); err != nil {
		return err
	}
	if reserveIn == nil || reserveOut == nil || amount == nil {
		return apperror.Newf(apperror.CodeInvalidInput, "nil quote input")
	}
	if reserveIn.Sign() < 0 || reserveOut.Sign() < 0 || amount.Sign() < 0 {
		return apperror.Newf(apperror.CodeNegativeAmount,
			"reserves %s/%s, amount %s", reserveIn, reserveOut, amount)
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return apperror.Newf(apperror.CodeNoLiquidity, "reserves %s/%s", reserveIn, reserveOut)
	}
	return nil
}

func nonNegative(vals ...*big.Int) error {
	for _, v := range vals {
		if v.Sign() < 0 {
			return apperror.Newf(apperror.CodeNegativeResult, "intermediate %s", v)
		}
	}
	return nil
}

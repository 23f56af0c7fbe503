package domain

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/fd1az/swapquote/internal/apperror"
)

// SwapLimits are the raw amounts handed to the transaction builder. Exactly
// one side is bounded: a supply-given swap carries a minimum target, a
// target-given swap a maximum supply.
type SwapLimits struct {
	Side   Side
	Supply *big.Int
	Target *big.Int
	Bound  *big.Int
}

// NewSwapLimits bounds a quote with the given tolerance.
func NewSwapLimits(q SwapQuote, tolerance BasisPoints) (SwapLimits, error) {
	bound, err := Bound(q, tolerance)
	if err != nil {
		return SwapLimits{}, err
	}
	return SwapLimits{
		Side:   q.Given,
		Supply: new(big.Int).Set(q.Supply),
		Target: new(big.Int).Set(q.Target),
		Bound:  bound,
	}, nil
}

// SupplyAmount is the exact input of a supply-given swap, or the quoted
// input of a target-given one.
func (l SwapLimits) SupplyAmount() *big.Int {
	return new(big.Int).Set(l.Supply)
}

// MinTargetAmount is the least output a supply-given swap accepts.
func (l SwapLimits) MinTargetAmount() *big.Int {
	if l.Side == SideSupply {
		return new(big.Int).Set(l.Bound)
	}
	return new(big.Int).Set(l.Target)
}

// MaxSupplyAmount is the most input a target-given swap accepts.
func (l SwapLimits) MaxSupplyAmount() *big.Int {
	if l.Side == SideTarget {
		return new(big.Int).Set(l.Bound)
	}
	return new(big.Int).Set(l.Supply)
}

// CallArgs are the limits as 256-bit words, the width of on-chain balances.
type CallArgs struct {
	SupplyAmount    *uint256.Int
	MinTargetAmount *uint256.Int
	MaxSupplyAmount *uint256.Int
	TargetAmount    *uint256.Int
}

// Uint256 converts the limits to 256-bit words, failing with AMOUNT_OVERFLOW
// when any value does not fit.
func (l SwapLimits) Uint256() (CallArgs, error) {
	var args CallArgs
	for _, f := range []struct {
		dst **uint256.Int
		v   *big.Int
	}{
		{&args.SupplyAmount, l.SupplyAmount()},
		{&args.MinTargetAmount, l.MinTargetAmount()},
		{&args.MaxSupplyAmount, l.MaxSupplyAmount()},
		{&args.TargetAmount, new(big.Int).Set(l.Target)},
	} {
		u, overflow := uint256.FromBig(f.v)
		if overflow || f.v.Sign() < 0 {
			return CallArgs{}, apperror.Newf(apperror.CodeAmountOverflow, "%s does not fit 256 bits", f.v)
		}
		*f.dst = u
	}
	return args, nil
}

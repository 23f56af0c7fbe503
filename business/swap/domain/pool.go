package domain

import (
	"math/big"

	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/asset"
)

// Pool is a snapshot of a constant-product liquidity pool. Reserves are
// positionally aligned to the canonical pair: Reserves[0] holds Pair.Base.
type Pool struct {
	Pair     TradingPair
	Reserves [2]*big.Int
}

// NewPool creates a pool snapshot, copying the reserves.
func NewPool(pair TradingPair, reserve0, reserve1 *big.Int) (Pool, error) {
	p := Pool{Pair: pair}
	for i, r := range []*big.Int{reserve0, reserve1} {
		if r == nil {
			r = new(big.Int)
		}
		if r.Sign() < 0 {
			return Pool{}, apperror.Newf(apperror.CodeNegativeAmount, "%s reserve[%d] = %s", pair, i, r)
		}
		p.Reserves[i] = new(big.Int).Set(r)
	}
	return p, nil
}

// Reserve returns a copy of reserve i (0 or 1). Missing reserves read as zero.
func (p Pool) Reserve(i int) *big.Int {
	if i < 0 || i > 1 || p.Reserves[i] == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(p.Reserves[i])
}

// HasLiquidity reports whether both reserves are strictly positive.
func (p Pool) HasLiquidity() bool {
	return p.Reserve(0).Sign() > 0 && p.Reserve(1).Sign() > 0
}

// CheckQuotable fails with NO_LIQUIDITY unless both reserves are positive.
// A pool with exactly one empty side is not a valid state and is reported
// separately from an empty pool.
func (p Pool) CheckQuotable() error {
	r0, r1 := p.Reserve(0), p.Reserve(1)
	if r0.Sign() < 0 || r1.Sign() < 0 {
		return apperror.Newf(apperror.CodeNegativeAmount, "%s reserves %s/%s", p.Pair, r0, r1)
	}
	switch {
	case r0.Sign() == 0 && r1.Sign() == 0:
		return apperror.Newf(apperror.CodeNoLiquidity, "%s: empty pool", p.Pair)
	case r0.Sign() == 0 || r1.Sign() == 0:
		return apperror.Newf(apperror.CodeNoLiquidity, "%s: one-sided pool %s/%s", p.Pair, r0, r1)
	}
	return nil
}

// SpotPrice is the reserve of the asset being bought over the reserve of the
// asset being sold: reserve[1]/reserve[0], or reserve[0]/reserve[1] when
// reversed. The returned price is quoted as target per supply asset.
func SpotPrice(pool Pool, reversed bool) (asset.Price, error) {
	if err := pool.CheckQuotable(); err != nil {
		return asset.Price{}, err
	}
	res := Resolution{Pair: pool.Pair, Reversed: reversed}
	reserveIn, reserveOut := res.Orient(pool)
	return asset.NewPriceFromRatio(res.SupplyAsset(), res.TargetAsset(), reserveOut, reserveIn)
}

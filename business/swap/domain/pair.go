// Package domain contains the core types and pure quoting math of the swap
// context. Nothing here performs I/O or holds mutable package state.
package domain

import (
	"math/big"
	"strings"

	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/asset"
)

// TradingPair is an ordered pair of assets. Order matters: the first element
// is the base, the second the quote.
type TradingPair struct {
	Base  asset.AssetID
	Quote asset.AssetID
}

// NewTradingPair creates a pair of two distinct assets.
func NewTradingPair(base, quote asset.AssetID) (TradingPair, error) {
	if base.IsZero() || quote.IsZero() {
		return TradingPair{}, apperror.Newf(apperror.CodeInvalidPair, "%s/%s: empty asset", base, quote)
	}
	if base.Equals(quote) {
		return TradingPair{}, apperror.Newf(apperror.CodeInvalidPair, "%s/%s: same asset on both sides", base, quote)
	}
	return TradingPair{Base: base, Quote: quote}, nil
}

// ParseTradingPair parses "KAR/KUSD".
func ParseTradingPair(s string) (TradingPair, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return TradingPair{}, apperror.Newf(apperror.CodeInvalidPair, "%q: expected BASE/QUOTE", s)
	}
	base, err := asset.ParseAssetID(left)
	if err != nil {
		return TradingPair{}, err
	}
	quote, err := asset.ParseAssetID(right)
	if err != nil {
		return TradingPair{}, err
	}
	return NewTradingPair(base, quote)
}

// MustParseTradingPair parses a pair, panics on error.
func MustParseTradingPair(s string) TradingPair {
	p, err := ParseTradingPair(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Swapped returns the pair with base and quote exchanged.
func (p TradingPair) Swapped() TradingPair {
	return TradingPair{Base: p.Quote, Quote: p.Base}
}

// Equals compares two pairs position by position.
func (p TradingPair) Equals(other TradingPair) bool {
	return p.Base.Equals(other.Base) && p.Quote.Equals(other.Quote)
}

// String returns "BASE/QUOTE".
func (p TradingPair) String() string {
	return p.Base.String() + "/" + p.Quote.String()
}

// Resolution is the canonical enabled pair a request maps to. Reversed is
// true when the request lists the assets in the opposite order.
type Resolution struct {
	Pair     TradingPair
	Reversed bool
}

// Resolve finds the enabled pair matching requested in either order. The
// list is scanned in order; at each entry the same-order match is checked
// before the swapped-order match, and the first hit wins.
func Resolve(enabled []TradingPair, requested TradingPair) (Resolution, error) {
	for _, p := range enabled {
		if p.Equals(requested) {
			return Resolution{Pair: p}, nil
		}
		if p.Equals(requested.Swapped()) {
			return Resolution{Pair: p, Reversed: true}, nil
		}
	}
	return Resolution{}, apperror.Newf(apperror.CodePairNotEnabled, "%s", requested)
}

// Requested returns the pair in the caller's order.
func (r Resolution) Requested() TradingPair {
	if r.Reversed {
		return r.Pair.Swapped()
	}
	return r.Pair
}

// SupplyAsset is the asset the caller pays in.
func (r Resolution) SupplyAsset() asset.AssetID {
	return r.Requested().Base
}

// TargetAsset is the asset the caller receives.
func (r Resolution) TargetAsset() asset.AssetID {
	return r.Requested().Quote
}

// Orient returns the pool reserves as (reserveIn, reserveOut) for a swap in
// the requested direction.
func (r Resolution) Orient(pool Pool) (*big.Int, *big.Int) {
	if r.Reversed {
		return pool.Reserve(1), pool.Reserve(0)
	}
	return pool.Reserve(0), pool.Reserve(1)
}

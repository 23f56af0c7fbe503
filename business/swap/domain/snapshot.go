package domain

import (
	"time"

	"github.com/fd1az/swapquote/internal/apperror"
)

// MarketSnapshot is the atomic unit of chain state a quote is computed
// against. It is treated as immutable once built; callers replace snapshots
// whole instead of updating pools in place.
type MarketSnapshot struct {
	EnabledPairs []TradingPair
	Pools        []Pool
	Fee          FeeRate
	Block        uint64
	ObservedAt   time.Time
}

// PoolFor returns the pool stored under the canonical pair.
func (s MarketSnapshot) PoolFor(pair TradingPair) (Pool, error) {
	for _, p := range s.Pools {
		if p.Pair.Equals(pair) {
			return p, nil
		}
	}
	return Pool{}, apperror.Newf(apperror.CodePoolNotFound, "%s at block %d", pair, s.Block)
}

// Resolve maps a requested pair onto the snapshot's enabled pairs.
func (s MarketSnapshot) Resolve(requested TradingPair) (Resolution, error) {
	return Resolve(s.EnabledPairs, requested)
}

// Validate checks the snapshot is internally consistent: a valid fee, no
// enabled pair listed twice in either order, and every pool keyed by an
// enabled pair with non-negative reserves.
func (s MarketSnapshot) Validate() error {
	if err := s.Fee.Validate(); err != nil {
		return apperror.New(apperror.CodeInvalidSnapshot, apperror.WithContext("fee"), apperror.WithCause(err))
	}

	for i, p := range s.EnabledPairs {
		for _, q := range s.EnabledPairs[:i] {
			if p.Equals(q) || p.Equals(q.Swapped()) {
				return apperror.Newf(apperror.CodeInvalidSnapshot, "pair %s enabled twice", p)
			}
		}
	}

	for _, pool := range s.Pools {
		res, err := s.Resolve(pool.Pair)
		if err != nil || res.Reversed {
			return apperror.Newf(apperror.CodeInvalidSnapshot, "pool %s is not keyed by an enabled canonical pair", pool.Pair)
		}
		if pool.Reserve(0).Sign() < 0 || pool.Reserve(1).Sign() < 0 {
			return apperror.Newf(apperror.CodeInvalidSnapshot, "pool %s has a negative reserve", pool.Pair)
		}
	}
	return nil
}

// Age returns how long ago the snapshot was observed.
func (s MarketSnapshot) Age(now time.Time) time.Duration {
	if s.ObservedAt.IsZero() {
		return 0
	}
	return now.Sub(s.ObservedAt)
}

// CheckFresh fails with STALE_SNAPSHOT when the snapshot is older than maxAge.
// A zero maxAge disables the check.
func (s MarketSnapshot) CheckFresh(now time.Time, maxAge time.Duration) error {
	if maxAge <= 0 {
		return nil
	}
	if age := s.Age(now); age > maxAge {
		return apperror.Newf(apperror.CodeStaleSnapshot, "block %d observed %s ago", s.Block, age.Round(time.Millisecond))
	}
	return nil
}

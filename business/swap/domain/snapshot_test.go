package domain

import (
	"testing"
	"time"

	"github.com/fd1az/swapquote/internal/apperror"
)

func testSnapshot(t *testing.T) MarketSnapshot {
	t.Helper()
	return MarketSnapshot{
		EnabledPairs: []TradingPair{karKUSD, dotKAR},
		Pools: []Pool{
			mustPool(t, karKUSD, "1000000000000000", "2000000000000000"),
			mustPool(t, dotKAR, "500", "0"),
		},
		Fee:        fee03,
		Block:      42,
		ObservedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMarketSnapshot_PoolFor(t *testing.T) {
	snap := testSnapshot(t)

	pool, err := snap.PoolFor(karKUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.Reserve(1).String() != "2000000000000000" {
		t.Errorf("unexpected pool %v", pool.Reserves)
	}

	_, err = snap.PoolFor(karKUSD.Swapped())
	if !apperror.HasCode(err, apperror.CodePoolNotFound) {
		t.Errorf("pools are keyed by canonical order only, got %v", err)
	}
}

func TestMarketSnapshot_Validate(t *testing.T) {
	if err := testSnapshot(t).Validate(); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*MarketSnapshot)
	}{
		{name: "bad fee", mutate: func(s *MarketSnapshot) { s.Fee = FeeRate{Numerator: 1} }},
		{name: "duplicate pair", mutate: func(s *MarketSnapshot) {
			s.EnabledPairs = append(s.EnabledPairs, karKUSD.Swapped())
		}},
		{name: "pool for disabled pair", mutate: func(s *MarketSnapshot) {
			s.Pools = append(s.Pools, mustPool(t, MustParseTradingPair("DOT/KUSD"), "1", "1"))
		}},
		{name: "pool keyed in reverse", mutate: func(s *MarketSnapshot) {
			s.Pools[0] = mustPool(t, karKUSD.Swapped(), "1", "1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := testSnapshot(t)
			tt.mutate(&snap)
			if err := snap.Validate(); !apperror.HasCode(err, apperror.CodeInvalidSnapshot) {
				t.Errorf("expected INVALID_SNAPSHOT, got %v", err)
			}
		})
	}
}

func TestMarketSnapshot_Freshness(t *testing.T) {
	snap := testSnapshot(t)
	now := snap.ObservedAt.Add(45 * time.Second)

	if got := snap.Age(now); got != 45*time.Second {
		t.Errorf("Age = %s, want 45s", got)
	}
	if err := snap.CheckFresh(now, time.Minute); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := snap.CheckFresh(now, 30*time.Second); !apperror.HasCode(err, apperror.CodeStaleSnapshot) {
		t.Errorf("expected STALE_SNAPSHOT, got %v", err)
	}
	if err := snap.CheckFresh(now, 0); err != nil {
		t.Errorf("zero max age must disable the check, got %v", err)
	}
}

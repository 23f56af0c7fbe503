package domain

import (
	"testing"

	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/asset"
)

var (
	karKUSD = MustParseTradingPair("KAR/KUSD")
	dotKAR  = MustParseTradingPair("DOT/KAR")
	lpKUSD  = MustParseTradingPair("lp:KAR-KUSD/KUSD")
)

func TestParseTradingPair(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr apperror.Code
	}{
		{in: "KAR/KUSD", want: "KAR/KUSD"},
		{in: " DOT / KAR ", want: "DOT/KAR"},
		{in: "lp:KAR-KUSD/KUSD", want: "lp:KAR-KUSD/KUSD"},
		{in: "KARKUSD", wantErr: apperror.CodeInvalidPair},
		{in: "KAR/KAR", wantErr: apperror.CodeInvalidPair},
		{in: "KAR/", wantErr: apperror.CodeInvalidAssetID},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParseTradingPair(tt.in)
			if tt.wantErr != "" {
				if !apperror.HasCode(err, tt.wantErr) {
					t.Errorf("expected %s, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.String() != tt.want {
				t.Errorf("String() = %q, want %q", p.String(), tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	enabled := []TradingPair{karKUSD, lpKUSD, dotKAR}

	tests := []struct {
		name         string
		enabled      []TradingPair
		requested    string
		wantPair     TradingPair
		wantReversed bool
		wantErr      bool
	}{
		{name: "canonical order", enabled: enabled, requested: "KAR/KUSD", wantPair: karKUSD},
		{name: "reversed order", enabled: enabled, requested: "KUSD/KAR", wantPair: karKUSD, wantReversed: true},
		{name: "share asset", enabled: enabled, requested: "KUSD/lp:KAR-KUSD", wantPair: lpKUSD, wantReversed: true},
		{name: "later entry", enabled: enabled, requested: "KAR/DOT", wantPair: dotKAR, wantReversed: true},
		{name: "not enabled", enabled: enabled, requested: "DOT/KUSD", wantErr: true},
		{name: "empty list", enabled: nil, requested: "KAR/KUSD", wantErr: true},
		{
			name:      "first match wins",
			enabled:   []TradingPair{karKUSD.Swapped(), karKUSD},
			requested: "KAR/KUSD", wantPair: karKUSD.Swapped(), wantReversed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.enabled, MustParseTradingPair(tt.requested))
			if tt.wantErr {
				if !apperror.HasCode(err, apperror.CodePairNotEnabled) {
					t.Errorf("expected PAIR_NOT_ENABLED, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Pair.Equals(tt.wantPair) {
				t.Errorf("pair = %s, want %s", res.Pair, tt.wantPair)
			}
			if res.Reversed != tt.wantReversed {
				t.Errorf("reversed = %v, want %v", res.Reversed, tt.wantReversed)
			}
			if res.Requested().String() != tt.requested {
				t.Errorf("Requested() = %s, want %s", res.Requested(), tt.requested)
			}
		})
	}
}

func TestResolve_Symmetry(t *testing.T) {
	enabled := []TradingPair{karKUSD, lpKUSD, dotKAR}

	for _, p := range enabled {
		ab, err := Resolve(enabled, p)
		if err != nil {
			t.Fatalf("resolve %s: %v", p, err)
		}
		ba, err := Resolve(enabled, p.Swapped())
		if err != nil {
			t.Fatalf("resolve %s: %v", p.Swapped(), err)
		}
		if !ab.Pair.Equals(ba.Pair) {
			t.Errorf("%s: canonical pairs differ: %s vs %s", p, ab.Pair, ba.Pair)
		}
		if ab.Reversed == ba.Reversed {
			t.Errorf("%s: reversed flags must differ", p)
		}
	}
}

func TestResolution_Orient(t *testing.T) {
	pool := mustPool(t, karKUSD, "100", "200")

	in, out := Resolution{Pair: karKUSD}.Orient(pool)
	if in.Int64() != 100 || out.Int64() != 200 {
		t.Errorf("forward orient = %s/%s, want 100/200", in, out)
	}

	res := Resolution{Pair: karKUSD, Reversed: true}
	in, out = res.Orient(pool)
	if in.Int64() != 200 || out.Int64() != 100 {
		t.Errorf("reversed orient = %s/%s, want 200/100", in, out)
	}
	if res.SupplyAsset() != asset.MustTokenID("KUSD") || res.TargetAsset() != asset.MustTokenID("KAR") {
		t.Errorf("reversed assets = %s -> %s", res.SupplyAsset(), res.TargetAsset())
	}
}

package domain

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/fd1az/swapquote/internal/apperror"
)

func TestSlippageBounds(t *testing.T) {
	tests := []struct {
		name      string
		quote     int64
		tolerance BasisPoints
		wantMin   int64
		wantMax   int64
	}{
		{name: "zero tolerance", quote: 10001, tolerance: 0, wantMin: 10001, wantMax: 10001},
		{name: "half percent floors and ceils", quote: 10001, tolerance: 50, wantMin: 9951, wantMax: 10052},
		{name: "exact division", quote: 10000, tolerance: 50, wantMin: 9950, wantMax: 10050},
		{name: "full tolerance", quote: 777, tolerance: MaxBasisPoints, wantMin: 0, wantMax: 1554},
		{name: "zero quote", quote: 0, tolerance: 300, wantMin: 0, wantMax: 0},
		{name: "dust quote", quote: 1, tolerance: 1, wantMin: 1, wantMax: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := big.NewInt(tt.quote)

			minOut, err := MinimumReceived(q, tt.tolerance)
			if err != nil {
				t.Fatalf("MinimumReceived: %v", err)
			}
			if minOut.Int64() != tt.wantMin {
				t.Errorf("MinimumReceived = %s, want %d", minOut, tt.wantMin)
			}

			maxIn, err := MaximumPaid(q, tt.tolerance)
			if err != nil {
				t.Fatalf("MaximumPaid: %v", err)
			}
			if maxIn.Int64() != tt.wantMax {
				t.Errorf("MaximumPaid = %s, want %d", maxIn, tt.wantMax)
			}

			if q.Int64() != tt.quote {
				t.Errorf("input quote was mutated to %s", q)
			}
		})
	}
}

func TestSlippage_Scenario(t *testing.T) {
	q := mustBig(t, "19743160687941")

	minOut, err := MinimumReceived(q, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mustBig(t, "19644444884502"); minOut.Cmp(want) != 0 {
		t.Errorf("MinimumReceived = %s, want %s", minOut, want)
	}

	maxIn, err := MaximumPaid(q, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mustBig(t, "19841876491381"); maxIn.Cmp(want) != 0 {
		t.Errorf("MaximumPaid = %s, want %s", maxIn, want)
	}
}

func TestSlippage_Errors(t *testing.T) {
	for _, tol := range []BasisPoints{-1, MaxBasisPoints + 1} {
		if _, err := MinimumReceived(big.NewInt(100), tol); !apperror.HasCode(err, apperror.CodeInvalidTolerance) {
			t.Errorf("MinimumReceived(%d) = %v, want INVALID_TOLERANCE", tol, err)
		}
		if _, err := MaximumPaid(big.NewInt(100), tol); !apperror.HasCode(err, apperror.CodeInvalidTolerance) {
			t.Errorf("MaximumPaid(%d) = %v, want INVALID_TOLERANCE", tol, err)
		}
	}

	if _, err := MinimumReceived(big.NewInt(-1), 10); !apperror.HasCode(err, apperror.CodeNegativeAmount) {
		t.Errorf("expected NEGATIVE_AMOUNT, got %v", err)
	}
}

func TestSlippage_BoundsProperty(t *testing.T) {
	r := rand.New(rand.NewSource(1<<32 | 2))

	for i := 0; i < 5000; i++ {
		q := randBig(r, 64)
		tol := BasisPoints(r.Intn(int(MaxBasisPoints) + 1))

		minOut, err := MinimumReceived(q, tol)
		if err != nil {
			t.Fatalf("MinimumReceived: %v", err)
		}
		maxIn, err := MaximumPaid(q, tol)
		if err != nil {
			t.Fatalf("MaximumPaid: %v", err)
		}
		if minOut.Cmp(q) > 0 || maxIn.Cmp(q) < 0 || minOut.Sign() < 0 {
			t.Fatalf("bounds %s <= %s <= %s violated at %d bps", minOut, q, maxIn, tol)
		}
	}
}

func TestParseTolerancePercent(t *testing.T) {
	tests := []struct {
		in      string
		want    BasisPoints
		wantErr bool
	}{
		{in: "0.5", want: 50},
		{in: "0.5%", want: 50},
		{in: "1", want: 100},
		{in: "0.01", want: 1},
		{in: "0", want: 0},
		{in: "100", want: 10000},
		{in: "0.005", wantErr: true},
		{in: "100.01", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTolerancePercent(tt.in)
			if tt.wantErr {
				if !apperror.HasCode(err, apperror.CodeInvalidTolerance) {
					t.Errorf("expected INVALID_TOLERANCE, got %v (%d)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

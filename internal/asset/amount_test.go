package asset_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/asset"
)

var (
	kar  = asset.MustTokenID("KAR")
	kusd = asset.MustTokenID("KUSD")
)

const chainExp asset.Exponent = 12

func TestAmount_Basic(t *testing.T) {
	// 1.5 KAR = 1.5e12 chain units
	amt := asset.MustNewAmount(kar, chainExp, big.NewInt(1_500_000_000_000))

	if amt.IsZero() {
		t.Error("expected non-zero amount")
	}
	if !amt.IsPositive() {
		t.Error("expected positive amount")
	}

	d := amt.ToDecimal()
	if !d.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected 1.5, got %s", d.String())
	}

	if amt.String() != "1.5 KAR" {
		t.Errorf("expected '1.5 KAR', got '%s'", amt.String())
	}
}

func TestAmount_ZeroString(t *testing.T) {
	zero := asset.Zero(kar, chainExp)
	if !zero.IsZero() {
		t.Error("expected zero amount")
	}
	if zero.String() != "0 KAR" {
		t.Errorf("expected '0 KAR', got '%s'", zero.String())
	}
}

func TestAmount_RejectsNegative(t *testing.T) {
	_, err := asset.NewAmount(kar, chainExp, big.NewInt(-1))
	if !apperror.HasCode(err, apperror.CodeNegativeAmount) {
		t.Errorf("expected NEGATIVE_AMOUNT, got %v", err)
	}
}

func TestAmount_RejectsExponent(t *testing.T) {
	_, err := asset.NewAmount(kar, asset.MaxExponent+1, big.NewInt(1))
	if !apperror.HasCode(err, apperror.CodeInvalidExponent) {
		t.Errorf("expected INVALID_EXPONENT, got %v", err)
	}
}

func TestAmount_Immutable(t *testing.T) {
	raw := big.NewInt(100)
	amt := asset.MustNewAmount(kar, chainExp, raw)

	raw.SetInt64(7)
	amt.Raw().SetInt64(9)

	if amt.Raw().Int64() != 100 {
		t.Errorf("amount mutated through aliasing: %s", amt.Raw())
	}
}

func TestAmount_CannotSubDifferentAssets(t *testing.T) {
	oneKAR := asset.MustNewAmount(kar, chainExp, big.NewInt(1e12))
	oneKUSD := asset.MustNewAmount(kusd, chainExp, big.NewInt(1e12))

	_, err := oneKAR.Sub(oneKUSD)
	if !apperror.HasCode(err, apperror.CodeInvalidAssetID) {
		t.Errorf("expected INVALID_ASSET_ID, got %v", err)
	}
}

func TestAmount_Sub(t *testing.T) {
	three := asset.MustNewAmount(kar, chainExp, big.NewInt(3e12))
	one := asset.MustNewAmount(kar, chainExp, big.NewInt(1e12))

	diff, err := three.Sub(one)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.ToDecimal().Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2, got %s", diff.ToDecimal().String())
	}

	_, err = one.Sub(three)
	if !apperror.HasCode(err, apperror.CodeNegativeResult) {
		t.Errorf("expected NEGATIVE_RESULT, got %v", err)
	}
}

func TestAmount_Cmp(t *testing.T) {
	one := asset.MustNewAmount(kar, chainExp, big.NewInt(1))
	two := asset.MustNewAmount(kar, chainExp, big.NewInt(2))

	c, err := one.Cmp(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != -1 {
		t.Errorf("expected -1, got %d", c)
	}

	other := asset.MustNewAmount(kar, 6, big.NewInt(1))
	if _, err := one.Cmp(other); err == nil {
		t.Error("expected error comparing different exponents")
	}
	if one.Equals(other) {
		t.Error("amounts with different exponents must not be equal")
	}
}

func TestAmount_Display(t *testing.T) {
	amt := asset.MustNewAmount(kar, 4, big.NewInt(123456))

	if got := amt.Display(2); got != "12.34" {
		t.Errorf("Display(2) = %q, want %q", got, "12.34")
	}
	if got := amt.Display(0); got != "12" {
		t.Errorf("Display(0) = %q, want %q", got, "12")
	}

	big2530k := asset.MustNewAmount(kar, 0, big.NewInt(2_530_000))
	if got := big2530k.Abbreviated(2); got != "2.53M" {
		t.Errorf("Abbreviated(2) = %q, want %q", got, "2.53M")
	}
}

func TestPrice_FromRatio(t *testing.T) {
	// pool holds 1000 KAR and 2000 KUSD
	price, err := asset.NewPriceFromRatio(kar, kusd, big.NewInt(2000), big.NewInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !price.Rate().Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2, got %s", price.Rate())
	}
	if price.Pair() != "KAR/KUSD" {
		t.Errorf("expected KAR/KUSD, got %s", price.Pair())
	}

	_, err = asset.NewPriceFromRatio(kar, kusd, big.NewInt(1), big.NewInt(0))
	if err == nil {
		t.Error("expected error for zero denominator")
	}
}

func TestPrice_Convert(t *testing.T) {
	price, err := asset.NewPriceFromRatio(kar, kusd, big.NewInt(2000), big.NewInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	oneAndHalf := asset.MustNewAmount(kar, chainExp, big.NewInt(1_500_000_000_000))

	out, err := price.Convert(oneAndHalf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Asset() != kusd {
		t.Errorf("expected KUSD, got %s", out.Asset())
	}
	if !out.ToDecimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3 KUSD, got %s", out.ToDecimal())
	}

	if _, err := price.Convert(asset.Zero(kusd, chainExp)); err == nil {
		t.Error("expected error converting the quote asset")
	}
}

func TestPrice_Invert(t *testing.T) {
	price, err := asset.NewPriceFromRatio(kar, kusd, big.NewInt(2000), big.NewInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inverted, err := price.Invert()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !inverted.Rate().Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("expected 0.5, got %s", inverted.Rate().String())
	}
	if inverted.Base() != kusd || inverted.Quote() != kar {
		t.Errorf("expected KUSD/KAR, got %s", inverted.Pair())
	}

	zero, _ := asset.NewPriceFromRatio(kar, kusd, big.NewInt(0), big.NewInt(1))
	if _, err := zero.Invert(); err == nil {
		t.Error("expected error inverting zero price")
	}
}

// Package asset provides a type-safe model for on-chain token quantities.
// The core uses big.Int for exact on-chain representation.
// decimal.Decimal is only used at boundaries (display, parsing, prices).
package asset

import (
	"strings"

	"github.com/fd1az/swapquote/internal/apperror"
)

const sharePrefix = "lp:"

// AssetID identifies a tradable asset: either a plain token symbol or a
// liquidity share over two underlying tokens. It is comparable and can be
// used as a map key.
type AssetID struct {
	token string
	share [2]string // underlying tokens when this is a liquidity share
}

// NewTokenID creates an AssetID for a token symbol (e.g. "KAR").
func NewTokenID(symbol string) (AssetID, error) {
	if !validSymbol(symbol) {
		return AssetID{}, apperror.Newf(apperror.CodeInvalidAssetID, "token symbol %q", symbol)
	}
	return AssetID{token: symbol}, nil
}

// MustTokenID creates a token AssetID, panics on an invalid symbol.
func MustTokenID(symbol string) AssetID {
	id, err := NewTokenID(symbol)
	if err != nil {
		panic(err)
	}
	return id
}

// NewShareID creates the AssetID of the liquidity share over a and b.
// Both must be distinct plain tokens.
func NewShareID(a, b AssetID) (AssetID, error) {
	if !a.IsToken() || !b.IsToken() {
		return AssetID{}, apperror.Newf(apperror.CodeInvalidAssetID, "share of %s and %s: underlying must be tokens", a, b)
	}
	if a.Equals(b) {
		return AssetID{}, apperror.Newf(apperror.CodeInvalidAssetID, "share of %s with itself", a)
	}
	return AssetID{share: [2]string{a.token, b.token}}, nil
}

// ParseAssetID parses "KAR" or "lp:KAR-KUSD".
func ParseAssetID(s string) (AssetID, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, sharePrefix)
	if !ok {
		return NewTokenID(s)
	}

	left, right, found := strings.Cut(rest, "-")
	if !found {
		return AssetID{}, apperror.Newf(apperror.CodeInvalidAssetID, "share %q: expected lp:A-B", s)
	}
	a, err := NewTokenID(left)
	if err != nil {
		return AssetID{}, err
	}
	b, err := NewTokenID(right)
	if err != nil {
		return AssetID{}, err
	}
	return NewShareID(a, b)
}

// IsToken returns true if this is a plain token.
func (id AssetID) IsToken() bool {
	return id.token != ""
}

// IsShare returns true if this is a liquidity share.
func (id AssetID) IsShare() bool {
	return id.share[0] != ""
}

// IsZero returns true for the zero AssetID.
func (id AssetID) IsZero() bool {
	return !id.IsToken() && !id.IsShare()
}

// Symbol returns the token symbol, empty for shares.
func (id AssetID) Symbol() string {
	return id.token
}

// Underlying returns the two tokens of a liquidity share.
func (id AssetID) Underlying() (AssetID, AssetID, bool) {
	if !id.IsShare() {
		return AssetID{}, AssetID{}, false
	}
	return AssetID{token: id.share[0]}, AssetID{token: id.share[1]}, true
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id == other
}

// String returns the parseable representation.
func (id AssetID) String() string {
	switch {
	case id.IsToken():
		return id.token
	case id.IsShare():
		return sharePrefix + id.share[0] + "-" + id.share[1]
	default:
		return "???"
	}
}

func validSymbol(s string) bool {
	if s == "" || len(s) > 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

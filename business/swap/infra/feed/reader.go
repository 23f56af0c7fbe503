// Package feed reads market snapshots from newline-delimited JSON.
//
// Each line is one snapshot:
//
//	{"block":12,"observed_at":"2026-01-02T15:04:05Z",
//	 "fee":{"numerator":3,"denominator":1000},
//	 "enabled_pairs":["KAR/KUSD"],
//	 "pools":[{"pair":"KAR/KUSD","reserves":["1000000000000000","2000000000000000"]}]}
//
// Integers may be JSON numbers or decimal / 0x-hex strings; reserves are
// bounded to 256 bits.
package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/tidwall/gjson"

	"github.com/fd1az/swapquote/business/swap/app"
	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/logger"
)

const maxLineBytes = 1 << 20

// Ensure Reader implements SnapshotSource.
var _ app.SnapshotSource = (*Reader)(nil)

// Reader is a SnapshotSource over an io.Reader.
type Reader struct {
	r      io.Reader
	logger logger.LoggerInterface
	now    func() time.Time
}

// NewReader creates a new feed Reader.
func NewReader(r io.Reader, log logger.LoggerInterface) *Reader {
	return &Reader{
		r:      r,
		logger: log,
		now:    time.Now,
	}
}

// Subscribe starts reading lines and returns the parsed snapshots. Malformed
// lines are logged and skipped. The channel closes at EOF, on a read error,
// or when ctx is cancelled.
func (f *Reader) Subscribe(ctx context.Context) (<-chan domain.MarketSnapshot, error) {
	out := make(chan domain.MarketSnapshot)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(f.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Bytes()
			if len(trimSpace(line)) == 0 {
				continue
			}

			snap, err := ParseSnapshot(line, f.now())
			if err != nil {
				f.logger.Warn(ctx, "skipping malformed snapshot", "line", lineNo, "error", err)
				continue
			}

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			f.logger.Error(ctx, "snapshot feed read failed", "line", lineNo, "error", err)
			return
		}
		f.logger.Info(ctx, "snapshot feed exhausted", "lines", lineNo)
	}()

	return out, nil
}

// ParseSnapshot decodes one snapshot line. observedAt is used when the line
// carries no observed_at field.
func ParseSnapshot(line []byte, observedAt time.Time) (domain.MarketSnapshot, error) {
	if !gjson.ValidBytes(line) {
		return domain.MarketSnapshot{}, invalid("not valid JSON")
	}
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return domain.MarketSnapshot{}, invalid("expected a JSON object")
	}

	var (
		snap domain.MarketSnapshot
		err  error
	)

	if snap.Block, err = parseUint(doc.Get("block"), "block"); err != nil {
		return domain.MarketSnapshot{}, err
	}

	snap.ObservedAt = observedAt
	if ts := doc.Get("observed_at"); ts.Exists() {
		if snap.ObservedAt, err = time.Parse(time.RFC3339Nano, ts.String()); err != nil {
			return domain.MarketSnapshot{}, invalidCause(err, "observed_at")
		}
	}

	if snap.Fee.Numerator, err = parseUint(doc.Get("fee.numerator"), "fee.numerator"); err != nil {
		return domain.MarketSnapshot{}, err
	}
	if snap.Fee.Denominator, err = parseUint(doc.Get("fee.denominator"), "fee.denominator"); err != nil {
		return domain.MarketSnapshot{}, err
	}

	pairs := doc.Get("enabled_pairs")
	if !pairs.IsArray() {
		return domain.MarketSnapshot{}, invalid("enabled_pairs must be an array")
	}
	for _, p := range pairs.Array() {
		pair, err := domain.ParseTradingPair(p.String())
		if err != nil {
			return domain.MarketSnapshot{}, invalidCause(err, "enabled_pairs")
		}
		snap.EnabledPairs = append(snap.EnabledPairs, pair)
	}

	pools := doc.Get("pools")
	if pools.Exists() && !pools.IsArray() {
		return domain.MarketSnapshot{}, invalid("pools must be an array")
	}
	for i, p := range pools.Array() {
		pool, err := parsePool(p)
		if err != nil {
			return domain.MarketSnapshot{}, invalidCause(err, fmt.Sprintf("pools[%d]", i))
		}
		snap.Pools = append(snap.Pools, pool)
	}

	return snap, nil
}

func parsePool(p gjson.Result) (domain.Pool, error) {
	pair, err := domain.ParseTradingPair(p.Get("pair").String())
	if err != nil {
		return domain.Pool{}, err
	}

	reserves := p.Get("reserves").Array()
	if len(reserves) != 2 {
		return domain.Pool{}, invalid("expected exactly two reserves")
	}

	var r [2]*big.Int
	for i, v := range reserves {
		if r[i], err = parseBig(v, fmt.Sprintf("reserves[%d]", i)); err != nil {
			return domain.Pool{}, err
		}
	}
	return domain.NewPool(pair, r[0], r[1])
}

// parseBig accepts a JSON number or a decimal/0x-hex string.
func parseBig(v gjson.Result, field string) (*big.Int, error) {
	var text string
	switch v.Type {
	case gjson.Number:
		text = v.Raw
	case gjson.String:
		text = v.Str
	default:
		return nil, invalid("%s: expected integer", field)
	}

	n, ok := math.ParseBig256(text)
	if !ok {
		return nil, invalid("%s: %q is not a 256-bit integer", field, text)
	}
	return n, nil
}

func parseUint(v gjson.Result, field string) (uint64, error) {
	var text string
	switch v.Type {
	case gjson.Number:
		text = v.Raw
	case gjson.String:
		text = v.Str
	default:
		return 0, invalid("%s: missing or not an integer", field)
	}

	n, ok := math.ParseUint64(text)
	if !ok {
		return 0, invalid("%s: %q is not a 64-bit unsigned integer", field, text)
	}
	return n, nil
}

func invalid(format string, args ...any) error {
	return apperror.Newf(apperror.CodeInvalidSnapshot, format, args...)
}

// invalidCause keeps the underlying code reachable through HasCode.
func invalidCause(err error, field string) error {
	return apperror.New(apperror.CodeInvalidSnapshot, apperror.WithContext(field), apperror.WithCause(err))
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\r') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

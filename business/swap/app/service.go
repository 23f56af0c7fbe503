package app

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/internal/apm"
	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/asset"
	"github.com/fd1az/swapquote/internal/logger"
)

const (
	tracerName = "swap"
	meterName  = "swap"
)

// QuoteServiceConfig holds the chain constants and display settings.
type QuoteServiceConfig struct {
	Exponent         asset.Exponent
	DisplayPrecision int
	Policy           asset.PrecisionPolicy
	Abbreviate       bool
}

// QuoteRequest is a caller-level quote request.
type QuoteRequest struct {
	Pair      domain.TradingPair // in the caller's order: supply asset first
	Side      domain.Side
	Amount    string // display amount of the given side
	Tolerance domain.BasisPoints
}

// QuoteResult carries a quote in raw and display form, plus the limits for
// the transaction builder.
type QuoteResult struct {
	Request QuoteRequest
	Block   uint64

	Quote  domain.SwapQuote
	Limits domain.SwapLimits

	Supply asset.Amount
	Target asset.Amount
	Bound  asset.Amount // minimum target or maximum supply, per Quote.Given

	SupplyDisplay string
	TargetDisplay string
	BoundDisplay  string

	SpotPrice      asset.Price // target per supply at the pool's current reserves
	ExecutionPrice asset.Price // target per supply for this trade, zero when nothing trades

	// Impact is the target given up to the fee and the curve: the supply
	// converted at the spot price, less the quoted target. Never negative.
	Impact        asset.Amount
	ImpactDisplay string

	// Truncated is set when the entered amount had more decimals than the
	// chain supports and PolicyTruncate dropped them.
	Truncated bool
	Warning   error
}

// quoteMetrics holds OTEL metric instruments.
type quoteMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteErrors  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteVolume  metric.Float64Histogram
}

// QuoteService turns display-level requests into bounded swap quotes
// against a market snapshot. It keeps no state between calls.
type QuoteService struct {
	cfg     QuoteServiceConfig
	logger  logger.LoggerInterface
	tracer  apm.Tracer
	metrics *quoteMetrics
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(cfg QuoteServiceConfig, log logger.LoggerInterface) (*QuoteService, error) {
	if err := cfg.Exponent.Validate(); err != nil {
		return nil, err
	}
	if cfg.DisplayPrecision < 0 {
		return nil, apperror.Newf(apperror.CodeConfigurationError, "display precision %d", cfg.DisplayPrecision)
	}
	if cfg.Policy == "" {
		cfg.Policy = asset.PolicyReject
	}

	s := &QuoteService{
		cfg:    cfg,
		logger: log,
		tracer: apm.NewTracer(tracerName),
	}
	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return s, nil
}

func (s *QuoteService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &quoteMetrics{}

	s.metrics.quotesTotal, err = meter.Int64Counter(
		"swap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	s.metrics.quoteErrors, err = meter.Int64Counter(
		"swap_quote_errors_total",
		metric.WithDescription("Total failed quote requests by error code"),
	)
	if err != nil {
		return err
	}

	s.metrics.quoteLatency, err = meter.Float64Histogram(
		"swap_quote_latency_ms",
		metric.WithDescription("Quote computation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	s.metrics.quoteVolume, err = meter.Float64Histogram(
		"swap_quote_supply_volume",
		metric.WithDescription("Supply side of successful quotes in display units"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Exponent returns the chain exponent the service quotes with.
func (s *QuoteService) Exponent() asset.Exponent {
	return s.cfg.Exponent
}

// Quote computes a bounded quote for req against snap.
func (s *QuoteService) Quote(ctx context.Context, snap domain.MarketSnapshot, req QuoteRequest) (*QuoteResult, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "swap.quote",
		trace.WithAttributes(
			attribute.String("pair", req.Pair.String()),
			attribute.String("side", string(req.Side)),
			attribute.String("amount", req.Amount),
			attribute.Int("tolerance_bps", int(req.Tolerance)),
			attribute.Int64("block", int64(snap.Block)),
		),
	)
	defer span.End()

	start := time.Now()
	attrs := metric.WithAttributes(
		attribute.String("pair", req.Pair.String()),
		attribute.String("side", string(req.Side)),
	)
	s.metrics.quotesTotal.Add(ctx, 1, attrs)

	result, err := s.quote(snap, req)

	s.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

	if err != nil {
		code := apperror.GetCode(err)
		s.metrics.quoteErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", string(code))))
		span.NoticeError(err)
		s.logger.Debug(ctx, "quote failed",
			"pair", req.Pair.String(),
			"side", req.Side,
			"amount", req.Amount,
			"block", snap.Block,
			"code", code,
			"kind", apperror.KindOf(err),
		)
		return nil, err
	}

	s.metrics.quoteVolume.Record(ctx, result.Supply.ToDecimal().InexactFloat64(), attrs)

	if result.Truncated {
		s.logger.Warn(ctx, "entered amount truncated to chain precision",
			"amount", req.Amount,
			"exponent", s.cfg.Exponent,
		)
	}

	span.SetAttributes(
		attribute.String("supply", result.Quote.Supply.String()),
		attribute.String("target", result.Quote.Target.String()),
		attribute.String("bound", result.Limits.Bound.String()),
	)
	s.logger.Debug(ctx, "quote computed",
		"pair", req.Pair.String(),
		"side", req.Side,
		"supply", result.SupplyDisplay,
		"target", result.TargetDisplay,
		"bound", result.BoundDisplay,
		"block", snap.Block,
	)

	return result, nil
}

func (s *QuoteService) quote(snap domain.MarketSnapshot, req QuoteRequest) (*QuoteResult, error) {
	if err := req.Tolerance.Validate(); err != nil {
		return nil, err
	}

	conv, err := asset.ParseRaw(req.Amount, s.cfg.Exponent, s.cfg.Policy)
	if err != nil {
		return nil, err
	}

	res, err := snap.Resolve(req.Pair)
	if err != nil {
		return nil, err
	}

	pool, err := snap.PoolFor(res.Pair)
	if err != nil {
		return nil, err
	}

	var q domain.SwapQuote
	switch req.Side {
	case domain.SideSupply:
		q, err = domain.QuoteSupply(pool, res, conv.Raw, snap.Fee)
	case domain.SideTarget:
		q, err = domain.QuoteTarget(pool, res, conv.Raw, snap.Fee)
	default:
		err = apperror.Newf(apperror.CodeInvalidInput, "side %q", req.Side)
	}
	if err != nil {
		return nil, err
	}

	limits, err := domain.NewSwapLimits(q, req.Tolerance)
	if err != nil {
		return nil, err
	}

	result := &QuoteResult{
		Request:   req,
		Block:     snap.Block,
		Quote:     q,
		Limits:    limits,
		Truncated: conv.Truncated,
		Warning:   conv.Warning(),
	}

	boundAsset := res.TargetAsset()
	if q.Given == domain.SideTarget {
		boundAsset = res.SupplyAsset()
	}

	if result.Supply, result.SupplyDisplay, err = s.amount(res.SupplyAsset(), q.Supply); err != nil {
		return nil, err
	}
	if result.Target, result.TargetDisplay, err = s.amount(res.TargetAsset(), q.Target); err != nil {
		return nil, err
	}
	if result.Bound, result.BoundDisplay, err = s.amount(boundAsset, limits.Bound); err != nil {
		return nil, err
	}

	if result.SpotPrice, err = domain.SpotPrice(pool, res.Reversed); err != nil {
		return nil, err
	}
	if q.Supply.Sign() > 0 {
		result.ExecutionPrice, err = asset.NewPriceFromRatio(res.SupplyAsset(), res.TargetAsset(), q.Target, q.Supply)
		if err != nil {
			return nil, err
		}
	}

	if result.Impact, err = s.impact(result.SpotPrice, result.Supply, result.Target); err != nil {
		return nil, err
	}
	result.ImpactDisplay = s.display(result.Impact)

	return result, nil
}

func (s *QuoteService) impact(spot asset.Price, supply, target asset.Amount) (asset.Amount, error) {
	atSpot, err := spot.Convert(supply)
	if err != nil {
		return asset.Amount{}, err
	}
	// the spot rate is truncated, so tiny trades can come out a unit ahead
	c, err := atSpot.Cmp(target)
	if err != nil {
		return asset.Amount{}, err
	}
	if c <= 0 {
		return asset.Zero(target.Asset(), target.Exponent()), nil
	}
	return atSpot.Sub(target)
}

func (s *QuoteService) amount(id asset.AssetID, raw *big.Int) (asset.Amount, string, error) {
	amt, err := asset.NewAmount(id, s.cfg.Exponent, raw)
	if err != nil {
		return asset.Amount{}, "", err
	}
	return amt, s.display(amt), nil
}

func (s *QuoteService) display(amt asset.Amount) string {
	if s.cfg.Abbreviate {
		return amt.Abbreviated(s.cfg.DisplayPrecision)
	}
	return asset.StripTrailingZeros(amt.Display(s.cfg.DisplayPrecision))
}

// Package swap implements the swap quoting bounded context.
package swap

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fd1az/swapquote/business/swap/app"
	swapDI "github.com/fd1az/swapquote/business/swap/di"
	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/business/swap/infra/console"
	"github.com/fd1az/swapquote/business/swap/infra/feed"
	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/asset"
	"github.com/fd1az/swapquote/internal/config"
	"github.com/fd1az/swapquote/internal/di"
	"github.com/fd1az/swapquote/internal/logger"
	"github.com/fd1az/swapquote/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct {
	// Request is re-quoted by the watcher on every committed snapshot.
	Request app.QuoteRequest
	// Input is the snapshot feed. The watcher is only usable when set.
	Input io.Reader
	// Output receives rendered quotes, stdout when nil.
	Output io.Writer
}

// RegisterServices registers all swap services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register QuoteService (public)
	di.RegisterToken(c, swapDI.QuoteService, func(sr di.ServiceRegistry) *app.QuoteService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		svcCfg, err := ServiceConfig(cfg)
		if err != nil {
			panic("failed to build quote service config: " + err.Error())
		}
		svc, err := app.NewQuoteService(svcCfg, log)
		if err != nil {
			panic("failed to create quote service: " + err.Error())
		}
		return svc
	})

	// Register SnapshotBuffer - private dependency
	di.RegisterToken(c, swapDI.SnapshotBuffer, func(sr di.ServiceRegistry) *app.SnapshotBuffer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		buffer, err := app.NewSnapshotBuffer(cfg.Snapshot.CommitInterval, log)
		if err != nil {
			panic("failed to create snapshot buffer: " + err.Error())
		}
		return buffer
	})

	// Register SnapshotSource (JSONL feed) - private dependency
	di.RegisterToken(c, swapDI.SnapshotSource, func(sr di.ServiceRegistry) app.SnapshotSource {
		log := sr.Get("logger").(logger.LoggerInterface)
		if m.Input == nil {
			panic("snapshot source requested without an input feed")
		}
		return feed.NewReader(m.Input, log)
	})

	// Register Reporter - private dependency
	di.RegisterToken(c, swapDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		return console.NewReporter(m.Output)
	})

	// Register Watcher (public)
	di.RegisterToken(c, swapDI.Watcher, func(sr di.ServiceRegistry) *app.Watcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewWatcher(
			swapDI.GetSnapshotSource(sr),
			swapDI.GetSnapshotBuffer(sr),
			swapDI.GetQuoteService(sr),
			swapDI.GetReporter(sr),
			app.WatcherConfig{
				Request:    m.Request,
				StaleAfter: cfg.Snapshot.StaleAfter,
			},
			log,
		)
	})

	return nil
}

// Startup validates the swap configuration and, when a feed is attached,
// registers the snapshot freshness health check.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	if _, err := ServiceConfig(cfg); err != nil {
		return err
	}
	pairs, err := EnabledPairs(cfg)
	if err != nil {
		return err
	}
	fee, err := FeeRate(cfg)
	if err != nil {
		return err
	}

	if m.Input != nil {
		watcher := swapDI.GetWatcher(mono.Services())
		if hs := mono.Health(); hs != nil {
			hs.RegisterCheck("snapshot", watcher.HealthCheck)
		}
	}

	log.Info(ctx, "swap module started",
		"chain", cfg.Chain.Name,
		"exponent", cfg.Chain.DecimalExponent,
		"pairs", len(pairs),
		"fee", fee.String(),
	)
	return nil
}

// ServiceConfig maps configuration onto the quote service settings.
func ServiceConfig(cfg *config.Config) (app.QuoteServiceConfig, error) {
	policy, err := asset.ParsePrecisionPolicy(cfg.Quote.PrecisionPolicy)
	if err != nil {
		return app.QuoteServiceConfig{}, configError(err, "quote.precision_policy")
	}
	if d := cfg.Chain.DecimalExponent; d < 0 || d > int(asset.MaxExponent) {
		return app.QuoteServiceConfig{}, configError(
			apperror.Newf(apperror.CodeInvalidExponent, "%d outside [0, %d]", d, asset.MaxExponent),
			"chain.decimal_exponent")
	}
	exp := asset.Exponent(cfg.Chain.DecimalExponent)

	return app.QuoteServiceConfig{
		Exponent:         exp,
		DisplayPrecision: cfg.Quote.DisplayPrecision,
		Policy:           policy,
		Abbreviate:       cfg.Quote.Abbreviate,
	}, nil
}

// EnabledPairs parses the configured canonical pairs.
func EnabledPairs(cfg *config.Config) ([]domain.TradingPair, error) {
	pairs := make([]domain.TradingPair, 0, len(cfg.Chain.EnabledPairs))
	for _, s := range cfg.Chain.EnabledPairs {
		p, err := domain.ParseTradingPair(s)
		if err != nil {
			return nil, configError(err, "chain.enabled_pairs")
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// FeeRate returns the configured pool fee.
func FeeRate(cfg *config.Config) (domain.FeeRate, error) {
	fee := domain.FeeRate{Numerator: cfg.Fee.Numerator, Denominator: cfg.Fee.Denominator}
	if err := fee.Validate(); err != nil {
		return domain.FeeRate{}, configError(err, "fee")
	}
	return fee, nil
}

// StaticSnapshot builds a single-pool snapshot from "reserveA,reserveB",
// listed in the order of the requested pair. The reserves are re-aligned
// when the pair is enabled in the opposite order.
func StaticSnapshot(cfg *config.Config, requested domain.TradingPair, reserves string, now time.Time) (domain.MarketSnapshot, error) {
	pairs, err := EnabledPairs(cfg)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}
	fee, err := FeeRate(cfg)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	res, err := domain.Resolve(pairs, requested)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	left, right, ok := strings.Cut(reserves, ",")
	if !ok {
		return domain.MarketSnapshot{}, apperror.Newf(apperror.CodeInvalidInput, "reserves %q: expected two comma-separated integers", reserves)
	}
	r0, ok0 := math.ParseBig256(strings.TrimSpace(left))
	r1, ok1 := math.ParseBig256(strings.TrimSpace(right))
	if !ok0 || !ok1 {
		return domain.MarketSnapshot{}, apperror.Newf(apperror.CodeInvalidNumericFormat, "reserves %q", reserves)
	}
	if res.Reversed {
		r0, r1 = r1, r0
	}

	pool, err := domain.NewPool(res.Pair, r0, r1)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	snap := domain.MarketSnapshot{
		EnabledPairs: pairs,
		Pools:        []domain.Pool{pool},
		Fee:          fee,
		ObservedAt:   now,
	}
	if err := snap.Validate(); err != nil {
		return domain.MarketSnapshot{}, err
	}
	return snap, nil
}

func configError(err error, field string) error {
	return apperror.New(apperror.CodeConfigurationError, apperror.WithContext(field), apperror.WithCause(err))
}

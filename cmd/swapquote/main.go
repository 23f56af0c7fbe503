// Package main is the entry point for the swap quoting CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/swapquote/business/swap"
	"github.com/fd1az/swapquote/business/swap/app"
	swapDI "github.com/fd1az/swapquote/business/swap/di"
	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/internal/apm"
	"github.com/fd1az/swapquote/internal/config"
	"github.com/fd1az/swapquote/internal/health"
	"github.com/fd1az/swapquote/internal/logger"
	"github.com/fd1az/swapquote/internal/metrics"
	"github.com/fd1az/swapquote/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type options struct {
	configPath string
	pair       string
	side       string
	amount     string
	slippage   string
	reserves   string
	watch      bool
	input      string
	abbreviate bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.pair, "pair", "KAR/KUSD", "Pair to quote as SUPPLY/TARGET")
	flag.StringVar(&opts.side, "side", "supply", "Given side: supply or target")
	flag.StringVar(&opts.amount, "amount", "", "Display amount of the given side")
	flag.StringVar(&opts.slippage, "slippage", "", "Slippage tolerance in percent (default from config)")
	flag.StringVar(&opts.reserves, "reserves", "", "Pool reserves as A,B in pair order (one-shot mode)")
	flag.BoolVar(&opts.watch, "watch", false, "Re-quote on every snapshot read from the feed")
	flag.StringVar(&opts.input, "input", "-", "Snapshot feed file for -watch, - for stdin")
	flag.BoolVar(&opts.abbreviate, "abbreviate", false, "Show amounts as 1.2K / 3.4M")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("swapquote %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.abbreviate {
		cfg.Quote.Abbreviate = true
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)

	req, err := buildRequest(cfg, opts)
	if err != nil {
		return err
	}

	// Initialize observability if enabled
	if cfg.Telemetry.Enabled {
		stop, err := startTelemetry(ctx, cfg, log, opts.watch)
		if err != nil {
			return err
		}
		defer stop()
	}

	var healthServer *health.Server
	if opts.watch && cfg.Health.Enabled {
		healthServer = health.NewServer(cfg.Health.Port, version, log)
		healthServer.Start(ctx)
		defer shutdown(healthServer.Stop)
	}

	mod := &swap.Module{Request: req, Output: os.Stdout}
	if opts.watch {
		in, closeFn, err := openInput(opts.input)
		if err != nil {
			return err
		}
		defer closeFn()
		mod.Input = in
	}

	mono := monolith.New(cfg, log, healthServer)
	if err := mono.RegisterModules(mod); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, mod); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if opts.watch {
		log.Info(ctx, "starting swapquote watch",
			"version", version,
			"environment", cfg.App.Environment,
		)
		err := swapDI.GetWatcher(mono.Services()).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return quoteOnce(ctx, mono, req, opts.reserves)
}

func quoteOnce(ctx context.Context, mono *monolith.App, req app.QuoteRequest, reserves string) error {
	if reserves == "" {
		return errors.New("-reserves is required without -watch")
	}

	snap, err := swap.StaticSnapshot(mono.Config(), req.Pair, reserves, time.Now())
	if err != nil {
		return err
	}

	reporter := swapDI.GetReporter(mono.Services())
	res, err := swapDI.GetQuoteService(mono.Services()).Quote(ctx, snap, req)
	if err != nil {
		reporter.ReportError(ctx, req, snap.Block, err)
		return err
	}
	reporter.Report(ctx, res)
	return nil
}

func buildRequest(cfg *config.Config, opts options) (app.QuoteRequest, error) {
	pair, err := domain.ParseTradingPair(opts.pair)
	if err != nil {
		return app.QuoteRequest{}, err
	}
	side, err := domain.ParseSide(opts.side)
	if err != nil {
		return app.QuoteRequest{}, err
	}
	if opts.amount == "" {
		return app.QuoteRequest{}, errors.New("-amount is required")
	}

	tolerance := domain.BasisPoints(cfg.Quote.SlippageBps)
	if opts.slippage != "" {
		if tolerance, err = domain.ParseTolerancePercent(opts.slippage); err != nil {
			return app.QuoteRequest{}, err
		}
	}

	return app.QuoteRequest{
		Pair:      pair,
		Side:      side,
		Amount:    opts.amount,
		Tolerance: tolerance,
	}, nil
}

func startTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface, serve bool) (func(), error) {
	headers, err := apm.ParseHeaders(cfg.Telemetry.OTLPHeaders)
	if err != nil {
		return nil, err
	}

	tp, err := apm.NewTraceProvider(ctx, log,
		apm.WithProvider(apm.Provider(cfg.Telemetry.Provider)),
		apm.WithServiceName(cfg.Telemetry.ServiceName),
		apm.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
		apm.WithHeaders(headers),
		apm.WithWriter(os.Stderr),
	)
	if err != nil {
		return nil, err
	}

	metricOpts := append([]metrics.OptionFn{metrics.WithServiceName(cfg.Telemetry.ServiceName)},
		metrics.ReaderOptions(cfg.Telemetry.Provider, cfg.Telemetry.OTLPEndpoint, headers)...)
	mp, err := metrics.NewMetricProvider(ctx, metricOpts...)
	if err != nil {
		tp.Stop()
		return nil, err
	}

	var metricsServer *metrics.Server
	if serve {
		metricsServer = metrics.NewServer(cfg.Telemetry.PrometheusPort, mp, log)
		metricsServer.Start(ctx)
	}

	return func() {
		if metricsServer != nil {
			shutdown(metricsServer.Stop)
		}
		shutdown(mp.Shutdown)
		if err := tp.Stop(); err != nil {
			log.Warn(context.Background(), "failed to flush traces", "error", err)
		}
	}, nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot feed: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func shutdown(stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = stop(ctx)
}

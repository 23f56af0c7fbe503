package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/internal/apm"
	"github.com/fd1az/swapquote/internal/logger"
)

// WatcherConfig holds the fixed request and freshness policy of a Watcher.
type WatcherConfig struct {
	Request    QuoteRequest
	StaleAfter time.Duration
}

// Watcher re-quotes a fixed request on every committed snapshot.
type Watcher struct {
	source   SnapshotSource
	buffer   *SnapshotBuffer
	service  *QuoteService
	reporter Reporter
	config   WatcherConfig
	logger   logger.LoggerInterface
	tracer   apm.Tracer

	last atomic.Pointer[domain.MarketSnapshot]
	now  func() time.Time
}

// NewWatcher creates a new Watcher.
func NewWatcher(
	source SnapshotSource,
	buffer *SnapshotBuffer,
	service *QuoteService,
	reporter Reporter,
	config WatcherConfig,
	log logger.LoggerInterface,
) *Watcher {
	return &Watcher{
		source:   source,
		buffer:   buffer,
		service:  service,
		reporter: reporter,
		config:   config,
		logger:   log,
		tracer:   apm.NewTracer(tracerName),
		now:      time.Now,
	}
}

// Run blocks until the source is exhausted or ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info(ctx, "starting quote watcher",
		"pair", w.config.Request.Pair.String(),
		"side", w.config.Request.Side,
		"amount", w.config.Request.Amount,
		"commit_interval", w.buffer.Interval(),
	)

	snapshots, err := w.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	for snap := range w.buffer.Run(ctx, snapshots) {
		w.onSnapshot(ctx, snap)
	}

	w.logger.Info(ctx, "quote watcher stopped", "reason", ctx.Err())
	return ctx.Err()
}

func (w *Watcher) onSnapshot(ctx context.Context, snap domain.MarketSnapshot) {
	ctx, span := w.tracer.StartSpanFromContext(ctx, "swap.snapshot",
		trace.WithAttributes(
			attribute.Int64("block", int64(snap.Block)),
			attribute.Int("pools", len(snap.Pools)),
		),
	)
	defer span.End()

	if err := snap.Validate(); err != nil {
		span.AddEvent("snapshot.invalid")
		span.NoticeError(err)
		w.logger.Warn(ctx, "skipping invalid snapshot", "block", snap.Block, "error", err)
		w.reporter.ReportError(ctx, w.config.Request, snap.Block, err)
		return
	}
	w.last.Store(&snap)

	result, err := w.service.Quote(ctx, snap, w.config.Request)
	if err != nil {
		w.reporter.ReportError(ctx, w.config.Request, snap.Block, err)
		return
	}
	w.reporter.Report(ctx, result)
}

// Last returns the most recent valid snapshot.
func (w *Watcher) Last() (domain.MarketSnapshot, bool) {
	p := w.last.Load()
	if p == nil {
		return domain.MarketSnapshot{}, false
	}
	return *p, true
}

// HealthCheck reports whether a fresh snapshot has been committed.
func (w *Watcher) HealthCheck(_ context.Context) (bool, string) {
	snap, ok := w.Last()
	if !ok {
		return false, "no snapshot committed yet"
	}
	if err := snap.CheckFresh(w.now(), w.config.StaleAfter); err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("block %d", snap.Block)
}

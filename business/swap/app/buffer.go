package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/internal/logger"
	"github.com/fd1az/swapquote/internal/ratelimit"
)

// SnapshotBuffer commits market snapshots at most once per interval so a
// consumer is not re-quoted on every block. Snapshots arriving while a commit
// is pending replace it: the latest always wins and the trailing snapshot is
// always delivered.
type SnapshotBuffer struct {
	limiter   *ratelimit.Limiter
	logger    logger.LoggerInterface
	committed metric.Int64Counter
	dropped   metric.Int64Counter
}

// NewSnapshotBuffer creates a buffer committing at most once per interval.
func NewSnapshotBuffer(interval time.Duration, log logger.LoggerInterface) (*SnapshotBuffer, error) {
	meter := otel.Meter(meterName)

	committed, err := meter.Int64Counter(
		"swap_snapshots_committed_total",
		metric.WithDescription("Snapshots committed for quoting"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter(
		"swap_snapshots_superseded_total",
		metric.WithDescription("Snapshots replaced by a newer one before commit"),
	)
	if err != nil {
		return nil, err
	}

	return &SnapshotBuffer{
		limiter:   ratelimit.New(interval),
		logger:    log,
		committed: committed,
		dropped:   dropped,
	}, nil
}

// Interval returns the minimum time between commits.
func (b *SnapshotBuffer) Interval() time.Duration {
	return b.limiter.Interval()
}

// Run consumes in and returns the committed snapshots. The output is closed
// after in is closed (flushing any pending snapshot) or ctx is cancelled.
func (b *SnapshotBuffer) Run(ctx context.Context, in <-chan domain.MarketSnapshot) <-chan domain.MarketSnapshot {
	out := make(chan domain.MarketSnapshot)

	go func() {
		defer close(out)

		var (
			pending *domain.MarketSnapshot
			timer   *time.Timer
			fire    <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		commit := func() bool {
			snap := *pending
			pending = nil
			select {
			case out <- snap:
				b.committed.Add(ctx, 1)
				b.logger.Debug(ctx, "snapshot committed", "block", snap.Block)
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case snap, ok := <-in:
				if !ok {
					if pending != nil {
						commit()
					}
					return
				}

				if pending != nil {
					b.dropped.Add(ctx, 1)
				}
				pending = &snap

				if fire != nil {
					continue // a commit is already scheduled
				}

				delay := b.limiter.Delay()
				if delay <= 0 {
					if !commit() {
						return
					}
					continue
				}
				timer = time.NewTimer(delay)
				fire = timer.C

			case <-fire:
				fire = nil
				timer = nil
				if pending != nil && !commit() {
					return
				}
			}
		}
	}()

	return out
}

// Package app contains application services and port definitions for the swap context.
package app

import (
	"context"

	"github.com/fd1az/swapquote/business/swap/domain"
)

// SnapshotSource delivers market snapshots observed on chain. The channel is
// closed when the source is exhausted or ctx is cancelled.
type SnapshotSource interface {
	Subscribe(ctx context.Context) (<-chan domain.MarketSnapshot, error)
}

// Reporter defines the interface for presenting quotes.
type Reporter interface {
	// Report presents a computed quote.
	Report(ctx context.Context, result *QuoteResult)

	// ReportError presents a failed quote for the snapshot at block.
	ReportError(ctx context.Context, req QuoteRequest, block uint64, err error)
}

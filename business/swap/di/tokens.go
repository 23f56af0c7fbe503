// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/fd1az/swapquote/business/swap/app"
	"github.com/fd1az/swapquote/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuoteService = di.NewToken[*app.QuoteService]("swap.QuoteService")
	Watcher      = di.NewToken[*app.Watcher]("swap.Watcher")
)

// Private dependency tokens - internal to swap module
var (
	SnapshotBuffer = di.NewToken[*app.SnapshotBuffer]("swap:snapshotBuffer")
	SnapshotSource = di.NewToken[app.SnapshotSource]("swap:snapshotSource")
	Reporter       = di.NewToken[app.Reporter]("swap:reporter")
)

// Helper functions for type-safe access
func GetQuoteService(c di.ServiceRegistry) *app.QuoteService {
	return di.GetToken(c, QuoteService)
}

func GetWatcher(c di.ServiceRegistry) *app.Watcher {
	return di.GetToken(c, Watcher)
}

func GetSnapshotBuffer(c di.ServiceRegistry) *app.SnapshotBuffer {
	return di.GetToken(c, SnapshotBuffer)
}

func GetSnapshotSource(c di.ServiceRegistry) app.SnapshotSource {
	return di.GetToken(c, SnapshotSource)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

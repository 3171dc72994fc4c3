package chainwatch

import (
	"context"
	"time"

	"token_resolver/internal/app/port"
)

// Watcher follows the chain ID of an endpoint and feeds it to a resolver.
type Watcher struct {
	reader            port.ChainIDReader
	resolver          port.TokenResolver
	interval          time.Duration
	disconnectAfter   int
	logger            port.Logger
	consecutiveErrors int
}

// NewWatcher creates a Watcher. disconnectAfter below 1 is treated as 1.
func NewWatcher(reader port.ChainIDReader, resolver port.TokenResolver, interval time.Duration, disconnectAfter int, logger port.Logger) *Watcher {
	if disconnectAfter < 1 {
		disconnectAfter = 1
	}
	return &Watcher{
		reader:          reader,
		resolver:        resolver,
		interval:        interval,
		disconnectAfter: disconnectAfter,
		logger:          logger,
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Chain watcher started", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("Chain watcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	chainID, err := w.reader.ChainID(callCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.consecutiveErrors++
		w.logger.Warn("Failed to read chain ID", "attempt", w.consecutiveErrors, "error", err)
		if w.consecutiveErrors == w.disconnectAfter {
			w.logger.Warn("Endpoint unreachable, disconnecting", "failures", w.consecutiveErrors)
			w.resolver.SetChainID(0)
		}
		return
	}

	w.consecutiveErrors = 0
	w.resolver.SetChainID(chainID)
}

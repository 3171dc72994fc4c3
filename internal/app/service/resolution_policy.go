package service

import (
	"context"
	"time"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
)

// Outcome classifies a resolution attempt.
type Outcome int

const (
	// OutcomeFound means the registry answered with the symbol.
	OutcomeFound Outcome = iota
	// OutcomeNotFound means the registry answered without the symbol.
	OutcomeNotFound
	// OutcomeFailed means the registry could not answer.
	OutcomeFailed
)

// ResolutionPolicy turns one registry lookup into an optional token.
// Implementations own the failure handling; the resolver only sees the outcome.
type ResolutionPolicy interface {
	Attempt(ctx context.Context, registry port.TokenRegistry, chainID uint64, symbol string) (entity.TokenInfo, Outcome)
}

// BestEffortPolicy performs a single registry call and swallows any failure.
type BestEffortPolicy struct {
	logger port.Logger
}

// NewBestEffortPolicy creates a BestEffortPolicy.
func NewBestEffortPolicy(logger port.Logger) *BestEffortPolicy {
	return &BestEffortPolicy{logger: logger}
}

// Attempt implements ResolutionPolicy.
func (p *BestEffortPolicy) Attempt(ctx context.Context, registry port.TokenRegistry, chainID uint64, symbol string) (entity.TokenInfo, Outcome) {
	tokens, err := registry.GetTokens(ctx, chainID)
	if err != nil {
		p.logger.Warn("Token lookup failed, keeping placeholder", "chain_id", chainID, "symbol", symbol, "error", err)
		return entity.TokenInfo{}, OutcomeFailed
	}
	return lookupSymbol(p.logger, tokens, chainID, symbol)
}

// RetryPolicy retries failed registry calls with a linear backoff.
// A registry answer without the symbol is final and is not retried.
type RetryPolicy struct {
	logger      port.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewRetryPolicy creates a RetryPolicy. maxAttempts below 1 is treated as 1.
func NewRetryPolicy(logger port.Logger, maxAttempts int, backoff time.Duration) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{logger: logger, maxAttempts: maxAttempts, backoff: backoff}
}

// Attempt implements ResolutionPolicy. Only cancellation of ctx itself stops the retries;
// a deadline error from a registry's own timeout is retried like any other failure.
func (p *RetryPolicy) Attempt(ctx context.Context, registry port.TokenRegistry, chainID uint64, symbol string) (entity.TokenInfo, Outcome) {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		tokens, err := registry.GetTokens(ctx, chainID)
		if err == nil {
			return lookupSymbol(p.logger, tokens, chainID, symbol)
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		p.logger.Debug("Token lookup attempt failed", "chain_id", chainID, "attempt", attempt, "max_attempts", p.maxAttempts, "error", err)
		if attempt == p.maxAttempts {
			break
		}
		timer := time.NewTimer(time.Duration(attempt) * p.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Debug("Token lookup abandoned", "chain_id", chainID, "error", ctx.Err())
			return entity.TokenInfo{}, OutcomeFailed
		case <-timer.C:
		}
	}
	p.logger.Warn("Token lookup failed, keeping placeholder", "chain_id", chainID, "symbol", symbol, "error", lastErr)
	return entity.TokenInfo{}, OutcomeFailed
}

func lookupSymbol(logger port.Logger, tokens map[string]entity.TokenInfo, chainID uint64, symbol string) (entity.TokenInfo, Outcome) {
	token, ok := tokens[symbol]
	if !ok {
		logger.Debug("Symbol not present in registry response", "chain_id", chainID, "symbol", symbol, "registry_size", len(tokens))
		return entity.TokenInfo{}, OutcomeNotFound
	}
	return token, OutcomeFound
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
)

func flakyRegistry(failures int, tokens map[string]entity.TokenInfo, calls *int) port.TokenRegistry {
	return port.TokenRegistryFunc(func(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
		*calls++
		if *calls <= failures {
			return nil, errors.New("rpc unavailable")
		}
		return tokens, nil
	})
}

func TestBestEffortPolicy(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		tokens      map[string]entity.TokenInfo
		wantOutcome Outcome
		wantCalls   int
	}{
		{name: "found", tokens: goodDollar(fuseChainID, fuseGoodDollar, 2), wantOutcome: OutcomeFound, wantCalls: 1},
		{name: "missing symbol", tokens: map[string]entity.TokenInfo{}, wantOutcome: OutcomeNotFound, wantCalls: 1},
		{name: "nil map", tokens: nil, wantOutcome: OutcomeNotFound, wantCalls: 1},
		{name: "error is swallowed", failures: 1, tokens: goodDollar(fuseChainID, fuseGoodDollar, 2), wantOutcome: OutcomeFailed, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := NewBestEffortPolicy(nopLogger{})
			tok, outcome := p.Attempt(context.Background(), flakyRegistry(tt.failures, tt.tokens, &calls), fuseChainID, "G$")
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantCalls, calls)
			if outcome == OutcomeFound {
				assert.Equal(t, fuseGoodDollar, tok.Address)
			} else {
				assert.Equal(t, entity.TokenInfo{}, tok)
			}
		})
	}
}

func TestRetryPolicy_RetriesErrors(t *testing.T) {
	calls := 0
	p := NewRetryPolicy(nopLogger{}, 3, time.Millisecond)

	tok, outcome := p.Attempt(context.Background(), flakyRegistry(2, goodDollar(celoChainID, celoGoodDollar, 18), &calls), celoChainID, "G$")

	assert.Equal(t, OutcomeFound, outcome)
	assert.Equal(t, celoGoodDollar, tok.Address)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_RetriesRegistryTimeouts(t *testing.T) {
	calls := 0
	registry := port.TokenRegistryFunc(func(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("RPC batch call failed for Celo: %w", context.DeadlineExceeded)
		}
		return goodDollar(celoChainID, celoGoodDollar, 18), nil
	})
	p := NewRetryPolicy(nopLogger{}, 3, time.Millisecond)

	tok, outcome := p.Attempt(context.Background(), registry, celoChainID, "G$")

	assert.Equal(t, OutcomeFound, outcome)
	assert.Equal(t, celoGoodDollar, tok.Address)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicy_GivesUp(t *testing.T) {
	calls := 0
	p := NewRetryPolicy(nopLogger{}, 2, time.Millisecond)

	_, outcome := p.Attempt(context.Background(), flakyRegistry(5, nil, &calls), celoChainID, "G$")

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicy_DoesNotRetryNotFound(t *testing.T) {
	calls := 0
	p := NewRetryPolicy(nopLogger{}, 5, time.Millisecond)

	_, outcome := p.Attempt(context.Background(), flakyRegistry(0, map[string]entity.TokenInfo{}, &calls), celoChainID, "G$")

	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewRetryPolicy(nopLogger{}, 5, time.Hour)

	_, outcome := p.Attempt(ctx, flakyRegistry(5, nil, &calls), celoChainID, "G$")

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, 1, calls)
}

func TestNewRetryPolicy_MinimumOneAttempt(t *testing.T) {
	calls := 0
	p := NewRetryPolicy(nopLogger{}, 0, time.Millisecond)

	p.Attempt(context.Background(), flakyRegistry(5, nil, &calls), celoChainID, "G$")

	assert.Equal(t, 1, calls)
}

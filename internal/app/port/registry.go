package port

import (
	"context"

	"token_resolver/internal/domain/entity"
)

// TokenRegistry resolves the tokens deployed on a network.
type TokenRegistry interface {
	// GetTokens returns the tokens known for chainID keyed by symbol.
	// A missing symbol is not an error; an unknown chain yields an empty map.
	GetTokens(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error)
}

// TokenRegistryFunc adapts a function to TokenRegistry.
type TokenRegistryFunc func(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error)

// GetTokens calls f.
func (f TokenRegistryFunc) GetTokens(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
	return f(ctx, chainID)
}

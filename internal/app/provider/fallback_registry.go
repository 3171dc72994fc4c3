package provider

import (
	"context"
	"errors"
	"fmt"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
)

// NamedRegistry labels a registry for logs and errors.
type NamedRegistry struct {
	Name     string
	Registry port.TokenRegistry
}

// FallbackRegistry asks registries in order and returns the first non-empty answer.
type FallbackRegistry struct {
	registries []NamedRegistry
	logger     port.Logger
}

var _ port.TokenRegistry = (*FallbackRegistry)(nil)

// NewFallbackRegistry creates a FallbackRegistry asking registries in the given order.
func NewFallbackRegistry(logger port.Logger, registries ...NamedRegistry) *FallbackRegistry {
	return &FallbackRegistry{registries: registries, logger: logger}
}

// GetTokens implements port.TokenRegistry.
// An error is returned only when every registry failed.
func (r *FallbackRegistry) GetTokens(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
	var (
		errs     []error
		answered bool
	)
	for _, nr := range r.registries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens, err := nr.Registry.GetTokens(ctx, chainID)
		if err != nil {
			r.logger.Warn("Token registry failed, trying next", "registry", nr.Name, "chain_id", chainID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", nr.Name, err))
			continue
		}
		answered = true
		if len(tokens) > 0 {
			return tokens, nil
		}
		r.logger.Debug("Token registry has no tokens for chain", "registry", nr.Name, "chain_id", chainID)
	}

	if !answered && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return map[string]entity.TokenInfo{}, nil
}

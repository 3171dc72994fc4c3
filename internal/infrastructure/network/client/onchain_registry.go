package client

import (
	"context"
	"fmt"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
	"token_resolver/internal/pkg/metrics"
)

// OnChainRegistry reads token metadata straight from the configured token contracts of a network.
type OnChainRegistry struct {
	networks port.NetworkDefinitionProvider
	clients  port.TokenMetadataClientProvider
	logger   port.Logger
}

var _ port.TokenRegistry = (*OnChainRegistry)(nil)

// NewOnChainRegistry creates an OnChainRegistry.
func NewOnChainRegistry(networks port.NetworkDefinitionProvider, clients port.TokenMetadataClientProvider, logger port.Logger) *OnChainRegistry {
	return &OnChainRegistry{networks: networks, clients: clients, logger: logger}
}

// GetTokens implements port.TokenRegistry.
func (r *OnChainRegistry) GetTokens(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
	tokens, err := r.getTokens(ctx, chainID)
	metrics.ObserveRegistry("onchain", err)
	return tokens, err
}

func (r *OnChainRegistry) getTokens(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
	netDef, ok := r.networks.GetNetworkDefinitionByChainID(chainID)
	if !ok || len(netDef.TokenAddresses) == 0 {
		r.logger.Debug("No token contracts configured", "chain_id", chainID)
		return map[string]entity.TokenInfo{}, nil
	}

	c, err := r.clients.GetClient(netDef)
	if err != nil {
		return nil, err
	}

	infos, err := c.GetTokenMetadata(ctx, netDef.TokenAddresses)
	if err != nil {
		return nil, fmt.Errorf("failed to read token metadata on %s: %w", netDef.Name, err)
	}
	if len(infos) < len(netDef.TokenAddresses) {
		r.logger.Warn("Some token contracts could not be read", "network", netDef.Name, "requested", len(netDef.TokenAddresses), "read", len(infos))
	}

	tokens := make(map[string]entity.TokenInfo, len(infos))
	for _, info := range infos {
		if info.Symbol == "" {
			continue
		}
		if _, dup := tokens[info.Symbol]; dup {
			r.logger.Warn("Duplicate token symbol on chain, keeping first", "network", netDef.Name, "symbol", info.Symbol, "address", info.Address)
			continue
		}
		tokens[info.Symbol] = info
	}
	return tokens, nil
}

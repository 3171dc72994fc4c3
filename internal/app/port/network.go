package port

import (
	"context"

	"token_resolver/internal/domain/entity"
)

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all available network definitions as a slice.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a specific network definition by its name or identifier.
	GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool)

	// GetNetworkDefinitionByChainID returns the network definition registered for chainID.
	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool)
}

// TokenMetadataClient reads ERC-20 metadata from a single network.
type TokenMetadataClient interface {
	// GetTokenMetadata reads name, symbol and decimals of every contract in one round trip.
	// Contracts whose calls fail are omitted from the result.
	GetTokenMetadata(ctx context.Context, tokenAddresses []string) ([]entity.TokenInfo, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// TokenMetadataClientProvider hands out clients per network.
type TokenMetadataClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition) (TokenMetadataClient, error)
}

// ChainIDReader reports the chain ID of the network a wallet or node is currently connected to.
type ChainIDReader interface {
	ChainID(ctx context.Context) (uint64, error)
}

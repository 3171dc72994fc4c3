package client

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
	"token_resolver/internal/infrastructure/configloader"
)

type dialFunc func(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration, limiter *rate.Limiter) (*EVMClient, error)

// EVMClientProvider implements port.TokenMetadataClientProvider.
// Clients are dialled on first use and cached per chain ID, each with its own rate limiter.
type EVMClientProvider struct {
	clients           map[uint64]*EVMClient
	mu                sync.Mutex
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	rateLimit         rate.Limit
	burst             int
	dial              dialFunc
}

var _ port.TokenMetadataClientProvider = (*EVMClientProvider)(nil)

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(cfg *configloader.Config, logger port.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		clients:           make(map[uint64]*EVMClient),
		logger:            logger,
		connectionTimeout: time.Duration(cfg.RPCClient.ConnectionTimeoutSeconds) * time.Second,
		rpcCallTimeout:    time.Duration(cfg.RPCClient.CallTimeoutSeconds) * time.Second,
		rateLimit:         rate.Limit(cfg.RPCClient.RateLimit),
		burst:             cfg.RPCClient.BurstLimit,
		dial:              NewEVMClient,
	}
}

// GetClient retrieves a client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *EVMClientProvider) GetClient(netDef entity.NetworkDefinition) (port.TokenMetadataClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "chain_id", netDef.ChainID, "rpc_primary", netDef.PrimaryRPCURL)
	limiter := rate.NewLimiter(p.rateLimit, p.burst)
	newClient, err := p.dial(netDef, p.connectionTimeout, p.rpcCallTimeout, limiter)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	return newClient, nil
}

// Close closes every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for chainID, c := range p.clients {
		c.Close()
		delete(p.clients, chainID)
	}
}

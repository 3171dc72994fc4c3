package chainwatch

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
)

// EthChainIDReader reads eth_chainId from a JSON-RPC endpoint.
type EthChainIDReader struct {
	client *ethclient.Client
}

// DialChainIDReader connects to endpoint.
func DialChainIDReader(ctx context.Context, endpoint string) (*EthChainIDReader, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	return &EthChainIDReader{client: client}, nil
}

// ChainID implements port.ChainIDReader.
func (r *EthChainIDReader) ChainID(ctx context.Context) (uint64, error) {
	id, err := r.client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read chain ID: %w", err)
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("chain ID %s out of range", id)
	}
	return id.Uint64(), nil
}

// Close closes the RPC connection.
func (r *EthChainIDReader) Close() {
	r.client.Close()
}

package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
)

// ERC20 ABI minimal part for token metadata
const erc20MetadataABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var metadataMethods = [...]string{"name", "symbol", "decimals"}

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func erc20ABI() abi.ABI {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20MetadataABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
	return parsedERC20ABI
}

// batchCaller is the part of *rpc.Client used by EVMClient.
type batchCaller interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

// EVMClient implements port.TokenMetadataClient for EVM-compatible chains.
type EVMClient struct {
	rpcClient      batchCaller
	closer         func()
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
}

var _ port.TokenMetadataClient = (*EVMClient)(nil)

// NewEVMClient dials the network's RPC URLs in order and returns a client for the first that answers.
func NewEVMClient(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration, limiter *rate.Limiter) (*EVMClient, error) {
	rpcURLs := netDef.RPCURLs()
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("no RPC URLs configured for network %s", netDef.Name)
	}
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return newEVMClient(client.Client(), client.Close, netDef, rpcCallTimeout, limiter), nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

func newEVMClient(rpcClient batchCaller, closer func(), netDef entity.NetworkDefinition, rpcCallTimeout time.Duration, limiter *rate.Limiter) *EVMClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if closer == nil {
		closer = func() {}
	}
	return &EVMClient{
		rpcClient:      rpcClient,
		closer:         closer,
		netDef:         netDef,
		rpcCallTimeout: rpcCallTimeout,
		limiter:        limiter,
	}
}

// GetTokenMetadata reads name, symbol and decimals of every token with one JSON-RPC batch.
// Tokens whose calls fail or cannot be decoded are left out of the result.
func (c *EVMClient) GetTokenMetadata(ctx context.Context, tokenAddresses []string) ([]entity.TokenInfo, error) {
	if len(tokenAddresses) == 0 {
		return []entity.TokenInfo{}, nil
	}

	parsed := erc20ABI()
	batchElems := make([]rpc.BatchElem, 0, len(tokenAddresses)*len(metadataMethods))
	for _, tokenAddress := range tokenAddresses {
		to := common.HexToAddress(tokenAddress)
		for _, method := range metadataMethods {
			callData, err := parsed.Pack(method)
			if err != nil {
				return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
			}
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_call",
				Args: []interface{}{map[string]interface{}{
					"to":   to,
					"data": hexutil.Bytes(callData),
				}, "latest"},
				Result: new(hexutil.Bytes),
			})
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for %s: %w", c.netDef.Name, err)
	}

	rpcCallCtx := ctx
	if c.rpcCallTimeout > 0 {
		var cancel context.CancelFunc
		rpcCallCtx, cancel = context.WithTimeout(ctx, c.rpcCallTimeout)
		defer cancel()
	}

	if err := c.rpcClient.BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return nil, fmt.Errorf("RPC batch call failed for %s: %w", c.netDef.Name, err)
	}

	tokens := make([]entity.TokenInfo, 0, len(tokenAddresses))
	for i, tokenAddress := range tokenAddresses {
		elems := batchElems[i*len(metadataMethods) : (i+1)*len(metadataMethods)]
		token, err := decodeMetadata(c.netDef.ChainID, tokenAddress, elems)
		if err != nil {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func decodeMetadata(chainID uint64, tokenAddress string, elems []rpc.BatchElem) (entity.TokenInfo, error) {
	parsed := erc20ABI()
	token := entity.TokenInfo{ChainID: chainID, Address: common.HexToAddress(tokenAddress).Hex()}

	for j, method := range metadataMethods {
		elem := elems[j]
		if elem.Error != nil {
			return token, fmt.Errorf("failed to call %s on %s: %w", method, tokenAddress, elem.Error)
		}
		raw, ok := elem.Result.(*hexutil.Bytes)
		if !ok || raw == nil || len(*raw) == 0 {
			return token, fmt.Errorf("empty %s result for %s", method, tokenAddress)
		}
		unpacked, err := parsed.Unpack(method, *raw)
		if err != nil {
			return token, fmt.Errorf("failed to unpack %s result for %s: %w. Raw: %s", method, tokenAddress, err, hexutil.Encode(*raw))
		}
		if len(unpacked) == 0 {
			return token, fmt.Errorf("%s unpack returned no data for %s", method, tokenAddress)
		}
		switch method {
		case "name":
			token.Name, ok = unpacked[0].(string)
		case "symbol":
			token.Symbol, ok = unpacked[0].(string)
		case "decimals":
			token.Decimals, ok = unpacked[0].(uint8)
		}
		if !ok {
			return token, fmt.Errorf("unexpected %s type %T for %s", method, unpacked[0], tokenAddress)
		}
	}
	return token, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.closer()
}

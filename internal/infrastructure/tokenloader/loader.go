package tokenloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
	"token_resolver/internal/pkg/metrics"
	"token_resolver/internal/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultTokenDirectoryPath = "data/tokens"
	sourceName                = "file"
)

// TokenFileLoader implements port.TokenRegistry over data/tokens/<network identifier>.json files.
// Files are read on every call.
type TokenFileLoader struct {
	tokenDirPath    string
	networkProvider port.NetworkDefinitionProvider
	logger          port.Logger
}

var _ port.TokenRegistry = (*TokenFileLoader)(nil)

// NewTokenLoader creates a new TokenFileLoader. An empty dir selects data/tokens.
func NewTokenLoader(dir string, networkProvider port.NetworkDefinitionProvider, logger port.Logger) *TokenFileLoader {
	if dir == "" {
		dir = defaultTokenDirectoryPath
	}
	return &TokenFileLoader{
		tokenDirPath:    dir,
		networkProvider: networkProvider,
		logger:          logger,
	}
}

// GetTokens reads the token file of the network with chainID and returns its tokens keyed by symbol.
// Unknown networks and missing files yield an empty map.
func (l *TokenFileLoader) GetTokens(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	networkDef, ok := l.networkProvider.GetNetworkDefinitionByChainID(chainID)
	if !ok {
		l.logger.Debug("No network definition for chain, no tokens", "chain_id", chainID)
		return map[string]entity.TokenInfo{}, nil
	}

	tokens, err := l.loadFile(networkDef)
	metrics.ObserveRegistry(sourceName, err)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (l *TokenFileLoader) loadFile(networkDef entity.NetworkDefinition) (map[string]entity.TokenInfo, error) {
	filePath := filepath.Join(l.tokenDirPath, networkDef.Identifier+".json")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("No token file for network", "network_identifier", networkDef.Identifier, "path", filePath)
			return map[string]entity.TokenInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", filePath, err)
	}

	var tokensInFile []entity.TokenInfo
	if err := json.Unmarshal(data, &tokensInFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens from %s: %w", filePath, err)
	}

	tokens := make(map[string]entity.TokenInfo, len(tokensInFile))
	for _, token := range tokensInFile {
		if token.ChainID != networkDef.ChainID {
			l.logger.Warn("Token has mismatched ChainID in file, skipping token.",
				"file", filePath, "token_symbol", token.Symbol, "token_address", token.Address,
				"token_chain_id", token.ChainID,
				"expected_network_identifier", networkDef.Identifier,
				"expected_chain_id", networkDef.ChainID)
			continue
		}
		address, err := utils.NormalizeAddress(token.Address)
		if err != nil {
			l.logger.Warn("Token has invalid address in file, skipping token.", "file", filePath, "token_symbol", token.Symbol, "error", err)
			continue
		}
		if token.Symbol == "" {
			l.logger.Warn("Token without symbol in file, skipping token.", "file", filePath, "token_address", address)
			continue
		}
		if _, dup := tokens[token.Symbol]; dup {
			l.logger.Warn("Duplicate token symbol in file, keeping the first entry.", "file", filePath, "token_symbol", token.Symbol)
			continue
		}
		token.Address = address
		tokens[token.Symbol] = token
	}

	l.logger.Debug("Loaded tokens for network from file",
		"network_identifier", networkDef.Identifier,
		"file", filepath.Base(filePath),
		"count", len(tokens))
	return tokens, nil
}

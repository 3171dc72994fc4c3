package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "docs/swagger.yaml", cfg.Server.SwaggerSpecPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "G$", cfg.Resolver.Symbol)
	assert.Equal(t, "GoodDollar", cfg.Resolver.PlaceholderName)
	assert.Equal(t, uint8(18), cfg.Resolver.PlaceholderDecimals)
	assert.Equal(t, 1, cfg.Resolver.RetryAttempts)
	assert.Equal(t, []string{SourceFile}, cfg.Registry.Sources)
	assert.Equal(t, "data/tokens", cfg.Registry.TokensDir)
	assert.Equal(t, 0, cfg.Registry.CacheTTLSeconds)
	assert.Equal(t, 5.0, cfg.RPCClient.RateLimit)
	assert.Equal(t, 3, cfg.ChainWatch.DisconnectAfterFailures)
}

func TestParse_Full(t *testing.T) {
	data := []byte(`
server:
  port: "9090"
  allowedOrigins: ["https://gooddapp.org"]
  swaggerSpecPath: "-"
logging:
  level: debug
  format: console
resolver:
  symbol: GOOD
  initialChainId: 122
  retryAttempts: 3
registry:
  sources: [onchain, " FILE "]
  cacheTTLSeconds: 60
rpcClient:
  rateLimit: 2.5
networks:
  - identifier: fuse
    rpcURL: https://rpc.fuse.io
    tokenAddresses: ["0x495d133B938596C9984d462F007B676bDc57eCEC"]
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://gooddapp.org"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Server.SwaggerSpecPath)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "GOOD", cfg.Resolver.Symbol)
	assert.Equal(t, uint64(122), cfg.Resolver.InitialChainID)
	assert.Equal(t, 3, cfg.Resolver.RetryAttempts)
	assert.Equal(t, []string{SourceOnChain, SourceFile}, cfg.Registry.Sources)
	assert.Equal(t, 60, cfg.Registry.CacheTTLSeconds)
	assert.Equal(t, 2.5, cfg.RPCClient.RateLimit)
	require.Len(t, cfg.Networks, 1)
	assert.Equal(t, "https://rpc.fuse.io", cfg.Networks[0].RPCURL)
}

func TestParse_TokenListWithoutURLIsSkipped(t *testing.T) {
	cfg, err := Parse([]byte("registry:\n  sources: [tokenlist, file]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{SourceFile}, cfg.Registry.Sources)

	_, err = Parse([]byte("registry:\n  sources: [tokenlist]\n"))
	assert.ErrorIs(t, err, ErrNoRegistrySources)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("registry:\n  sources: [ipfs]\n"))
	assert.ErrorContains(t, err, "unknown registry source")

	_, err = Parse([]byte("networks:\n  - name: nameless\n"))
	assert.ErrorContains(t, err, "identifier is required")

	_, err = Parse([]byte("server: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

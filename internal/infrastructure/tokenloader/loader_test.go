package tokenloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token_resolver/internal/domain/entity"
	"token_resolver/internal/pkg/utils"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type staticNetworks []entity.NetworkDefinition

func (s staticNetworks) GetAllNetworkDefinitions() []entity.NetworkDefinition { return s }

func (s staticNetworks) GetNetworkDefinitionByName(name string) (entity.NetworkDefinition, bool) {
	for _, d := range s {
		if d.Identifier == name {
			return d, true
		}
	}
	return entity.NetworkDefinition{}, false
}

func (s staticNetworks) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	for _, d := range s {
		if d.ChainID == chainID {
			return d, true
		}
	}
	return entity.NetworkDefinition{}, false
}

var testNetworks = staticNetworks{
	{ChainID: 122, Identifier: "fuse"},
	{ChainID: 42220, Identifier: "celo"},
	{ChainID: 1, Identifier: "ethereum"},
}

func writeTokens(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestTokenFileLoader_GetTokens(t *testing.T) {
	dir := t.TempDir()
	writeTokens(t, dir, "fuse.json", `[
		{"chainId":122,"address":"0x495d133b938596c9984d462f007b676bdc57ecec","name":"GoodDollar","symbol":"G$","decimals":2},
		{"chainId":42220,"address":"0x62B8B11039FcfE5aB0C56E502b1C372A3d2a9c7A","name":"GoodDollar","symbol":"G$","decimals":18},
		{"chainId":122,"address":"not-an-address","name":"Broken","symbol":"BRK","decimals":18},
		{"chainId":122,"address":"0x0000000000000000000000000000000000000001","name":"No symbol","symbol":"","decimals":18},
		{"chainId":122,"address":"0x0000000000000000000000000000000000000002","name":"Second","symbol":"G$","decimals":18}
	]`)

	l := NewTokenLoader(dir, testNetworks, nopLogger{})
	tokens, err := l.GetTokens(context.Background(), 122)
	require.NoError(t, err)

	require.Len(t, tokens, 1)
	g := tokens["G$"]
	assert.Equal(t, uint64(122), g.ChainID)
	assert.Equal(t, uint8(2), g.Decimals)
	assert.Equal(t, "GoodDollar", g.Name)
	want, err := utils.NormalizeAddress("0x495d133b938596c9984d462f007b676bdc57ecec")
	require.NoError(t, err)
	assert.Equal(t, want, g.Address)
}

func TestTokenFileLoader_UnknownChainOrMissingFile(t *testing.T) {
	l := NewTokenLoader(t.TempDir(), testNetworks, nopLogger{})

	tokens, err := l.GetTokens(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	tokens, err = l.GetTokens(context.Background(), 42220)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenFileLoader_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeTokens(t, dir, "celo.json", `{"tokens":`)

	_, err := NewTokenLoader(dir, testNetworks, nopLogger{}).GetTokens(context.Background(), 42220)
	assert.ErrorContains(t, err, "failed to unmarshal tokens")
}

func TestTokenFileLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTokenLoader(t.TempDir(), testNetworks, nopLogger{}).GetTokens(ctx, 122)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenFileLoader_ShippedData(t *testing.T) {
	l := NewTokenLoader(filepath.Join("..", "..", "..", "data", "tokens"), testNetworks, nopLogger{})

	for _, chainID := range []uint64{1, 122, 42220} {
		tokens, err := l.GetTokens(context.Background(), chainID)
		require.NoError(t, err)
		g, ok := tokens["G$"]
		require.True(t, ok, "chain %d", chainID)
		assert.Equal(t, chainID, g.ChainID)
		assert.Equal(t, "GoodDollar", g.Name)
	}
}

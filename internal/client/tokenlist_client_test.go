package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const goodDollarList = `{
	"name": "GoodDollar Tokens",
	"timestamp": "2024-05-01T00:00:00.000Z",
	"version": {"major": 1, "minor": 2, "patch": 0},
	"tokens": [
		{"chainId": 122, "address": "0x495d133b938596c9984d462f007b676bdc57ecec", "name": "GoodDollar", "symbol": "G$", "decimals": 2},
		{"chainId": 42220, "address": "0x62B8B11039FcfE5aB0C56E502b1C372A3d2a9c7A", "name": "GoodDollar", "symbol": "G$", "decimals": 18},
		{"chainId": 122, "address": "not-an-address", "name": "Broken", "symbol": "BRK", "decimals": 18},
		{"chainId": 122, "address": "0x0be9e53fd7edac9f859882afdda116645287c629", "name": "Wrapped Fuse", "symbol": "WFUSE", "decimals": 18},
		{"chainId": 122, "address": "0x0000000000000000000000000000000000000001", "name": "Empty", "symbol": "", "decimals": 18}
	]
}`

func newListServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestTokenListClient_GetTokens(t *testing.T) {
	srv, hits := newListServer(t, http.StatusOK, goodDollarList)
	c := NewTokenListClient(srv.URL, time.Second, zap.NewNop())

	tokens, err := c.GetTokens(context.Background(), 122)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	require.Contains(t, tokens, "G$")
	assert.Equal(t, uint8(2), tokens["G$"].Decimals)
	assert.Equal(t, uint64(122), tokens["G$"].ChainID)
	assert.True(t, strings.EqualFold("0x495d133b938596c9984d462f007b676bdc57ecec", tokens["G$"].Address))
	assert.NotEqual(t, "0x495d133b938596c9984d462f007b676bdc57ecec", tokens["G$"].Address, "address should be checksummed")
	assert.Contains(t, tokens, "WFUSE")

	celo, err := c.GetTokens(context.Background(), 42220)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), celo["G$"].Decimals)

	unknown, err := c.GetTokens(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, unknown)

	assert.Equal(t, int32(3), hits.Load())
}

func TestTokenListClient_Errors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv, _ := newListServer(t, http.StatusBadGateway, `upstream down`)
		c := NewTokenListClient(srv.URL, time.Second, zap.NewNop())

		_, err := c.GetTokens(context.Background(), 122)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenListStatus)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newListServer(t, http.StatusOK, `{"tokens": [`)
		c := NewTokenListClient(srv.URL, time.Second, zap.NewNop())

		_, err := c.GetTokens(context.Background(), 122)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTokenListStatus)
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv, hits := newListServer(t, http.StatusOK, goodDollarList)
		c := NewTokenListClient(srv.URL, time.Second, zap.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.GetTokens(ctx, 122)
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, hits.Load())
	})
}

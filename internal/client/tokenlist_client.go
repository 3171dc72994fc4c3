package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	domain "token_resolver/internal/domain/entity"
	"token_resolver/internal/entity"
	"token_resolver/internal/pkg/metrics"
	"token_resolver/internal/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrTokenListStatus is returned when the token list endpoint answers with a non-200 status.
var ErrTokenListStatus = errors.New("unexpected token list status")

// TokenListClient implements port.TokenRegistry on top of a remote token list.
type TokenListClient struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewTokenListClient creates a new instance of TokenListClient.
func NewTokenListClient(url string, timeout time.Duration, logger *zap.Logger) *TokenListClient {
	return &TokenListClient{
		client:  &fasthttp.Client{},
		url:     url,
		timeout: timeout,
		logger:  logger.Named("TokenListClient"),
	}
}

// GetTokens downloads the token list and returns the entries of chainID keyed by symbol.
func (c *TokenListClient) GetTokens(ctx context.Context, chainID uint64) (map[string]domain.TokenInfo, error) {
	list, err := c.fetch(ctx)
	metrics.ObserveRegistry("tokenlist", err)
	if err != nil {
		return nil, err
	}

	tokens := make(map[string]domain.TokenInfo)
	for _, e := range list.Tokens {
		if e.ChainID != chainID || e.Symbol == "" {
			continue
		}
		address, err := utils.NormalizeAddress(e.Address)
		if err != nil {
			c.logger.Warn("Skipping token list entry with invalid address",
				zap.String("symbol", e.Symbol),
				zap.String("address", e.Address))
			continue
		}
		if _, dup := tokens[e.Symbol]; dup {
			continue
		}
		tokens[e.Symbol] = domain.TokenInfo{
			ChainID:  e.ChainID,
			Address:  address,
			Name:     e.Name,
			Symbol:   e.Symbol,
			Decimals: e.Decimals,
		}
	}

	c.logger.Debug("Token list filtered",
		zap.String("list", list.Name),
		zap.Uint64("chainId", chainID),
		zap.Int("tokenCount", len(tokens)))
	return tokens, nil
}

func (c *TokenListClient) fetch(ctx context.Context) (*entity.TokenList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logger.Debug("Requesting token list", zap.String("url", c.url))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Error("Failed to execute token list request", zap.String("url", c.url), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", c.url, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Token list request failed",
			zap.String("url", c.url),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("%w: %s returned %d", ErrTokenListStatus, c.url, resp.StatusCode())
	}

	var list entity.TokenList
	if err := json.Unmarshal(rawBody, &list); err != nil {
		c.logger.Error("Failed to unmarshal token list", zap.String("url", c.url), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal token list from %s: %w", c.url, err)
	}
	return &list, nil
}

package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"token_resolver/internal/app/port"
	"token_resolver/internal/app/service"
	"token_resolver/internal/domain/entity"
	"token_resolver/internal/pkg/utils"
)

// ResolverService is the resolver surface used by the HTTP handlers.
type ResolverService interface {
	port.TokenResolver
	Snapshot() service.Snapshot
	ChainID() uint64
}

// APIErrorResponse is returned for every failed request.
type APIErrorResponse struct {
	Error string `json:"error"`
}

// APIFormatResponse is returned by the amount formatting endpoint.
// Placeholder is set while the decimals come from the placeholder token.
type APIFormatResponse struct {
	Amount      string           `json:"amount"`
	Formatted   string           `json:"formatted"`
	Placeholder bool             `json:"placeholder"`
	Token       entity.TokenInfo `json:"token"`
}

// APINetworkResponse describes the current network.
type APINetworkResponse struct {
	ChainID   uint64                    `json:"chainId"`
	Connected bool                      `json:"connected"`
	Network   *entity.NetworkDefinition `json:"network,omitempty"`
}

// SetNetworkRequest switches the current network. A null or zero chainId disconnects.
type SetNetworkRequest struct {
	ChainID *uint64 `json:"chainId"`
}

// TokenHandler serves token and network requests.
type TokenHandler struct {
	resolver ResolverService
	networks port.NetworkDefinitionProvider
	logger   port.Logger
}

// NewTokenHandler creates a new instance of TokenHandler.
func NewTokenHandler(resolver ResolverService, networks port.NetworkDefinitionProvider, logger port.Logger) *TokenHandler {
	return &TokenHandler{
		resolver: resolver,
		networks: networks,
		logger:   logger,
	}
}

// GetToken returns the current token together with its state and epoch.
func (h *TokenHandler) GetToken(c *gin.Context) {
	c.JSON(http.StatusOK, h.resolver.Snapshot())
}

// FormatAmount formats a raw integer amount with the current token's decimals.
func (h *TokenHandler) FormatAmount(c *gin.Context) {
	raw := c.Query("amount")
	amount, ok := utils.ParseBigInt(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "amount must be a base-10 integer"})
		return
	}

	token := h.resolver.Token()
	c.JSON(http.StatusOK, APIFormatResponse{
		Amount:      amount.String(),
		Formatted:   utils.FormatBigInt(amount, token.Decimals),
		Placeholder: token.IsZeroAddress(),
		Token:       token,
	})
}

// GetNetwork returns the current chain ID and its definition when known.
func (h *TokenHandler) GetNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, h.networkResponse(h.resolver.ChainID()))
}

// SetNetwork switches the resolver to another chain and returns the resulting snapshot.
func (h *TokenHandler) SetNetwork(c *gin.Context) {
	var req SetNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	var chainID uint64
	if req.ChainID != nil {
		chainID = *req.ChainID
	}
	if _, known := h.networks.GetNetworkDefinitionByChainID(chainID); !known && chainID != 0 {
		h.logger.Debug("Switching to a chain without a network definition", "chain_id", chainID)
	}

	h.resolver.SetChainID(chainID)
	c.JSON(http.StatusOK, h.resolver.Snapshot())
}

// ListNetworks returns all known network definitions.
func (h *TokenHandler) ListNetworks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.networks.GetAllNetworkDefinitions()})
}

func (h *TokenHandler) networkResponse(chainID uint64) APINetworkResponse {
	resp := APINetworkResponse{ChainID: chainID, Connected: chainID != 0}
	if def, ok := h.networks.GetNetworkDefinitionByChainID(chainID); ok {
		resp.Network = &def
	}
	return resp
}

package port

import "token_resolver/internal/domain/entity"

// TokenResolver exposes the best-known token for the current network.
type TokenResolver interface {
	// Token returns the current value without blocking.
	Token() entity.TokenInfo
	// State reports whether Token is the placeholder or a resolved value.
	State() entity.TokenState
	// SetChainID switches the network; 0 means disconnected.
	SetChainID(chainID uint64)
	// Subscribe registers fn for every change of the observable value.
	Subscribe(fn func(entity.TokenInfo)) (unsubscribe func())
}

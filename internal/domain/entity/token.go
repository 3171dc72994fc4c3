package entity

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// TokenInfo holds the details of a specific token on a specific network.
// ChainID 0 means the network is not known yet.
type TokenInfo struct {
	ChainID  uint64 `json:"chainId" yaml:"chainId"`
	Address  string `json:"address" yaml:"address"`
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// IsZeroAddress reports whether the token has no contract address yet.
func (t TokenInfo) IsZeroAddress() bool {
	return t.Address == "" || t.Address == ZeroAddress
}

// TokenState describes where the observable token value came from.
type TokenState string

const (
	// TokenStatePlaceholder is the safe default shown until a lookup succeeds.
	TokenStatePlaceholder TokenState = "placeholder"
	// TokenStateResolved means the value came from a registry lookup for the current network.
	TokenStateResolved TokenState = "resolved"
)

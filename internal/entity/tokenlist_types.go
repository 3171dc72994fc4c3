package entity

// TokenList is a Uniswap-style token list document.
type TokenList struct {
	Name      string           `json:"name"`
	Timestamp string           `json:"timestamp"`
	Version   TokenListVersion `json:"version"`
	Tokens    []TokenListEntry `json:"tokens"`
}

// TokenListVersion is the semantic version of a token list.
type TokenListVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// TokenListEntry is a single token of a token list.
type TokenListEntry struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"` // ignored
}

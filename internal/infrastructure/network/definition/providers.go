package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
	"token_resolver/internal/infrastructure/configloader"
)

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	activeNetworkDefs []entity.NetworkDefinition
	byIdentifier      map[string]int
	byChainID         map[uint64]int
}

var _ port.NetworkDefinitionProvider = (*NetworkDefinitionProvider)(nil)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
		TokenAddresses:   []string{"0x67C5870b4A41D4Ebef24d2456547A03F1f3e094B"}, // G$
	}
	Fuse = entity.NetworkDefinition{
		ChainID:          122,
		Name:             "Fuse Mainnet",
		Identifier:       "fuse",
		NativeSymbol:     "FUSE",
		Decimals:         18,
		PrimaryRPCURL:    "https://rpc.fuse.io",
		FallbackRPCURLs:  []string{"https://fuse.publicnode.com"},
		BlockExplorerURL: "https://explorer.fuse.io",
		TokenAddresses:   []string{"0x495d133B938596C9984d462F007B676bDc57eCEC"}, // G$
	}
	Celo = entity.NetworkDefinition{
		ChainID:          42220,
		Name:             "Celo Mainnet",
		Identifier:       "celo",
		NativeSymbol:     "CELO",
		Decimals:         18,
		PrimaryRPCURL:    "https://forno.celo.org",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/celo"},
		BlockExplorerURL: "https://celoscan.io",
		TokenAddresses:   []string{"0x62B8B11039FcfE5aB0C56E502b1C372A3d2a9c7A"}, // G$
	}
	XDC = entity.NetworkDefinition{
		ChainID:          50,
		Name:             "XDC Network",
		Identifier:       "xdc",
		NativeSymbol:     "XDC",
		Decimals:         18,
		PrimaryRPCURL:    "https://rpc.xinfin.network",
		FallbackRPCURLs:  []string{"https://erpc.xinfin.network"},
		BlockExplorerURL: "https://xdcscan.io",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
func allKnownDefinitions() []entity.NetworkDefinition {
	return []entity.NetworkDefinition{Ethereum, Fuse, Celo, XDC}
}

// NewNetworkDefinitionProvider creates a provider from the predefined networks with the
// configured overrides applied. Overrides for unknown identifiers add new networks.
func NewNetworkDefinitionProvider(log port.Logger, overrides []configloader.NetworkNodeConfig) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:       log,
		byIdentifier: make(map[string]int),
		byChainID:    make(map[uint64]int),
	}

	for _, def := range allKnownDefinitions() {
		p.add(def)
	}

	for _, o := range overrides {
		identifier := strings.ToLower(strings.TrimSpace(o.Identifier))
		idx, known := p.byIdentifier[identifier]
		var def entity.NetworkDefinition
		if known {
			def = p.activeNetworkDefs[idx]
		} else {
			if o.ChainID == 0 {
				p.logger.Warn("Network override has no chainID and no predefined definition, skipping", "identifier", identifier)
				continue
			}
			def = entity.NetworkDefinition{Identifier: identifier, Decimals: 18}
		}
		mergeOverride(&def, o)
		if known {
			if def.ChainID != p.activeNetworkDefs[idx].ChainID {
				delete(p.byChainID, p.activeNetworkDefs[idx].ChainID)
				p.byChainID[def.ChainID] = idx
			}
			p.activeNetworkDefs[idx] = def
			p.logger.Debug(fmt.Sprintf("Network '%s' overridden from config.", identifier))
		} else {
			p.add(def)
			p.logger.Debug(fmt.Sprintf("Network '%s' added from config.", identifier))
		}
	}

	sort.Slice(p.activeNetworkDefs, func(i, j int) bool {
		return p.activeNetworkDefs[i].ChainID < p.activeNetworkDefs[j].ChainID
	})
	p.reindex()

	p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Active networks: %d", len(p.activeNetworkDefs)))
	return p
}

func mergeOverride(def *entity.NetworkDefinition, o configloader.NetworkNodeConfig) {
	if o.ChainID != 0 {
		def.ChainID = o.ChainID
	}
	if o.Name != "" {
		def.Name = o.Name
	}
	if o.NativeSymbol != "" {
		def.NativeSymbol = o.NativeSymbol
	}
	if o.RPCURL != "" {
		def.PrimaryRPCURL = o.RPCURL
	}
	if len(o.FallbackRPCURLs) > 0 {
		def.FallbackRPCURLs = append([]string(nil), o.FallbackRPCURLs...)
	}
	if len(o.TokenAddresses) > 0 {
		def.TokenAddresses = append([]string(nil), o.TokenAddresses...)
	}
	if def.Name == "" {
		def.Name = def.Identifier
	}
}

func (p *NetworkDefinitionProvider) add(def entity.NetworkDefinition) {
	p.activeNetworkDefs = append(p.activeNetworkDefs, def)
	idx := len(p.activeNetworkDefs) - 1
	p.byIdentifier[def.Identifier] = idx
	p.byChainID[def.ChainID] = idx
}

func (p *NetworkDefinitionProvider) reindex() {
	p.byIdentifier = make(map[string]int, len(p.activeNetworkDefs))
	p.byChainID = make(map[uint64]int, len(p.activeNetworkDefs))
	for i, def := range p.activeNetworkDefs {
		p.byIdentifier[def.Identifier] = i
		p.byChainID[def.ChainID] = i
	}
}

// GetAllNetworkDefinitions returns the list of active network definitions ordered by chain ID.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.activeNetworkDefs))
	copy(defsCopy, p.activeNetworkDefs)
	return defsCopy
}

// GetNetworkDefinitionByName returns a network definition by identifier or display name.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	if idx, ok := p.byIdentifier[strings.ToLower(nameOrIdentifier)]; ok {
		return p.activeNetworkDefs[idx], true
	}
	for _, def := range p.activeNetworkDefs {
		if strings.EqualFold(def.Name, nameOrIdentifier) {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// GetNetworkDefinitionByChainID returns a network definition by its chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	idx, ok := p.byChainID[chainID]
	if !ok {
		return entity.NetworkDefinition{}, false
	}
	return p.activeNetworkDefs[idx], true
}

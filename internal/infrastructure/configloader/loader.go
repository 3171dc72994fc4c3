package configloader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Registry source names accepted in registry.sources.
const (
	SourceFile      = "file"
	SourceTokenList = "tokenlist"
	SourceOnChain   = "onchain"
)

// ErrNoRegistrySources is returned when no usable registry source is configured.
var ErrNoRegistrySources = errors.New("no registry sources configured")

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	AllowedOrigins      []string `yaml:"allowedOrigins"`
	SwaggerSpecPath     string   `yaml:"swaggerSpecPath"` // "-" disables the Swagger UI
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// ResolverConfig configures the token resolver.
type ResolverConfig struct {
	Symbol               string `yaml:"symbol"`
	PlaceholderName      string `yaml:"placeholderName"`
	PlaceholderDecimals  uint8  `yaml:"placeholderDecimals"`
	InitialChainID       uint64 `yaml:"initialChainId"`
	LookupTimeoutSeconds int    `yaml:"lookupTimeoutSeconds"`
	RetryAttempts        int    `yaml:"retryAttempts"` // above 1 switches from best-effort to retrying lookups
	RetryBackoffMillis   int    `yaml:"retryBackoffMillis"`
}

// RegistryConfig selects and tunes token registries.
type RegistryConfig struct {
	Sources         []string `yaml:"sources"`
	TokensDir       string   `yaml:"tokensDir"`
	CacheTTLSeconds int      `yaml:"cacheTTLSeconds"`
}

// TokenListConfig configures the HTTP token-list registry.
type TokenListConfig struct {
	URL                  string `yaml:"url"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// RPCClientConfig holds configuration for RPC clients.
type RPCClientConfig struct {
	ConnectionTimeoutSeconds int     `yaml:"connectionTimeoutSeconds"`
	CallTimeoutSeconds       int     `yaml:"callTimeoutSeconds"`
	RateLimit                float64 `yaml:"rateLimit"` // requests per second per network
	BurstLimit               int     `yaml:"burstLimit"`
}

// ChainWatchConfig configures the chain ID watcher.
type ChainWatchConfig struct {
	Endpoint                string `yaml:"endpoint"`
	IntervalSeconds         int    `yaml:"intervalSeconds"`
	DisconnectAfterFailures int    `yaml:"disconnectAfterFailures"`
}

// NetworkNodeConfig overrides or extends a predefined network.
type NetworkNodeConfig struct {
	Identifier      string   `yaml:"identifier"`
	Name            string   `yaml:"name"`
	ChainID         uint64   `yaml:"chainID"`
	NativeSymbol    string   `yaml:"nativeSymbol"`
	RPCURL          string   `yaml:"rpcURL"`
	FallbackRPCURLs []string `yaml:"fallbackRpcURLs"`
	TokenAddresses  []string `yaml:"tokenAddresses"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig        `yaml:"server"`
	Logging    LoggingConfig       `yaml:"logging"`
	Resolver   ResolverConfig      `yaml:"resolver"`
	Registry   RegistryConfig      `yaml:"registry"`
	TokenList  TokenListConfig     `yaml:"tokenList"`
	RPCClient  RPCClientConfig     `yaml:"rpcClient"`
	ChainWatch ChainWatchConfig    `yaml:"chainWatch"`
	Networks   []NetworkNodeConfig `yaml:"networks"`
}

// Load reads the YAML configuration file from the given path, unmarshals it and applies defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 10
	}
	switch cfg.Server.SwaggerSpecPath {
	case "":
		cfg.Server.SwaggerSpecPath = "docs/swagger.yaml"
	case "-":
		cfg.Server.SwaggerSpecPath = ""
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Resolver.Symbol == "" {
		cfg.Resolver.Symbol = "G$"
	}
	if cfg.Resolver.PlaceholderName == "" {
		cfg.Resolver.PlaceholderName = "GoodDollar"
	}
	if cfg.Resolver.PlaceholderDecimals == 0 {
		cfg.Resolver.PlaceholderDecimals = 18
	}
	if cfg.Resolver.LookupTimeoutSeconds <= 0 {
		cfg.Resolver.LookupTimeoutSeconds = 15
	}
	if cfg.Resolver.RetryAttempts <= 0 {
		cfg.Resolver.RetryAttempts = 1
	}
	if cfg.Resolver.RetryBackoffMillis <= 0 {
		cfg.Resolver.RetryBackoffMillis = 500
	}

	if len(cfg.Registry.Sources) == 0 {
		cfg.Registry.Sources = []string{SourceFile}
		logrus.Infof("registry.sources not set, defaulting to %v", cfg.Registry.Sources)
	}
	if cfg.Registry.TokensDir == "" {
		cfg.Registry.TokensDir = "data/tokens"
	}
	if cfg.Registry.CacheTTLSeconds < 0 {
		cfg.Registry.CacheTTLSeconds = 0
	}

	if cfg.TokenList.RequestTimeoutMillis <= 0 {
		cfg.TokenList.RequestTimeoutMillis = 10000
	}

	if cfg.RPCClient.ConnectionTimeoutSeconds <= 0 {
		cfg.RPCClient.ConnectionTimeoutSeconds = 10
	}
	if cfg.RPCClient.CallTimeoutSeconds <= 0 {
		cfg.RPCClient.CallTimeoutSeconds = 10
	}
	if cfg.RPCClient.RateLimit <= 0 {
		cfg.RPCClient.RateLimit = 5
	}
	if cfg.RPCClient.BurstLimit <= 0 {
		cfg.RPCClient.BurstLimit = 10
	}

	if cfg.ChainWatch.IntervalSeconds <= 0 {
		cfg.ChainWatch.IntervalSeconds = 5
	}
	if cfg.ChainWatch.DisconnectAfterFailures <= 0 {
		cfg.ChainWatch.DisconnectAfterFailures = 3
	}
}

func validate(cfg *Config) error {
	sources := make([]string, 0, len(cfg.Registry.Sources))
	for _, s := range cfg.Registry.Sources {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case SourceFile, SourceOnChain:
		case SourceTokenList:
			if cfg.TokenList.URL == "" {
				logrus.Warnf("registry source %q enabled but tokenList.url is empty, skipping it", s)
				continue
			}
		default:
			return fmt.Errorf("unknown registry source %q", s)
		}
		sources = append(sources, s)
	}
	if len(sources) == 0 {
		return ErrNoRegistrySources
	}
	cfg.Registry.Sources = sources

	for i, network := range cfg.Networks {
		if network.Identifier == "" {
			return fmt.Errorf("networks[%d]: identifier is required", i)
		}
		if network.ChainID == 0 && network.RPCURL == "" && len(network.TokenAddresses) == 0 {
			logrus.Warnf("Network '%s' has no chainID, rpcURL or tokenAddresses, the entry has no effect", network.Identifier)
		}
	}
	return nil
}

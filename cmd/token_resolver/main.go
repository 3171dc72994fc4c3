package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"token_resolver/internal/app/port"
	"token_resolver/internal/app/provider"
	"token_resolver/internal/app/service"
	"token_resolver/internal/client"
	"token_resolver/internal/domain/entity"
	"token_resolver/internal/infrastructure/configloader"
	"token_resolver/internal/infrastructure/network/chainwatch"
	evmclient "token_resolver/internal/infrastructure/network/client"
	networkdefinition "token_resolver/internal/infrastructure/network/definition"
	"token_resolver/internal/infrastructure/restapi"
	"token_resolver/internal/infrastructure/tokenloader"
	"token_resolver/internal/pkg/logger"
	"token_resolver/internal/pkg/metrics"
)

const defaultConfigPath = "config/config.yml"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.InitSlog(zapLogger, cfg.Logging.Level)

	logger.Info("Token resolver starting", "config", cfgPath)
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.MustRegisterMetrics()

	netDefProvider := networkdefinition.NewNetworkDefinitionProvider(logger.NewComponentLogger("networks"), cfg.Networks)

	clientProvider := evmclient.NewEVMClientProvider(cfg, logger.NewComponentLogger("evm"))
	defer clientProvider.Close()

	registry := buildRegistry(cfg, netDefProvider, clientProvider, zapLogger)

	var policy service.ResolutionPolicy
	if cfg.Resolver.RetryAttempts > 1 {
		policy = service.NewRetryPolicy(
			logger.NewComponentLogger("resolution"),
			cfg.Resolver.RetryAttempts,
			time.Duration(cfg.Resolver.RetryBackoffMillis)*time.Millisecond,
		)
	}

	resolver := service.NewTokenResolver(registry, service.ResolverOptions{
		Symbol: cfg.Resolver.Symbol,
		Placeholder: entity.TokenInfo{
			Name:     cfg.Resolver.PlaceholderName,
			Symbol:   cfg.Resolver.Symbol,
			Decimals: cfg.Resolver.PlaceholderDecimals,
		},
		LookupTimeout: time.Duration(cfg.Resolver.LookupTimeoutSeconds) * time.Second,
		Policy:        policy,
	}, logger.NewComponentLogger("resolver"))
	defer resolver.Close()

	resolver.SetChainID(cfg.Resolver.InitialChainID)

	var watcher *chainwatch.Watcher
	if cfg.ChainWatch.Endpoint != "" {
		dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.RPCClient.ConnectionTimeoutSeconds)*time.Second)
		reader, err := chainwatch.DialChainIDReader(dialCtx, cfg.ChainWatch.Endpoint)
		cancelDial()
		if err != nil {
			logger.Fatal("Failed to connect chain watcher", "endpoint", cfg.ChainWatch.Endpoint, "error", err)
		}
		defer reader.Close()
		watcher = chainwatch.NewWatcher(
			reader,
			resolver,
			time.Duration(cfg.ChainWatch.IntervalSeconds)*time.Second,
			cfg.ChainWatch.DisconnectAfterFailures,
			logger.NewComponentLogger("chainwatch"),
		)
	}

	router := restapi.SetupRouter(
		restapi.NewTokenHandler(resolver, netDefProvider, logger.NewComponentLogger("api")),
		restapi.NewStreamHandler(resolver, cfg.Server.AllowedOrigins, logger.NewComponentLogger("stream")),
		restapi.RouterOptions{
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			SwaggerSpecPath: cfg.Server.SwaggerSpecPath,
		},
		zapLogger,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Token resolver stopped with error", "error", err)
	} else {
		logger.Info("Token resolver stopped")
	}
}

// buildRegistry assembles the configured registry sources in order behind a fallback chain and the cache.
func buildRegistry(
	cfg *configloader.Config,
	networks port.NetworkDefinitionProvider,
	clients port.TokenMetadataClientProvider,
	zapLogger *zap.Logger,
) port.TokenRegistry {
	sources := make([]provider.NamedRegistry, 0, len(cfg.Registry.Sources))
	for _, source := range cfg.Registry.Sources {
		var r port.TokenRegistry
		switch source {
		case configloader.SourceFile:
			r = tokenloader.NewTokenLoader(cfg.Registry.TokensDir, networks, logger.NewComponentLogger("tokenloader"))
		case configloader.SourceTokenList:
			r = client.NewTokenListClient(
				cfg.TokenList.URL,
				time.Duration(cfg.TokenList.RequestTimeoutMillis)*time.Millisecond,
				zapLogger,
			)
		case configloader.SourceOnChain:
			r = evmclient.NewOnChainRegistry(networks, clients, logger.NewComponentLogger("onchain"))
		default:
			continue
		}
		sources = append(sources, provider.NamedRegistry{Name: source, Registry: r})
	}
	logger.Info("Token registries configured", "sources", cfg.Registry.Sources, "cache_ttl_seconds", cfg.Registry.CacheTTLSeconds)

	fallback := provider.NewFallbackRegistry(logger.NewComponentLogger("registry"), sources...)
	return provider.NewCachedRegistry(
		fallback,
		time.Duration(cfg.Registry.CacheTTLSeconds)*time.Second,
		logger.NewComponentLogger("registry_cache"),
	)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/openvault-labs/yieldrouter/internal/config"
	"github.com/openvault-labs/yieldrouter/internal/datafetcher"
	"github.com/openvault-labs/yieldrouter/internal/decision"
	"github.com/openvault-labs/yieldrouter/internal/engine"
	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/state"
	"github.com/openvault-labs/yieldrouter/internal/types"
	"github.com/openvault-labs/yieldrouter/internal/vault"
	"github.com/openvault-labs/yieldrouter/internal/web"
)

const (
	DEFAULT_CONFIG_NAME    = "default_router_strategy"
	DEFAULT_CONFIG_VERSION = 1
)

// main is the entry point for the yield router.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(config.LogLevel)
	log.Info().Msg("Yield router starting...")

	// Initialize database connection (parameters and protocol registry)
	dbCfg := state.DBConfig{
		Host: config.DBHost, Port: config.DBPort,
		User: config.DBUser, Password: config.DBPassword,
		DBName: config.DBName, SSLMode: config.DBSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load engine parameters, seeding the defaults on first boot
	params, version, err := state.LoadActiveEngineParameters(DEFAULT_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active engine parameters, using defaults and saving.")
		params = config.DefaultEngineParameters
		version = DEFAULT_CONFIG_VERSION
		if _, err := state.SaveEngineParameters(params, DEFAULT_CONFIG_NAME, version, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default engine parameters.")
		}
	}
	log.Info().Int("version", version).Msg("Engine parameters loaded")

	// Load the protocol registry: database first, built-in defaults as seed
	registry, err := state.LoadProtocolRegistry()
	if err != nil || len(registry) == 0 {
		registry, err = config.LoadProtocolRegistry(config.ProtocolRegistryPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load protocol registry")
		}
		if err := state.SeedProtocolRegistry(registry); err != nil {
			log.Warn().Err(err).Msg("Failed to seed protocol registry into database")
		}
	}
	log.Info().Int("protocols", len(registry)).Msg("Protocol registry ready")

	// --- 2. Data Feed ---
	aggregator, err := datafetcher.NewAggregatorFeed(config.YieldAPIURL, config.YieldAsset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build aggregator feed")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	defer redisClient.Close()

	var feed datafetcher.YieldFeed = aggregator
	cached, err := datafetcher.NewCachedFeed(aggregator, redisClient, datafetcher.DefaultCacheTTL)
	if err != nil {
		log.Warn().Err(err).Msg("Yield cache unavailable, fetching uncached")
	} else {
		feed = cached
	}

	// --- 3. Vault Collaborators (with Safety Switch) ---
	var positions vault.PositionSource
	var executor vault.TransferExecutor

	if config.ExecutionMode == "live" {
		log.Fatal().Msg("EXECUTION_MODE=live requires an external execution backend; none is wired in this build. Halting to prevent accidental execution.")
	} else {
		log.Warn().Msg("Initializing in PAPER mode. Transfers mutate a simulated book only.")
		paper := vault.NewPaperVault(
			map[string]float64{"aave-v3": 100_000},
			map[string]float64{"aave-v3": 0.04},
		)
		positions = paper
		executor = paper
	}

	// --- 4. Status Server ---
	status := web.NewStatusStore(params)
	webServer := web.NewWebServer(config.WebListenAddr, status)
	go func() {
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed")
		}
	}()

	// --- 5. Engine Assembly ---
	var costs types.ChainCostTable
	if config.HomeChain != "" {
		costs = config.DefaultChainCostTable
	}

	eng, err := engine.NewEngine(engine.Config{
		Feed:       feed,
		Positions:  positions,
		Executor:   executor,
		Gate:       decision.NewGate(),
		Status:     status,
		Registry:   registry,
		ChainCosts: costs,
		HomeChain:  config.HomeChain,
		Params:     params,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}

	// --- 6. Run ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng.RunLoop(ctx, time.Duration(config.CycleInterval)*time.Second)
	log.Info().Msg("Yield router stopped")
}

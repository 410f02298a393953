package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// YieldAPIURL is the base URL of the yield aggregator API.
	YieldAPIURL string
	// YieldAsset is the asset symbol the router allocates (e.g., "USDC").
	YieldAsset string

	// HomeChain is the chain the vault's principal currently sits on.
	HomeChain string

	// RedisAddr is the address of the Redis instance used for yield caching.
	RedisAddr string

	// ExecutionMode selects "paper" or "live" execution.
	ExecutionMode string

	// CycleInterval is the number of seconds between engine cycles.
	CycleInterval int

	// WebListenAddr is the bind address for the status HTTP server.
	WebListenAddr string

	// LogLevel controls zerolog verbosity.
	LogLevel string

	// ProtocolRegistryPath optionally points to a YAML file overriding the
	// built-in protocol registry. Empty means use the defaults.
	ProtocolRegistryPath string

	// Database connection settings.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables without a stated default are required.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	YieldAPIURL, err = getEnv("YIELD_API_URL")
	if err != nil {
		return err
	}

	YieldAsset = getEnvWithDefault("YIELD_ASSET", "USDC")

	HomeChain, err = getEnv("HOME_CHAIN")
	if err != nil {
		return err
	}
	HomeChain = strings.ToLower(HomeChain)

	RedisAddr, err = getEnv("REDIS_ADDR")
	if err != nil {
		return err
	}

	ExecutionMode = strings.ToLower(getEnvWithDefault("EXECUTION_MODE", "paper"))
	if ExecutionMode != "paper" && ExecutionMode != "live" {
		return errors.New("EXECUTION_MODE must be 'paper' or 'live'")
	}

	CycleInterval, err = getEnvAsInt("CYCLE_INTERVAL_SECONDS")
	if err != nil {
		return err
	}
	if CycleInterval <= 0 {
		return errors.New("CYCLE_INTERVAL_SECONDS must be positive")
	}

	WebListenAddr = getEnvWithDefault("WEB_LISTEN_ADDR", ":8080")
	LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	ProtocolRegistryPath = getEnvWithDefault("PROTOCOL_REGISTRY_PATH", "")

	DBHost, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}
	DBPort, err = getEnvAsInt("DB_PORT")
	if err != nil {
		return err
	}
	DBUser, err = getEnv("DB_USER")
	if err != nil {
		return err
	}
	DBPassword, err = getEnv("DB_PASSWORD")
	if err != nil {
		return err
	}
	DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}
	DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	log.Info().
		Str("yieldAPI", YieldAPIURL).
		Str("homeChain", HomeChain).
		Str("executionMode", ExecutionMode).
		Int("cycleInterval", CycleInterval).
		Msg("Application configuration loaded")

	return nil
}

func getEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", errors.New("required environment variable not set: " + key)
	}
	return value, nil
}

func getEnvWithDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string) (int, error) {
	raw, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be an integer")
	}
	return value, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration. Everything here is immutable
// after the first Get(); round state lives in the database, not here.
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	HTTPAddr string

	// Raffle configuration
	EntranceFee   int64         // minimum payment per entry
	RoundInterval time.Duration // minimum elapsed time between rounds
	PollInterval  time.Duration // how often the automation probes eligibility

	// Oracle request parameters
	OracleSubscriptionID    string
	OraclePriorityClass     string
	OracleConfirmationDepth int
	OracleCallbackBudget    int64
	OracleBlockTime         time.Duration // simulated confirmation time per block (local oracle)

	// Winner announcement configuration
	DiscordToken         string
	DiscordChannelID     string
	AnnouncementsEnabled bool

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// HTTP
		HTTPAddr: ":8080",

		// Raffle settings with defaults
		EntranceFee:   100,
		RoundInterval: 300 * time.Second,
		PollInterval:  15 * time.Second,

		// Oracle settings with defaults
		OracleSubscriptionID:    os.Getenv("ORACLE_SUBSCRIPTION_ID"),
		OraclePriorityClass:     os.Getenv("ORACLE_PRIORITY_CLASS"),
		OracleConfirmationDepth: 3,
		OracleCallbackBudget:    500000,
		OracleBlockTime:         2 * time.Second,

		// Winner announcements
		DiscordToken:         os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID:     os.Getenv("DISCORD_CHANNEL_ID"),
		AnnouncementsEnabled: os.Getenv("ANNOUNCEMENTS_ENABLED") == "true",

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}
	if fee := os.Getenv("ENTRANCE_FEE"); fee != "" {
		parsedFee, err := strconv.ParseInt(fee, 10, 64)
		if err != nil || parsedFee <= 0 {
			return nil, fmt.Errorf("ENTRANCE_FEE must be a positive integer, got %q", fee)
		}
		config.EntranceFee = parsedFee
	}
	if interval := os.Getenv("ROUND_INTERVAL_SECONDS"); interval != "" {
		parsedInterval, err := strconv.Atoi(interval)
		if err != nil || parsedInterval <= 0 {
			return nil, fmt.Errorf("ROUND_INTERVAL_SECONDS must be a positive integer, got %q", interval)
		}
		config.RoundInterval = time.Duration(parsedInterval) * time.Second
	}
	if interval := os.Getenv("POLL_INTERVAL_SECONDS"); interval != "" {
		if parsedInterval, err := strconv.Atoi(interval); err == nil && parsedInterval > 0 {
			config.PollInterval = time.Duration(parsedInterval) * time.Second
		}
	}
	if depth := os.Getenv("ORACLE_CONFIRMATION_DEPTH"); depth != "" {
		if parsedDepth, err := strconv.Atoi(depth); err == nil && parsedDepth > 0 {
			config.OracleConfirmationDepth = parsedDepth
		}
	}
	if budget := os.Getenv("ORACLE_CALLBACK_BUDGET"); budget != "" {
		if parsedBudget, err := strconv.ParseInt(budget, 10, 64); err == nil && parsedBudget > 0 {
			config.OracleCallbackBudget = parsedBudget
		}
	}
	if blockTime := os.Getenv("ORACLE_BLOCK_TIME_MS"); blockTime != "" {
		if parsedBlockTime, err := strconv.Atoi(blockTime); err == nil && parsedBlockTime > 0 {
			config.OracleBlockTime = time.Duration(parsedBlockTime) * time.Millisecond
		}
	}

	if config.OraclePriorityClass == "" {
		config.OraclePriorityClass = "standard"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AnnouncementsEnabled && (config.DiscordToken == "" || config.DiscordChannelID == "") {
			return nil, fmt.Errorf("DISCORD_TOKEN and DISCORD_CHANNEL_ID are required when ANNOUNCEMENTS_ENABLED is true")
		}
	}

	return config, nil
}

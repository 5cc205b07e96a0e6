package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Leaderboard configuration; submission is disabled when NatsURL is empty
	NatsURL            string
	LeaderboardSubject string

	// Economy configuration. The defaults are the source system's tuned
	// values and should not be changed casually.
	InitialBalance    int64
	FreeCoinsAmount   int64
	FreeCoinsInterval time.Duration

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
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Leaderboard
		NatsURL:            os.Getenv("NATS_URL"),
		LeaderboardSubject: os.Getenv("LEADERBOARD_SUBJECT"),

		// Economy defaults: 100 coins on first open, +10 claimable every
		// 2.5 hours
		InitialBalance:    100,
		FreeCoinsAmount:   10,
		FreeCoinsInterval: time.Duration(2.5 * float64(time.Hour)),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.LeaderboardSubject == "" {
		config.LeaderboardSubject = "leaderboard.scores"
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("INITIAL_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.InitialBalance = parsedBalance
		}
	}
	if amount := os.Getenv("FREE_COINS_AMOUNT"); amount != "" {
		if parsedAmount, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.FreeCoinsAmount = parsedAmount
		}
	}
	if interval := os.Getenv("FREE_COINS_INTERVAL"); interval != "" {
		if parsedInterval, err := time.ParseDuration(interval); err == nil {
			config.FreeCoinsInterval = parsedInterval
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"pokerroom/bot"
	"pokerroom/config"
	"pokerroom/database"
	"pokerroom/events"
	"pokerroom/leaderboard"
	"pokerroom/repository"
	"pokerroom/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting poker room bot...")

	cfg := config.Get()

	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	log.Println("Running migrations...")
	if err := database.RunMigrationsWithURL(cfg.DatabaseURL); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	log.Println("Initializing services...")
	economyService := service.NewEconomyService(uowFactory, service.SystemClock(), service.EconomyConfig{
		InitialBalance:    cfg.InitialBalance,
		FreeCoinsAmount:   cfg.FreeCoinsAmount,
		FreeCoinsInterval: cfg.FreeCoinsInterval,
	})
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engineService := service.NewEngineService(uowFactory, economyService, rng)

	submitter := leaderboard.NewNoopSubmitter()
	if cfg.NatsURL != "" {
		submitter, err = leaderboard.NewNATSSubmitter(cfg.NatsURL, cfg.LeaderboardSubject)
		if err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to leaderboard: %w", err)
		}
	}

	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, economyService, engineService, eventBus, submitter)
	if err != nil {
		submitter.Close()
		db.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Println("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	submitter.Close()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

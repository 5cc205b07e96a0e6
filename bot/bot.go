package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"pokerroom/bot/features/balance"
	"pokerroom/bot/features/poker"
	"pokerroom/events"
	"pokerroom/leaderboard"
	"pokerroom/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config  Config
	session *discordgo.Session

	balanceFeature *balance.Feature
	pokerFeature   *poker.Feature
}

func New(config Config, economyService service.EconomyService, engineService service.EngineService, eventBus *events.Bus, submitter leaderboard.Submitter) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:         config,
		session:        dg,
		balanceFeature: balance.New(economyService),
		pokerFeature:   poker.New(engineService, economyService),
	}

	dg.AddHandler(bot.handleInteraction)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Every committed balance change feeds the leaderboard
	eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		change, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		submitter.Submit(leaderboard.Score{
			UserID:    change.UserID,
			Balance:   change.NewBalance,
			Timestamp: time.Now(),
		})
	})

	log.Info("Bot connected and commands registered")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleInteraction routes slash commands, buttons and modals to their
// feature handlers.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "balance":
			b.balanceFeature.HandleBalance(s, i)
		case "freecoins":
			b.balanceFeature.HandleFreeCoins(s, i)
		case "reset":
			b.balanceFeature.HandleReset(s, i)
		case "poker":
			b.pokerFeature.HandleCommand(s, i)
		}
	case discordgo.InteractionMessageComponent:
		b.pokerFeature.HandleComponentInteraction(s, i)
	case discordgo.InteractionModalSubmit:
		b.pokerFeature.HandleModalSubmit(s, i)
	}
}

package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current balance and free-coin timer",
		},
		{
			Name:        "freecoins",
			Description: "Claim your free coins when they are ready",
		},
		{
			Name:        "poker",
			Description: "Sit down at a poker table against the dealer",
		},
		{
			Name:        "reset",
			Description: "Wipe your account and start over",
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

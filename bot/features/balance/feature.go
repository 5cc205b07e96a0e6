package balance

import (
	"pokerroom/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	economyService service.EconomyService
}

func New(economyService service.EconomyService) *Feature {
	return &Feature{
		economyService: economyService,
	}
}

func (f *Feature) HandleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBalance(s, i)
}

func (f *Feature) HandleFreeCoins(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleFreeCoins(s, i)
}

func (f *Feature) HandleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleReset(s, i)
}

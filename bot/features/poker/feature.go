package poker

import (
	"strings"

	"pokerroom/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	engineService  service.EngineService
	economyService service.EconomyService
}

func New(engineService service.EngineService, economyService service.EconomyService) *Feature {
	return &Feature{
		engineService:  engineService,
		economyService: economyService,
	}
}

// HandleCommand handles the /poker slash command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handlePokerCommand(s, i)
}

// HandleComponentInteraction routes poker button clicks
func (f *Feature) HandleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "poker_") {
		return false
	}

	switch {
	case strings.HasPrefix(customID, "poker_buyin_"):
		f.handleBuyIn(s, i, strings.TrimPrefix(customID, "poker_buyin_"))
	case customID == "poker_check":
		f.handleCheck(s, i)
	case customID == "poker_raise":
		f.handleRaiseButton(s, i)
	case customID == "poker_reveal":
		f.handleReveal(s, i)
	}
	return true
}

// HandleModalSubmit routes the raise amount modal
func (f *Feature) HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.ModalSubmitData().CustomID != "poker_raise_modal" {
		return false
	}
	f.handleRaiseModal(s, i)
	return true
}

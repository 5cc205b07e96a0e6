package poker

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"pokerroom/bot/common"
	"pokerroom/models"
	"pokerroom/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handlePokerCommand shows the active hand if one exists, otherwise the
// buy-in screen.
func (f *Feature) handlePokerCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	view, err := f.engineService.ActiveHand(ctx, userID)
	if err != nil {
		log.Errorf("Error getting active hand for %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to open the poker room. Please try again.")
		return
	}

	if view != nil {
		if err := common.RespondWithEmbed(s, i, buildHandEmbed(view, "Your hand is still running."), buildHandComponents(view.Legal), true); err != nil {
			log.Errorf("Error responding to poker command: %v", err)
		}
		return
	}

	balance, err := f.economyService.GetBalance(ctx, userID)
	if err != nil {
		log.Errorf("Error getting balance for %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to open the poker room. Please try again.")
		return
	}

	if err := common.RespondWithEmbed(s, i, buildBuyInEmbed(balance), buildBuyInComponents(), true); err != nil {
		log.Errorf("Error responding to poker command: %v", err)
	}
}

func (f *Feature) handleBuyIn(s *discordgo.Session, i *discordgo.InteractionCreate, tierName string) {
	ctx := context.Background()
	userID := i.Member.User.ID

	view, err := f.engineService.StartHand(ctx, userID, models.BuyInTier(tierName))
	if err != nil {
		f.respondEngineError(s, i, userID, err)
		return
	}

	if err := common.UpdateWithEmbed(s, i, buildHandEmbed(view, "Cards are dealt. Good luck!"), buildHandComponents(view.Legal)); err != nil {
		log.Errorf("Error updating buy-in message: %v", err)
	}
}

func (f *Feature) handleCheck(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	outcome, err := f.engineService.PlayerCheck(ctx, userID)
	if err != nil {
		f.respondEngineError(s, i, userID, err)
		return
	}

	f.renderOutcome(s, i, userID, outcome)
}

func (f *Feature) handleRaiseButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	balance, err := f.economyService.GetBalance(ctx, userID)
	if err != nil {
		log.Errorf("Error getting balance for %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to raise right now. Please try again.")
		return
	}

	if err := s.InteractionRespond(i.Interaction, buildRaiseModal(balance)); err != nil {
		log.Errorf("Error showing raise modal: %v", err)
	}
}

func (f *Feature) handleRaiseModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	data := i.ModalSubmitData()
	input := data.Components[0].(*discordgo.ActionsRow).Components[0].(*discordgo.TextInput)
	amount, err := strconv.ParseInt(strings.TrimSpace(input.Value), 10, 64)
	if err != nil || amount <= 0 {
		common.RespondWithError(s, i, "Enter a positive whole number of coins.")
		return
	}

	outcome, err := f.engineService.PlayerRaise(ctx, userID, amount)
	if err != nil {
		f.respondEngineError(s, i, userID, err)
		return
	}

	f.renderOutcome(s, i, userID, outcome)
}

func (f *Feature) handleReveal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	if _, err := f.engineService.RevealNext(ctx, userID); err != nil {
		f.respondEngineError(s, i, userID, err)
		return
	}

	view, err := f.engineService.ActiveHand(ctx, userID)
	if err != nil || view == nil {
		log.Errorf("Error getting hand view after reveal for %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to show the table. Please try again.")
		return
	}

	if err := common.UpdateWithEmbed(s, i, buildHandEmbed(view, ""), buildHandComponents(view.Legal)); err != nil {
		log.Errorf("Error updating reveal message: %v", err)
	}
}

// renderOutcome shows the settlement screen on the river, otherwise the
// updated table with the dealer's action.
func (f *Feature) renderOutcome(s *discordgo.Session, i *discordgo.InteractionCreate, userID string, outcome *models.StreetOutcome) {
	if outcome.Settlement != nil {
		if err := common.UpdateWithEmbed(s, i, buildSettlementEmbed(outcome), buildBuyInComponents()); err != nil {
			log.Errorf("Error updating settlement message: %v", err)
		}
		return
	}

	view, err := f.engineService.ActiveHand(context.Background(), userID)
	if err != nil || view == nil {
		log.Errorf("Error getting hand view for %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to show the table. Please try again.")
		return
	}

	if err := common.UpdateWithEmbed(s, i, buildHandEmbed(view, dealerActionNote(outcome)), buildHandComponents(view.Legal)); err != nil {
		log.Errorf("Error updating outcome message: %v", err)
	}
}

func (f *Feature) respondEngineError(s *discordgo.Session, i *discordgo.InteractionCreate, userID string, err error) {
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		common.RespondWithError(s, i, "Not enough coins for that. Check `/balance` for free coins.")
	case errors.Is(err, service.ErrNoActiveHand):
		common.RespondWithError(s, i, "No hand in progress. Start one with `/poker`.")
	case errors.Is(err, service.ErrHandInProgress):
		common.RespondWithError(s, i, "Finish your current hand first.")
	case errors.Is(err, service.ErrInvalidState):
		common.RespondWithError(s, i, "That move is not available right now.")
	default:
		log.Errorf("Engine error for %s: %v", userID, err)
		common.RespondWithError(s, i, "Something went wrong. Please try again.")
	}
}

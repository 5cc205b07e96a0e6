package balance

import (
	"context"
	"fmt"

	"pokerroom/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	account, err := f.economyService.GetOrCreateAccount(ctx, userID)
	if err != nil {
		log.Errorf("Error getting account %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	message := fmt.Sprintf("<@%s>, your current balance: **%s coins**", userID, common.FormatBalance(account.Balance))

	available, err := f.economyService.CanClaimFreeCoins(ctx, userID)
	if err != nil {
		log.Errorf("Error checking free coins for %s: %v", userID, err)
	} else if available {
		message += "\n🎁 Free coins are ready! Use `/freecoins` to claim them."
	} else {
		message += fmt.Sprintf("\n⏳ Next free coins %s", common.FormatDiscordTimestamp(account.NextGrantAt, "R"))
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (f *Feature) handleFreeCoins(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	granted, err := f.economyService.ClaimFreeCoins(ctx, userID)
	if err != nil {
		log.Errorf("Error claiming free coins for %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to claim free coins. Please try again.")
		return
	}

	if !granted {
		nextGrantAt, err := f.economyService.NextGrantAt(ctx, userID)
		if err != nil {
			log.Errorf("Error getting next grant time for %s: %v", userID, err)
			common.RespondWithError(s, i, "No free coins available yet.")
			return
		}
		common.RespondWithError(s, i, fmt.Sprintf("No free coins available yet. Come back %s.",
			common.FormatDiscordTimestamp(nextGrantAt, "R")))
		return
	}

	balance, err := f.economyService.GetBalance(ctx, userID)
	if err != nil {
		log.Errorf("Error getting balance for %s: %v", userID, err)
		common.RespondWithError(s, i, "Claimed, but balance lookup failed.")
		return
	}

	if err := common.RespondWithSuccess(s, i,
		fmt.Sprintf("Free coins claimed! New balance: **%s coins**", common.FormatBalance(balance)), true); err != nil {
		log.Errorf("Error responding to freecoins command: %v", err)
	}
}

func (f *Feature) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := i.Member.User.ID

	if err := f.economyService.ClearUserData(ctx, userID); err != nil {
		log.Errorf("Error clearing data for %s: %v", userID, err)
		common.RespondWithError(s, i, "Unable to reset your account. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i,
		"Your account was wiped. The next command starts you fresh.", true); err != nil {
		log.Errorf("Error responding to reset command: %v", err)
	}
}

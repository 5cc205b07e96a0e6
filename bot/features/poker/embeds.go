package poker

import (
	"fmt"

	"pokerroom/bot/common"
	"pokerroom/models"

	"github.com/bwmarrin/discordgo"
)

var streetTitles = map[models.Street]string{
	models.StreetPreFlop:  "Pre-Flop",
	models.StreetFlop:     "Flop",
	models.StreetTurn:     "Turn",
	models.StreetRiver:    "River",
	models.StreetShowdown: "Showdown",
}

// buildBuyInEmbed is the tier selection screen shown by /poker
func buildBuyInEmbed(balance int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🃏 Poker Room",
		Description: fmt.Sprintf(
			"Pick a table. You need twice the buy-in to sit down.\n\nYour balance: **%s coins**",
			common.FormatBalance(balance)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Low", Value: "Buy-in 5 coins, pays 2x", Inline: true},
			{Name: "Mid", Value: "Buy-in 50 coins, pays 3x", Inline: true},
			{Name: "High", Value: "Buy-in 500 coins, pays 5x", Inline: true},
		},
		Color: 0x2ecc71,
	}
}

func buildBuyInComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Low (5)", Style: discordgo.SuccessButton, CustomID: "poker_buyin_low"},
				discordgo.Button{Label: "Mid (50)", Style: discordgo.PrimaryButton, CustomID: "poker_buyin_mid"},
				discordgo.Button{Label: "High (500)", Style: discordgo.DangerButton, CustomID: "poker_buyin_high"},
			},
		},
	}
}

// buildHandEmbed renders the table mid-hand, with an optional line about
// what just happened.
func buildHandEmbed(view *models.HandView, note string) *discordgo.MessageEmbed {
	description := ""
	if note != "" {
		description = note + "\n"
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🃏 %s", streetTitles[view.Street]),
		Description: description,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your Hand", Value: common.FormatCards(view.PlayerHole), Inline: true},
			{Name: "Community", Value: common.FormatCards(view.Community), Inline: true},
			{
				Name: "Pot",
				Value: fmt.Sprintf("**%s coins** (you: %s, wins %s)",
					common.FormatBalance(view.PotTotal),
					common.FormatBalance(view.PlayerContribution),
					common.FormatBalance(view.PayoutIfWin)),
			},
			{Name: "Balance", Value: common.FormatBalance(view.Balance) + " coins", Inline: true},
		},
		Color: 0x3498db,
	}
	return embed
}

func buildHandComponents(legal models.LegalActions) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	if legal.CanCheck {
		buttons = append(buttons, discordgo.Button{Label: "Check", Style: discordgo.SecondaryButton, CustomID: "poker_check"})
	}
	if legal.CanRaise {
		buttons = append(buttons, discordgo.Button{Label: "Raise", Style: discordgo.PrimaryButton, CustomID: "poker_raise"})
	}
	if legal.CanReveal {
		buttons = append(buttons, discordgo.Button{Label: "Deal Next Card", Style: discordgo.SuccessButton, CustomID: "poker_reveal"})
	}
	if len(buttons) == 0 {
		return nil
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// dealerActionNote describes the dealer's response to the player's bet
func dealerActionNote(outcome *models.StreetOutcome) string {
	if outcome.DealerRaise > 0 {
		return fmt.Sprintf("Dealer raised **%s coins**; you called.", common.FormatBalance(outcome.DealerRaise))
	}
	if outcome.PlayerRaised {
		return "Dealer called your raise."
	}
	return "Dealer checked."
}

func buildSettlementEmbed(outcome *models.StreetOutcome) *discordgo.MessageEmbed {
	settlement := outcome.Settlement

	var title, resultLine string
	var color int
	switch settlement.Result {
	case models.HandResultWin:
		title = "🎉 You Win!"
		resultLine = fmt.Sprintf("You collect **%s coins**.", common.FormatBalance(settlement.Payout))
		color = 0x2ecc71
	case models.HandResultTie:
		title = "🤝 Split Pot"
		resultLine = fmt.Sprintf("Your **%s coins** come back to you.", common.FormatBalance(settlement.Payout))
		color = 0xf1c40f
	default:
		title = "😔 Dealer Wins"
		resultLine = "The pot goes to the dealer."
		color = 0xe74c3c
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: resultLine,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your Hand", Value: settlement.PlayerCategory.String(), Inline: true},
			{Name: "Dealer Hand", Value: settlement.DealerCategory.String(), Inline: true},
			{Name: "Dealer Hole Cards", Value: common.FormatCards(settlement.DealerHole)},
			{Name: "Community", Value: common.FormatCards(settlement.Community)},
			{Name: "Pot", Value: common.FormatBalance(outcome.PotTotal) + " coins", Inline: true},
			{Name: "New Balance", Value: common.FormatBalance(settlement.NewBalance) + " coins", Inline: true},
		},
		Color: color,
	}
}

// buildRaiseModal asks for the raise amount; the balance caps it
func buildRaiseModal(balance int64) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "poker_raise_modal",
			Title:    "Raise",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "raise_amount",
							Label:       fmt.Sprintf("Amount (up to %s coins)", common.FormatBalance(balance)),
							Style:       discordgo.TextInputShort,
							Placeholder: "10",
							Required:    true,
							MaxLength:   10,
						},
					},
				},
			},
		},
	}
}

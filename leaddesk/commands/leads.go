package commands

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/leaddesk/leaddesk"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/leads"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/utils"
)

var Leads = discord.SlashCommandCreate{
	Name:        "leads",
	Description: "Search the configured lead pool",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "query",
			Description: "Part of a lead's name",
			Required:    true,
		},
	},
}

// LeadsHandler fuzzy-searches the lead pool by name, staff only.
func LeadsHandler(b *leaddesk.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isStaff(b, e) {
			return utils.EH.CreateErrorEmbed(e, "Only ticket staff can search leads.")
		}

		query := e.SlashCommandInteractionData().String("query")
		matches := leads.Search(b.Distributor.Pool(), query)
		if len(matches) == 0 {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No leads match `%s`.", query))
		}

		embed := discord.NewEmbedBuilder().
			SetTitle("Lead Search").
			SetDescription(leads.FormatPool(matches)).
			SetColor(config.InfoColor).
			Build()

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed},
			Flags:  discord.MessageFlagEphemeral,
		})
	}
}

// RequestLeadsComponent handles the "Get Leads" button: cooldown gate, then
// a private channel with the lead batch.
func RequestLeadsComponent(b *leaddesk.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		topo := b.Guild.Get()
		if topo.TicketsCategory == 0 {
			return utils.EH.CreateEphemeralError(e, "The bot has not been set up yet.")
		}

		userID := e.User().ID
		if ok, remaining := b.LeadManager.BeginRequest(userID); !ok {
			return utils.EH.CreateEphemeralError(e,
				fmt.Sprintf("⏱ You can get more leads in %d seconds.", int(remaining.Seconds())))
		}

		delivery, err := b.Distributor.Deliver(*e.GuildID(), topo.TicketsCategory, userID)
		if err != nil {
			slog.Error("Failed to deliver leads",
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
			return utils.EH.CreateEphemeralError(e, "An error occurred.")
		}

		return utils.EH.CreateEphemeralSuccess(e,
			fmt.Sprintf("%d leads created in %s!", delivery.Count, utils.ChannelMention(delivery.ChannelID)))
	}
}

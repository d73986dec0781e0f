package commands

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/leaddesk/leaddesk"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/tickets"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/utils"
)

var Tickets = discord.SlashCommandCreate{
	Name:        "tickets",
	Description: "List the currently open lead tickets",
}

// TicketsHandler lists open lead ticket records, paginated, staff only.
func TicketsHandler(b *leaddesk.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isStaff(b, e) {
			return utils.EH.CreateErrorEmbed(e, "Only ticket staff can list open tickets.")
		}

		open := b.LeadManager.OpenTickets()
		if len(open) == 0 {
			return utils.EH.CreateSuccessEmbed(e, "No open lead tickets.")
		}

		totalPages := int(math.Ceil(float64(len(open)) / float64(config.TicketsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.TicketsPerPage
				endIdx := min(startIdx+config.TicketsPerPage, len(open))

				var description string
				for _, ticket := range open[startIdx:endIdx] {
					description += fmt.Sprintf("%s in %s · opened <t:%d:R>\n",
						utils.UserMention(ticket.UserID),
						utils.ChannelMention(ticket.ChannelID),
						ticket.OpenedAt.Unix())
				}

				embed.
					SetTitle("Open Lead Tickets").
					SetDescription(description).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(open)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

// CreateTicketComponent handles the "Create Ticket" entry button.
func CreateTicketComponent(b *leaddesk.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		topo := b.Guild.Get()
		if !topo.Provisioned() {
			return utils.EH.CreateEphemeralError(e, "The bot has not been set up yet.")
		}

		channelID, err := b.Tickets.Open(*e.GuildID(), e.User(), topo.TicketsCategory, topo.CallerRoleID, topo.StaffRoleID)
		if err != nil {
			slog.Error("Failed to open ticket",
				slog.String("user_id", e.User().ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateEphemeralError(e, "An error occurred.")
		}

		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Ticket created! Check %s.", utils.ChannelMention(channelID)))
	}
}

// ViewChannelsComponent toggles the viewer role for the clicking user.
func ViewChannelsComponent(b *leaddesk.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		topo := b.Guild.Get()
		if topo.AdminRoleID == 0 {
			return utils.EH.CreateEphemeralError(e, "Viewer role not found.")
		}

		added, err := b.Tickets.ToggleViewer(*e.GuildID(), e.User().ID, topo.AdminRoleID)
		if err != nil {
			slog.Error("Failed to toggle viewer role",
				slog.String("user_id", e.User().ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateEphemeralError(e, "An error occurred.")
		}

		if added {
			return utils.EH.CreateEphemeralSuccess(e, "Viewer role added.")
		}
		return utils.EH.CreateEphemeralSuccess(e, "Viewer role removed.")
	}
}

// TicketFormComponent resolves a ticket via the Approve/Deny buttons posted
// into the ticket channel. Channel permissions gate who can press them.
func TicketFormComponent(b *leaddesk.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		data, ok := e.Data.(discord.ButtonInteractionData)
		if !ok {
			return fmt.Errorf("invalid interaction type")
		}

		action, applicantID, channelID, err := tickets.ParseFormCustomID(data.CustomID())
		if err != nil {
			return err
		}

		if err = e.DeferUpdateMessage(); err != nil {
			return fmt.Errorf("failed to defer update: %w", err)
		}

		topo := b.Guild.Get()
		switch action {
		case "approve":
			err = b.Tickets.Approve(*e.GuildID(), applicantID, channelID, topo.CallerRoleID)
		case "deny":
			err = b.Tickets.Deny(channelID)
		default:
			err = fmt.Errorf("unknown ticket form action: %s", action)
		}

		if err != nil {
			// The channel may already be gone, so there is nowhere to
			// report this except the log.
			slog.Error("Failed to resolve ticket",
				slog.String("action", action),
				slog.String("applicant_id", applicantID.String()),
				slog.Any("error", err))
		}
		return nil
	}
}

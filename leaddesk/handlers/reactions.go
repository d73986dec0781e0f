package handlers

import (
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/leaddesk/leaddesk"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/guild"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/leads"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/utils"
)

type closeREST interface {
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
	RemoveUserReaction(channelID snowflake.ID, messageID snowflake.ID, emoji string, userID snowflake.ID, opts ...rest.RequestOpt) error
	DeleteChannel(channelID snowflake.ID, opts ...rest.RequestOpt) error
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// ReactionCloser tears down a lead ticket when its owner reacts with the
// close emoji. Non-owners get their reaction retracted and nothing else.
type ReactionCloser struct {
	client   closeREST
	manager  *leads.Manager
	registry *guild.Registry
	now      func() time.Time
}

func NewReactionCloser(client closeREST, manager *leads.Manager, registry *guild.Registry) *ReactionCloser {
	return &ReactionCloser{
		client:   client,
		manager:  manager,
		registry: registry,
		now:      time.Now,
	}
}

// Handle processes one close-emoji reaction on a registered lead message.
// Partial completion is accepted: every step is best effort once the owner
// check passes.
func (c *ReactionCloser) Handle(userID, channelID, messageID snowflake.ID) {
	ticket, ok := c.manager.Ticket(messageID)
	if !ok {
		return
	}

	if userID != ticket.UserID {
		if err := c.client.RemoveUserReaction(channelID, messageID, config.CloseEmoji, userID); err != nil {
			slog.Error("Failed to retract close reaction",
				slog.String("type", "reaction"),
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
		}
		return
	}

	if err := c.client.DeleteMessage(channelID, messageID); err != nil {
		slog.Error("Failed to delete lead message",
			slog.String("type", "reaction"),
			slog.String("message_id", messageID.String()),
			slog.Any("error", err))
		return
	}

	if _, ok = c.manager.CloseTicket(messageID); !ok {
		// Another handler got here first.
		return
	}

	if reportChannelID := c.registry.Get().ReportChannelID; reportChannelID != 0 {
		embed := discord.NewEmbedBuilder().
			SetTitle("Lead Ticket Channel Cleared").
			SetDescription(utils.UserMention(userID) + " cleared their lead ticket channel").
			SetColor(config.InfoColor).
			SetTimestamp(c.now()).
			Build()
		if _, err := c.client.CreateMessage(reportChannelID, discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		}); err != nil {
			slog.Error("Failed to post closure notice",
				slog.String("type", "reaction"),
				slog.Any("error", err))
		}
	}

	if err := c.client.DeleteChannel(ticket.ChannelID); err != nil {
		slog.Error("Failed to delete lead channel",
			slog.String("type", "reaction"),
			slog.String("channel_id", ticket.ChannelID.String()),
			slog.Any("error", err))
	}
}

// ReactionHandler wires the closer into the gateway reaction stream. The
// closer is built per event because the client does not exist yet when the
// listener is registered.
func ReactionHandler(b *leaddesk.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageReactionAdd) {
		if e.Member != nil && e.Member.User.Bot {
			return
		}
		if e.Emoji.Name == nil || *e.Emoji.Name != config.CloseEmoji {
			return
		}
		closer := NewReactionCloser(b.Client.Rest(), b.LeadManager, b.Guild)
		closer.Handle(e.UserID, e.ChannelID, e.MessageID)
	})
}

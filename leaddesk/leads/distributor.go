package leads

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
)

type distributorREST interface {
	CreateGuildChannel(guildID snowflake.ID, guildChannelCreate discord.GuildChannelCreate, opts ...rest.RequestOpt) (discord.GuildChannel, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	AddReaction(channelID snowflake.ID, messageID snowflake.ID, emoji string, opts ...rest.RequestOpt) error
}

// Distributor hands a lead batch to a requester: a private channel, one
// message listing the pool, and a close reaction registered with the manager.
type Distributor struct {
	client  distributorREST
	manager *Manager
	pool    []Lead
	now     func() time.Time
}

func NewDistributor(client distributorREST, manager *Manager, pool []Lead) *Distributor {
	return &Distributor{
		client:  client,
		manager: manager,
		pool:    pool,
		now:     time.Now,
	}
}

// Delivery describes a successful lead hand-out.
type Delivery struct {
	ChannelID snowflake.ID
	Count     int
}

// Pool returns the configured lead records.
func (d *Distributor) Pool() []Lead {
	return d.pool
}

// Deliver creates the private lead channel and posts the batch. The caller
// has already passed the cooldown gate; failures here leave the cooldown
// stamp in place.
func (d *Distributor) Deliver(guildID, categoryID, userID snowflake.ID) (*Delivery, error) {
	channelName := fmt.Sprintf("lead-ticket-%s-%d", userID, d.now().Unix())

	channel, err := d.client.CreateGuildChannel(guildID, discord.GuildTextChannelCreate{
		Name:     channelName,
		ParentID: categoryID,
		PermissionOverwrites: []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{
				RoleID: guildID, // @everyone
				Deny:   discord.PermissionViewChannel,
			},
			discord.MemberPermissionOverwrite{
				UserID: userID,
				Allow:  discord.PermissionViewChannel | discord.PermissionSendMessages,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lead channel: %w", err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Your Leads").
		SetDescription(FormatPool(d.pool)).
		SetColor(config.SuccessColor).
		Build()

	msg, err := d.client.CreateMessage(channel.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post leads: %w", err)
	}

	d.manager.RegisterTicket(msg.ID, userID, channel.ID())

	if err = d.client.AddReaction(channel.ID(), msg.ID, config.CloseEmoji); err != nil {
		// The batch is already delivered; the ticket just loses its
		// close affordance.
		slog.Error("Failed to add close reaction",
			slog.String("channel_id", channel.ID().String()),
			slog.Any("error", err))
	}

	return &Delivery{
		ChannelID: channel.ID(),
		Count:     len(d.pool),
	}, nil
}

// Package tickets drives the support-ticket lifecycle: a private channel per
// applicant with an application form, resolved by staff pressing Approve or
// Deny.
package tickets

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
)

const formRoute = "/ticket-form/"

type controllerREST interface {
	CreateGuildChannel(guildID snowflake.ID, guildChannelCreate discord.GuildChannelCreate, opts ...rest.RequestOpt) (discord.GuildChannel, error)
	DeleteChannel(channelID snowflake.ID, opts ...rest.RequestOpt) error
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	GetMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
	AddMemberRole(guildID snowflake.ID, userID snowflake.ID, roleID snowflake.ID, opts ...rest.RequestOpt) error
	RemoveMemberRole(guildID snowflake.ID, userID snowflake.ID, roleID snowflake.ID, opts ...rest.RequestOpt) error
}

type Controller struct {
	client      controllerREST
	deleteDelay time.Duration
}

func NewController(client controllerREST) *Controller {
	return &Controller{
		client:      client,
		deleteDelay: config.TicketDeleteDelay,
	}
}

// Open creates the applicant's private ticket channel and posts the
// application form with the approval buttons scoped to this applicant and
// channel.
func (c *Controller) Open(guildID snowflake.ID, applicant discord.User, categoryID, callerRoleID, staffRoleID snowflake.ID) (snowflake.ID, error) {
	channel, err := c.client.CreateGuildChannel(guildID, discord.GuildTextChannelCreate{
		Name:     fmt.Sprintf("user-%s", applicant.Username),
		ParentID: categoryID,
		PermissionOverwrites: []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{
				RoleID: guildID, // @everyone
				Deny:   discord.PermissionViewChannel,
			},
			discord.MemberPermissionOverwrite{
				UserID: applicant.ID,
				Allow:  discord.PermissionViewChannel | discord.PermissionSendMessages,
			},
			discord.RolePermissionOverwrite{
				RoleID: callerRoleID,
				Deny:   discord.PermissionViewChannel,
			},
			discord.RolePermissionOverwrite{
				RoleID: staffRoleID,
				Allow:  discord.PermissionViewChannel | discord.PermissionSendMessages,
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create ticket channel: %w", err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Application").
		SetDescription("1. Enter your name\n2. Can you work from 8am PST to 4pm PST?\n3. Submit a link to a video or voice message of you speaking english").
		SetColor(config.InfoColor).
		Build()

	_, err = c.client.CreateMessage(channel.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{embed},
		Components: []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewSuccessButton("✓ Approve", FormCustomID("approve", applicant.ID, channel.ID())),
				discord.NewDangerButton("✗ Deny", FormCustomID("deny", applicant.ID, channel.ID())),
			),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to post application form: %w", err)
	}

	return channel.ID(), nil
}

// Approve grants the applicant the caller role and removes the ticket
// channel after the fixed delay.
func (c *Controller) Approve(guildID, applicantID, channelID, callerRoleID snowflake.ID) error {
	if callerRoleID != 0 {
		if err := c.client.AddMemberRole(guildID, applicantID, callerRoleID); err != nil {
			return fmt.Errorf("failed to grant caller role: %w", err)
		}
	}
	return c.closeChannel(channelID)
}

// Deny removes the ticket channel after the fixed delay. No role change.
func (c *Controller) Deny(channelID snowflake.ID) error {
	return c.closeChannel(channelID)
}

func (c *Controller) closeChannel(channelID snowflake.ID) error {
	time.Sleep(c.deleteDelay)
	if err := c.client.DeleteChannel(channelID); err != nil {
		return fmt.Errorf("failed to delete ticket channel: %w", err)
	}
	return nil
}

// ToggleViewer flips the user's membership in the viewer role. Reports
// whether the role was added.
func (c *Controller) ToggleViewer(guildID, userID, viewerRoleID snowflake.ID) (bool, error) {
	member, err := c.client.GetMember(guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch member: %w", err)
	}

	if slices.Contains(member.RoleIDs, viewerRoleID) {
		if err = c.client.RemoveMemberRole(guildID, userID, viewerRoleID); err != nil {
			return false, fmt.Errorf("failed to remove viewer role: %w", err)
		}
		return false, nil
	}

	if err = c.client.AddMemberRole(guildID, userID, viewerRoleID); err != nil {
		return false, fmt.Errorf("failed to add viewer role: %w", err)
	}
	return true, nil
}

// FormCustomID builds the component id carrying the (applicant, channel)
// pair for the approval buttons.
func FormCustomID(action string, applicantID, channelID snowflake.ID) string {
	return fmt.Sprintf("%s%s:%s:%s", formRoute, action, applicantID, channelID)
}

// ParseFormCustomID is the inverse of FormCustomID.
func ParseFormCustomID(customID string) (action string, applicantID, channelID snowflake.ID, err error) {
	parts := strings.Split(strings.TrimPrefix(customID, formRoute), ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed ticket form id: %s", customID)
	}
	applicantID, err = snowflake.Parse(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed applicant id: %w", err)
	}
	channelID, err = snowflake.Parse(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed channel id: %w", err)
	}
	return parts[0], applicantID, channelID, nil
}

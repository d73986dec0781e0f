package services

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/guild"
)

type provisionREST interface {
	GetRoles(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.Role, error)
	CreateRole(guildID snowflake.ID, createRole discord.RoleCreate, opts ...rest.RequestOpt) (*discord.Role, error)
	DeleteRole(guildID snowflake.ID, roleID snowflake.ID, opts ...rest.RequestOpt) error
	GetGuildChannels(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.GuildChannel, error)
	CreateGuildChannel(guildID snowflake.ID, guildChannelCreate discord.GuildChannelCreate, opts ...rest.RequestOpt) (discord.GuildChannel, error)
	DeleteChannel(channelID snowflake.ID, opts ...rest.RequestOpt) error
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Provisioner (re)creates the bot's roles, category and channels. Existing
// resources with the same name are deleted first, so setup always converges
// on a clean layout. Any failure aborts mid-way; no rollback.
type Provisioner struct {
	client   provisionREST
	registry *guild.Registry
	names    guild.Names
}

func NewProvisioner(client provisionREST, registry *guild.Registry, names guild.Names) *Provisioner {
	return &Provisioner{
		client:   client,
		registry: registry,
		names:    names,
	}
}

// Provision rebuilds everything and posts the two persistent entry messages.
// The admin role is looked up, never touched.
func (p *Provisioner) Provision(guildID snowflake.ID) error {
	staffRole, err := p.recreateRole(guildID, p.names.StaffRole, config.StaffRoleColor)
	if err != nil {
		return err
	}
	callerRole, err := p.recreateRole(guildID, p.names.CallerRole, config.CallerRoleColor)
	if err != nil {
		return err
	}

	channels, err := p.client.GetGuildChannels(guildID)
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	if err = p.deleteNamed(channels, p.names.TicketsCategory, p.names.EntryChannel, p.names.LeadsChannel, p.names.ReportChannel); err != nil {
		return err
	}

	category, err := p.client.CreateGuildChannel(guildID, discord.GuildCategoryChannelCreate{
		Name: p.names.TicketsCategory,
	})
	if err != nil {
		return fmt.Errorf("failed to create category %q: %w", p.names.TicketsCategory, err)
	}
	slog.Info("Created category", slog.String("type", "sys"), slog.String("name", p.names.TicketsCategory))

	entry, err := p.client.CreateGuildChannel(guildID, discord.GuildTextChannelCreate{
		Name: p.names.EntryChannel,
		PermissionOverwrites: []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{
				RoleID: guildID, // @everyone
				Allow:  discord.PermissionViewChannel,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create channel %q: %w", p.names.EntryChannel, err)
	}
	slog.Info("Created channel", slog.String("type", "sys"), slog.String("name", p.names.EntryChannel))

	leadsChannel, err := p.client.CreateGuildChannel(guildID, discord.GuildTextChannelCreate{
		Name: p.names.LeadsChannel,
		PermissionOverwrites: []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{
				RoleID: guildID,
				Deny:   discord.PermissionViewChannel,
			},
			discord.RolePermissionOverwrite{
				RoleID: callerRole.ID,
				Allow:  discord.PermissionViewChannel,
				Deny:   discord.PermissionSendMessages,
			},
			discord.RolePermissionOverwrite{
				RoleID: staffRole.ID,
				Allow:  discord.PermissionViewChannel | discord.PermissionSendMessages,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create channel %q: %w", p.names.LeadsChannel, err)
	}
	slog.Info("Created channel", slog.String("type", "sys"), slog.String("name", p.names.LeadsChannel))

	report, err := p.client.CreateGuildChannel(guildID, discord.GuildTextChannelCreate{
		Name: p.names.ReportChannel,
		PermissionOverwrites: []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{
				RoleID: guildID,
				Deny:   discord.PermissionViewChannel,
			},
			discord.RolePermissionOverwrite{
				RoleID: staffRole.ID,
				Allow:  discord.PermissionViewChannel | discord.PermissionSendMessages,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create channel %q: %w", p.names.ReportChannel, err)
	}
	slog.Info("Created channel", slog.String("type", "sys"), slog.String("name", p.names.ReportChannel))

	topo := p.registry.Get()
	topo.StaffRoleID = staffRole.ID
	topo.CallerRoleID = callerRole.ID
	topo.TicketsCategory = category.ID()
	topo.EntryChannelID = entry.ID()
	topo.LeadsChannelID = leadsChannel.ID()
	topo.ReportChannelID = report.ID()
	p.registry.Set(topo)

	if err = p.PostEntryMessage(entry.ID()); err != nil {
		return err
	}
	if err = p.PostLeadsMessage(leadsChannel.ID()); err != nil {
		return err
	}

	return nil
}

func (p *Provisioner) recreateRole(guildID snowflake.ID, name string, color int) (*discord.Role, error) {
	roles, err := p.client.GetRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	for _, role := range roles {
		if role.Name == name {
			if err = p.client.DeleteRole(guildID, role.ID); err != nil {
				return nil, fmt.Errorf("failed to delete role %q: %w", name, err)
			}
		}
	}

	role, err := p.client.CreateRole(guildID, discord.RoleCreate{
		Name:  name,
		Color: color,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create role %q: %w", name, err)
	}
	slog.Info("Created role", slog.String("type", "sys"), slog.String("name", name))
	return role, nil
}

func (p *Provisioner) deleteNamed(channels []discord.GuildChannel, names ...string) error {
	for _, ch := range channels {
		for _, name := range names {
			if ch.Name() == name {
				if err := p.client.DeleteChannel(ch.ID()); err != nil {
					return fmt.Errorf("failed to delete channel %q: %w", name, err)
				}
			}
		}
	}
	return nil
}

// PostEntryMessage posts the persistent ticket-creation message.
func (p *Provisioner) PostEntryMessage(channelID snowflake.ID) error {
	embed := discord.NewEmbedBuilder().
		SetTitle("Create a Support Ticket").
		SetDescription("Click the button below to create a support ticket.").
		SetColor(config.InfoColor).
		Build()

	_, err := p.client.CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
		Components: []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewPrimaryButton("Create Ticket", "/entry/create-ticket"),
				discord.NewSecondaryButton("View Channels", "/entry/view-channels"),
			),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to post entry message: %w", err)
	}
	return nil
}

// PostLeadsMessage posts the persistent lead-request message.
func (p *Provisioner) PostLeadsMessage(channelID snowflake.ID) error {
	embed := discord.NewEmbedBuilder().
		SetTitle("Get Leads").
		SetDescription("Click the button below to receive leads.").
		SetColor(config.SuccessColor).
		Build()

	_, err := p.client.CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
		Components: []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewSuccessButton("Get Leads", "/leads/request"),
			),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to post leads message: %w", err)
	}
	return nil
}

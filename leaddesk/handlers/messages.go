package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/leaddesk/leaddesk"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/guild"
)

type setupREST interface {
	GetRoles(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.Role, error)
	GetMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

type setupProvisioner interface {
	Provision(guildID snowflake.ID) error
	PostEntryMessage(channelID snowflake.ID) error
	PostLeadsMessage(channelID snowflake.ID) error
}

// SetupFlow runs the prefix commands. Its dependencies are narrow so the
// authorization and password gates run without a gateway.
type SetupFlow struct {
	client        setupREST
	provisioner   setupProvisioner
	registry      *guild.Registry
	confirmations *Confirmations

	guildCfg leaddesk.GuildConfig
	setupCfg leaddesk.SetupConfig
}

// MessageHandler dispatches the prefix commands (setup, init_entry,
// init_leads) and feeds password replies into pending setup prompts.
func MessageHandler(b *leaddesk.Bot) bot.EventListener {
	confirmations := NewConfirmations()

	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.Message.Author.Bot || e.GuildID == nil {
			return
		}

		content := strings.TrimSpace(e.Message.Content)

		if confirmations.Deliver(e.Message.Author.ID, e.ChannelID, content) {
			return
		}

		prefix := b.Cfg.Setup.Prefix
		if !strings.HasPrefix(content, prefix) {
			return
		}
		fields := strings.Fields(strings.TrimPrefix(content, prefix))
		if len(fields) == 0 {
			return
		}

		// Built per event because the client does not exist yet when the
		// listener is registered.
		flow := &SetupFlow{
			client:        b.Client.Rest(),
			provisioner:   b.Provisioner,
			registry:      b.Guild,
			confirmations: confirmations,
			guildCfg:      b.Cfg.Guild,
			setupCfg:      b.Cfg.Setup,
		}

		guildID := *e.GuildID
		author := e.Message.Author

		// The setup flow blocks on the password prompt, so every command
		// runs off the gateway dispatch goroutine.
		switch fields[0] {
		case "setup":
			go flow.runSetup(guildID, e.ChannelID, author)
		case "init_entry":
			go flow.runInitEntry(guildID, e.ChannelID, author)
		case "init_leads":
			go flow.runInitLeads(guildID, e.ChannelID, author)
		}
	})
}

func (f *SetupFlow) runSetup(guildID, channelID snowflake.ID, author discord.User) {
	start := time.Now()

	ok, err := f.hasNamedRole(guildID, author.ID, f.guildCfg.AdminRole)
	if err != nil {
		slog.Error("Setup authorization check failed", slog.Any("error", err))
		f.reply(channelID, "⚠ Error during setup: could not verify your roles.")
		return
	}
	if !ok {
		f.reply(channelID, fmt.Sprintf("Only users with the %s role can run this command.", f.guildCfg.AdminRole))
		return
	}

	f.reply(channelID, "Enter the password to confirm setup:")

	timeout := time.Duration(f.setupCfg.TimeoutSeconds) * time.Second
	password, err := f.confirmations.Await(author.ID, channelID, timeout)
	if err != nil {
		if errors.Is(err, ErrConfirmTimeout) {
			f.reply(channelID, "⏱ Setup confirmation timed out.")
		}
		return
	}
	if password != f.setupCfg.Password {
		f.reply(channelID, "❌ Incorrect password.")
		return
	}

	f.reply(channelID, "⏳ Creating roles and channels...")

	if err = f.provisioner.Provision(guildID); err != nil {
		slog.Error("Setup failed",
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err))
		f.reply(channelID, fmt.Sprintf("⚠ Error during setup: %v", err))
		return
	}

	slog.Info("Setup completed",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID.String()),
		slog.Duration("took", time.Since(start)))

	f.reply(channelID, fmt.Sprintf(
		"✓ Setup complete!\nRoles created: %s, %s\nChannels created: %s, %s, %s\nCategory created: %s",
		f.guildCfg.StaffRole, f.guildCfg.CallerRole,
		f.guildCfg.EntryChannel, f.guildCfg.LeadsChannel, f.guildCfg.ReportChannel,
		f.guildCfg.TicketsCategory))
}

func (f *SetupFlow) runInitEntry(guildID, channelID snowflake.ID, author discord.User) {
	if !f.requireAdministrator(guildID, channelID, author) {
		return
	}

	topo := f.registry.Get()
	if topo.EntryChannelID == 0 {
		f.reply(channelID, fmt.Sprintf("Run %ssetup first.", f.setupCfg.Prefix))
		return
	}

	if err := f.provisioner.PostEntryMessage(topo.EntryChannelID); err != nil {
		slog.Error("Failed to post entry message", slog.Any("error", err))
		f.reply(channelID, "⚠ Failed to send the entry message.")
		return
	}
	f.reply(channelID, "✓ Entry message sent.")
}

func (f *SetupFlow) runInitLeads(guildID, channelID snowflake.ID, author discord.User) {
	if !f.requireAdministrator(guildID, channelID, author) {
		return
	}

	topo := f.registry.Get()
	if topo.LeadsChannelID == 0 {
		f.reply(channelID, fmt.Sprintf("Run %ssetup first.", f.setupCfg.Prefix))
		return
	}

	if err := f.provisioner.PostLeadsMessage(topo.LeadsChannelID); err != nil {
		slog.Error("Failed to post leads message", slog.Any("error", err))
		f.reply(channelID, "⚠ Failed to send the leads message.")
		return
	}
	f.reply(channelID, "✓ Leads message sent.")
}

func (f *SetupFlow) requireAdministrator(guildID, channelID snowflake.ID, author discord.User) bool {
	ok, err := f.isAdministrator(guildID, author.ID)
	if err != nil {
		slog.Error("Administrator check failed", slog.Any("error", err))
		f.reply(channelID, "⚠ Could not verify your permissions.")
		return false
	}
	if !ok {
		f.reply(channelID, "Only administrators can run this command.")
		return false
	}
	return true
}

// hasNamedRole reports whether the member holds the role with the given
// name. The admin role is configured by name, never created by the bot.
func (f *SetupFlow) hasNamedRole(guildID, userID snowflake.ID, roleName string) (bool, error) {
	roles, err := f.client.GetRoles(guildID)
	if err != nil {
		return false, err
	}
	var roleID snowflake.ID
	for _, role := range roles {
		if role.Name == roleName {
			roleID = role.ID
			break
		}
	}
	if roleID == 0 {
		return false, nil
	}

	member, err := f.client.GetMember(guildID, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(member.RoleIDs, roleID), nil
}

func (f *SetupFlow) isAdministrator(guildID, userID snowflake.ID) (bool, error) {
	roles, err := f.client.GetRoles(guildID)
	if err != nil {
		return false, err
	}
	member, err := f.client.GetMember(guildID, userID)
	if err != nil {
		return false, err
	}

	for _, role := range roles {
		if slices.Contains(member.RoleIDs, role.ID) && role.Permissions.Has(discord.PermissionAdministrator) {
			return true, nil
		}
	}
	return false, nil
}

func (f *SetupFlow) reply(channelID snowflake.ID, content string) {
	if _, err := f.client.CreateMessage(channelID, discord.MessageCreate{Content: content}); err != nil {
		slog.Error("Failed to send reply",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}

package leaddesk

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/guild"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/leads"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/services"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/tickets"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Guild:     guild.NewRegistry(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string

	Guild       *guild.Registry
	LeadManager *leads.Manager
	Distributor *leads.Distributor
	Tickets     *tickets.Controller
	Reporter    *services.ReportService
	Provisioner *services.Provisioner
}

// GuildNames maps the configured role/channel names into the registry's
// lookup set.
func (b *Bot) GuildNames() guild.Names {
	return guild.Names{
		AdminRole:       b.Cfg.Guild.AdminRole,
		StaffRole:       b.Cfg.Guild.StaffRole,
		CallerRole:      b.Cfg.Guild.CallerRole,
		EntryChannel:    b.Cfg.Guild.EntryChannel,
		LeadsChannel:    b.Cfg.Guild.LeadsChannel,
		ReportChannel:   b.Cfg.Guild.ReportChannel,
		TicketsCategory: b.Cfg.Guild.TicketsCategory,
	}
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentMessageContent,
			gateway.IntentGuildMessageReactions,
			gateway.IntentGuildMembers,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("LeadDesk bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the entry channel"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}

// OnGuildReady rebuilds the topology from whatever a previous run left in
// the guild, so prefix commands and the daily report work across restarts.
func (b *Bot) OnGuildReady(e *events.GuildReady) {
	if b.Cfg.Guild.ID != 0 && e.Guild.ID != b.Cfg.Guild.ID {
		return
	}
	if err := b.Guild.Resolve(b.Client.Rest(), e.Guild.ID, b.GuildNames()); err != nil {
		slog.Error("Failed to resolve guild topology",
			slog.String("guild_id", e.Guild.ID.String()),
			slog.Any("error", err))
	}
}

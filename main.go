package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/joho/godotenv"

	"github.com/ellavondegurechaff/leaddesk/leaddesk"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/commands"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/handlers"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/leads"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/logger"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/services"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/tickets"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Initialize custom logger
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting LeadDesk Discord Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on process environment")
	}

	cfg, err := leaddesk.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	customHandler.SetLevel(cfg.Log.Level)
	slog.Info("Configuration loaded successfully",
		slog.Int("lead_pool_size", len(cfg.Leads.Pool)),
		slog.Int("cooldown_minutes", cfg.Leads.CooldownMinutes))

	b := leaddesk.New(*cfg, version, commit)

	h := handler.New()

	// Slash commands
	h.Command("/version", commands.VersionHandler(b))
	h.Command("/tickets", handlers.WrapWithLogging("tickets", commands.TicketsHandler(b)))
	h.Command("/leads", handlers.WrapWithLogging("leads", commands.LeadsHandler(b)))
	h.Command("/report", handlers.WrapWithLogging("report", commands.ReportHandler(b)))

	// Persistent message buttons
	h.Component("/entry/create-ticket", handlers.WrapComponentWithLogging("create-ticket", commands.CreateTicketComponent(b)))
	h.Component("/entry/view-channels", handlers.WrapComponentWithLogging("view-channels", commands.ViewChannelsComponent(b)))
	h.Component("/leads/request", handlers.WrapComponentWithLogging("request-leads", commands.RequestLeadsComponent(b)))
	h.Component("/ticket-form/", handlers.WrapComponentWithLogging("ticket-form", commands.TicketFormComponent(b)))

	if err = b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		bot.NewListenerFunc(b.OnGuildReady),
		handlers.MessageHandler(b),
		handlers.ReactionHandler(b),
	); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
		)
		os.Exit(-1)
	}

	rest := b.Client.Rest()
	b.LeadManager = leads.NewManager(time.Duration(cfg.Leads.CooldownMinutes) * time.Minute)
	b.Distributor = leads.NewDistributor(rest, b.LeadManager, cfg.Leads.Pool)
	b.Tickets = tickets.NewController(rest)
	b.Provisioner = services.NewProvisioner(rest, b.Guild, b.GuildNames())
	b.Reporter = services.NewReportService(rest, b.LeadManager, b.Guild, cfg.Report.Hour, cfg.Report.Minute)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
			)
		}
	}

	reportCtx, stopReporter := context.WithCancel(context.Background())
	defer stopReporter()
	b.Reporter.Start(reportCtx)

	ctx, cancel := context.WithTimeout(context.Background(), config.GatewayOpenTimeout)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}

package leaddesk

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/leads"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, err
	}

	// The token lives in the process environment; the config value is a
	// fallback for local development only.
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Guild: GuildConfig{
			AdminRole:       "*",
			StaffRole:       "ticket_staff",
			CallerRole:      "caller",
			EntryChannel:    "entry",
			LeadsChannel:    "leads",
			ReportChannel:   "daily_report",
			TicketsCategory: "tickets",
		},
		Leads: LeadsConfig{
			CooldownMinutes: 0,
		},
		Report: ReportConfig{
			Hour:   23,
			Minute: 59,
		},
		Setup: SetupConfig{
			Prefix:         "!",
			Password:       "confirmsetup",
			TimeoutSeconds: 30,
		},
	}
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	Bot    BotConfig    `toml:"bot"`
	Guild  GuildConfig  `toml:"guild"`
	Leads  LeadsConfig  `toml:"leads"`
	Report ReportConfig `toml:"report"`
	Setup  SetupConfig  `toml:"setup"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

// LogConfig holds the minimum level; the handler's format is fixed.
type LogConfig struct {
	Level slog.Level `toml:"level"`
}

// GuildConfig names the roles and channels the bot operates on. Setup
// recreates everything except the admin role, which is only looked up.
type GuildConfig struct {
	// ID restricts the bot to one guild. Zero means the first guild the
	// gateway reports.
	ID snowflake.ID `toml:"id"`

	AdminRole       string `toml:"admin_role"`
	StaffRole       string `toml:"staff_role"`
	CallerRole      string `toml:"caller_role"`
	EntryChannel    string `toml:"entry_channel"`
	LeadsChannel    string `toml:"leads_channel"`
	ReportChannel   string `toml:"report_channel"`
	TicketsCategory string `toml:"tickets_category"`
}

type LeadsConfig struct {
	// CooldownMinutes of 0 disables the cooldown entirely.
	CooldownMinutes int          `toml:"cooldown_minutes"`
	Pool            []leads.Lead `toml:"pool"`
}

// ReportConfig is the local wall-clock time the daily summary fires at.
type ReportConfig struct {
	Hour   int `toml:"hour"`
	Minute int `toml:"minute"`
}

type SetupConfig struct {
	Prefix         string `toml:"prefix"`
	Password       string `toml:"password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

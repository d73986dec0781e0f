// Package guild tracks the ids of the roles and channels the bot operates
// on inside its single guild. Setup fills the registry after provisioning;
// on startup the registry is rebuilt by name lookup so a restarted bot keeps
// working against resources created by an earlier run.
package guild

import (
	"log/slog"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// Names holds the configured role/channel names the registry resolves.
type Names struct {
	AdminRole       string
	StaffRole       string
	CallerRole      string
	EntryChannel    string
	LeadsChannel    string
	ReportChannel   string
	TicketsCategory string
}

// Topology is the resolved id set. Zero ids mean the resource is unknown.
type Topology struct {
	AdminRoleID     snowflake.ID
	StaffRoleID     snowflake.ID
	CallerRoleID    snowflake.ID
	TicketsCategory snowflake.ID
	EntryChannelID  snowflake.ID
	LeadsChannelID  snowflake.ID
	ReportChannelID snowflake.ID
}

// Provisioned reports whether every resource setup creates is known.
func (t Topology) Provisioned() bool {
	return t.StaffRoleID != 0 &&
		t.CallerRoleID != 0 &&
		t.TicketsCategory != 0 &&
		t.EntryChannelID != 0 &&
		t.LeadsChannelID != 0 &&
		t.ReportChannelID != 0
}

// Registry is the shared, concurrency-safe holder for the current topology.
type Registry struct {
	mu   sync.RWMutex
	topo Topology
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Get() Topology {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topo
}

func (r *Registry) Set(topo Topology) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topo = topo
}

type lookupREST interface {
	GetRoles(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.Role, error)
	GetGuildChannels(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.GuildChannel, error)
}

// Resolve rebuilds the topology by matching configured names against the
// guild's current roles and channels. Missing resources stay zero; the
// caller decides whether that matters.
func (r *Registry) Resolve(client lookupREST, guildID snowflake.ID, names Names) error {
	roles, err := client.GetRoles(guildID)
	if err != nil {
		return err
	}
	channels, err := client.GetGuildChannels(guildID)
	if err != nil {
		return err
	}

	var topo Topology
	for _, role := range roles {
		switch role.Name {
		case names.AdminRole:
			topo.AdminRoleID = role.ID
		case names.StaffRole:
			topo.StaffRoleID = role.ID
		case names.CallerRole:
			topo.CallerRoleID = role.ID
		}
	}
	for _, ch := range channels {
		switch {
		case ch.Type() == discord.ChannelTypeGuildCategory && ch.Name() == names.TicketsCategory:
			topo.TicketsCategory = ch.ID()
		case ch.Type() != discord.ChannelTypeGuildText:
			continue
		case ch.Name() == names.EntryChannel:
			topo.EntryChannelID = ch.ID()
		case ch.Name() == names.LeadsChannel:
			topo.LeadsChannelID = ch.ID()
		case ch.Name() == names.ReportChannel:
			topo.ReportChannelID = ch.ID()
		}
	}

	r.Set(topo)
	slog.Info("Guild topology resolved",
		slog.String("type", "sys"),
		slog.Bool("provisioned", topo.Provisioned()))
	return nil
}

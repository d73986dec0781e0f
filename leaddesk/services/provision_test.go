package services

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/guild"
)

func guildChannel(t *testing.T, id snowflake.ID, name string, channelType discord.ChannelType) discord.GuildChannel {
	t.Helper()
	raw := fmt.Sprintf(`{"id":"%s","type":%d,"name":"%s"}`, id, channelType, name)
	if channelType == discord.ChannelTypeGuildCategory {
		var ch discord.GuildCategoryChannel
		if err := json.Unmarshal([]byte(raw), &ch); err != nil {
			t.Fatalf("failed to build test category: %v", err)
		}
		return ch
	}
	var ch discord.GuildTextChannel
	if err := json.Unmarshal([]byte(raw), &ch); err != nil {
		t.Fatalf("failed to build test channel: %v", err)
	}
	return ch
}

type fakeProvisionREST struct {
	t *testing.T

	existingRoles    []discord.Role
	existingChannels []discord.GuildChannel

	deletedRoles    []snowflake.ID
	deletedChannels []snowflake.ID
	createdRoles    []discord.RoleCreate
	channelCreates  []discord.GuildChannelCreate
	messages        map[snowflake.ID][]discord.MessageCreate

	nextID snowflake.ID
}

func (f *fakeProvisionREST) next() snowflake.ID {
	f.nextID++
	return f.nextID
}

func (f *fakeProvisionREST) GetRoles(snowflake.ID, ...rest.RequestOpt) ([]discord.Role, error) {
	return f.existingRoles, nil
}

func (f *fakeProvisionREST) CreateRole(_ snowflake.ID, create discord.RoleCreate, _ ...rest.RequestOpt) (*discord.Role, error) {
	f.createdRoles = append(f.createdRoles, create)
	return &discord.Role{ID: f.next(), Name: create.Name, Color: create.Color}, nil
}

func (f *fakeProvisionREST) DeleteRole(_ snowflake.ID, roleID snowflake.ID, _ ...rest.RequestOpt) error {
	f.deletedRoles = append(f.deletedRoles, roleID)
	return nil
}

func (f *fakeProvisionREST) DeleteChannel(channelID snowflake.ID, _ ...rest.RequestOpt) error {
	f.deletedChannels = append(f.deletedChannels, channelID)
	return nil
}

func (f *fakeProvisionREST) GetGuildChannels(snowflake.ID, ...rest.RequestOpt) ([]discord.GuildChannel, error) {
	return f.existingChannels, nil
}

func (f *fakeProvisionREST) CreateGuildChannel(_ snowflake.ID, create discord.GuildChannelCreate, _ ...rest.RequestOpt) (discord.GuildChannel, error) {
	f.channelCreates = append(f.channelCreates, create)
	switch c := create.(type) {
	case discord.GuildCategoryChannelCreate:
		return guildChannel(f.t, f.next(), c.Name, discord.ChannelTypeGuildCategory), nil
	case discord.GuildTextChannelCreate:
		return guildChannel(f.t, f.next(), c.Name, discord.ChannelTypeGuildText), nil
	default:
		f.t.Fatalf("unexpected channel create %T", create)
		return nil, nil
	}
}

func (f *fakeProvisionREST) CreateMessage(channelID snowflake.ID, create discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	if f.messages == nil {
		f.messages = make(map[snowflake.ID][]discord.MessageCreate)
	}
	f.messages[channelID] = append(f.messages[channelID], create)
	return &discord.Message{ID: f.next(), ChannelID: channelID}, nil
}

var testNames = guild.Names{
	AdminRole:       "*",
	StaffRole:       "ticket_staff",
	CallerRole:      "caller",
	EntryChannel:    "entry",
	LeadsChannel:    "leads",
	ReportChannel:   "daily_report",
	TicketsCategory: "tickets",
}

func TestProvisioner_Provision(t *testing.T) {
	const guildID snowflake.ID = 1

	client := &fakeProvisionREST{
		t:      t,
		nextID: 1000,
		existingRoles: []discord.Role{
			{ID: 2, Name: "ticket_staff"},
			{ID: 3, Name: "unrelated"},
		},
		existingChannels: []discord.GuildChannel{
			guildChannel(t, 4, "entry", discord.ChannelTypeGuildText),
			guildChannel(t, 5, "general", discord.ChannelTypeGuildText),
		},
	}
	registry := guild.NewRegistry()
	p := NewProvisioner(client, registry, testNames)

	if err := p.Provision(guildID); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	// Stale resources with configured names go first.
	if !reflect.DeepEqual(client.deletedRoles, []snowflake.ID{2}) {
		t.Errorf("deleted roles = %v, want [2]", client.deletedRoles)
	}
	if !reflect.DeepEqual(client.deletedChannels, []snowflake.ID{4}) {
		t.Errorf("deleted channels = %v, want [4]", client.deletedChannels)
	}

	if len(client.createdRoles) != 2 {
		t.Fatalf("created %d roles, want 2", len(client.createdRoles))
	}
	if client.createdRoles[0].Name != "ticket_staff" || client.createdRoles[1].Name != "caller" {
		t.Errorf("created roles = %v, want ticket_staff then caller", client.createdRoles)
	}

	if len(client.channelCreates) != 4 {
		t.Fatalf("created %d channels, want 4", len(client.channelCreates))
	}
	if _, ok := client.channelCreates[0].(discord.GuildCategoryChannelCreate); !ok {
		t.Errorf("first channel create = %T, want the category", client.channelCreates[0])
	}

	topo := registry.Get()
	if !topo.Provisioned() {
		t.Errorf("topology not provisioned after setup: %+v", topo)
	}

	entry := client.channelCreates[1].(discord.GuildTextChannelCreate)
	wantEntry := []discord.PermissionOverwrite{
		discord.RolePermissionOverwrite{RoleID: guildID, Allow: discord.PermissionViewChannel},
	}
	if !reflect.DeepEqual(entry.PermissionOverwrites, wantEntry) {
		t.Errorf("entry overwrites = %v, want %v", entry.PermissionOverwrites, wantEntry)
	}

	leadsChannel := client.channelCreates[2].(discord.GuildTextChannelCreate)
	wantLeads := []discord.PermissionOverwrite{
		discord.RolePermissionOverwrite{RoleID: guildID, Deny: discord.PermissionViewChannel},
		discord.RolePermissionOverwrite{RoleID: topo.CallerRoleID, Allow: discord.PermissionViewChannel, Deny: discord.PermissionSendMessages},
		discord.RolePermissionOverwrite{RoleID: topo.StaffRoleID, Allow: discord.PermissionViewChannel | discord.PermissionSendMessages},
	}
	if !reflect.DeepEqual(leadsChannel.PermissionOverwrites, wantLeads) {
		t.Errorf("leads overwrites = %v, want %v", leadsChannel.PermissionOverwrites, wantLeads)
	}

	report := client.channelCreates[3].(discord.GuildTextChannelCreate)
	wantReport := []discord.PermissionOverwrite{
		discord.RolePermissionOverwrite{RoleID: guildID, Deny: discord.PermissionViewChannel},
		discord.RolePermissionOverwrite{RoleID: topo.StaffRoleID, Allow: discord.PermissionViewChannel | discord.PermissionSendMessages},
	}
	if !reflect.DeepEqual(report.PermissionOverwrites, wantReport) {
		t.Errorf("report overwrites = %v, want %v", report.PermissionOverwrites, wantReport)
	}

	// The persistent button messages land in entry and leads.
	if got := len(client.messages[topo.EntryChannelID]); got != 1 {
		t.Errorf("entry channel got %d messages, want 1", got)
	}
	if got := len(client.messages[topo.LeadsChannelID]); got != 1 {
		t.Errorf("leads channel got %d messages, want 1", got)
	}
	if got := len(client.messages[topo.ReportChannelID]); got != 0 {
		t.Errorf("report channel got %d messages, want 0", got)
	}
}

func TestProvisioner_PostEntryMessage(t *testing.T) {
	client := &fakeProvisionREST{t: t}
	p := NewProvisioner(client, guild.NewRegistry(), testNames)

	if err := p.PostEntryMessage(9); err != nil {
		t.Fatalf("PostEntryMessage() error = %v", err)
	}

	msg := client.messages[9][0]
	row, ok := msg.Components[0].(discord.ActionRowComponent)
	if !ok {
		t.Fatalf("component = %T, want ActionRowComponent", msg.Components[0])
	}
	buttons := row.Components()
	if len(buttons) != 2 {
		t.Fatalf("entry message has %d buttons, want 2", len(buttons))
	}
	create := buttons[0].(discord.ButtonComponent)
	if create.CustomID != "/entry/create-ticket" {
		t.Errorf("create button id = %q, want /entry/create-ticket", create.CustomID)
	}
	view := buttons[1].(discord.ButtonComponent)
	if view.CustomID != "/entry/view-channels" {
		t.Errorf("view button id = %q, want /entry/view-channels", view.CustomID)
	}
}

func TestProvisioner_PostLeadsMessage(t *testing.T) {
	client := &fakeProvisionREST{t: t}
	p := NewProvisioner(client, guild.NewRegistry(), testNames)

	if err := p.PostLeadsMessage(9); err != nil {
		t.Fatalf("PostLeadsMessage() error = %v", err)
	}

	row := client.messages[9][0].Components[0].(discord.ActionRowComponent)
	button := row.Components()[0].(discord.ButtonComponent)
	if button.CustomID != "/leads/request" {
		t.Errorf("leads button id = %q, want /leads/request", button.CustomID)
	}
}

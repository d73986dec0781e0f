package tickets

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

func textChannel(t *testing.T, id snowflake.ID, name string) discord.GuildChannel {
	t.Helper()
	var ch discord.GuildTextChannel
	raw := fmt.Sprintf(`{"id":"%s","type":0,"name":"%s"}`, id, name)
	if err := json.Unmarshal([]byte(raw), &ch); err != nil {
		t.Fatalf("failed to build test channel: %v", err)
	}
	return ch
}

type fakeControllerREST struct {
	t *testing.T

	channelCreates  []discord.GuildChannelCreate
	messages        []discord.MessageCreate
	deletedChannels []snowflake.ID
	addedRoles      []snowflake.ID
	removedRoles    []snowflake.ID

	member    *discord.Member
	channelID snowflake.ID
}

func (f *fakeControllerREST) CreateGuildChannel(_ snowflake.ID, create discord.GuildChannelCreate, _ ...rest.RequestOpt) (discord.GuildChannel, error) {
	f.channelCreates = append(f.channelCreates, create)
	return textChannel(f.t, f.channelID, ""), nil
}

func (f *fakeControllerREST) DeleteChannel(channelID snowflake.ID, _ ...rest.RequestOpt) error {
	f.deletedChannels = append(f.deletedChannels, channelID)
	return nil
}

func (f *fakeControllerREST) CreateMessage(_ snowflake.ID, create discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.messages = append(f.messages, create)
	return &discord.Message{ID: 1}, nil
}

func (f *fakeControllerREST) GetMember(_ snowflake.ID, _ snowflake.ID, _ ...rest.RequestOpt) (*discord.Member, error) {
	return f.member, nil
}

func (f *fakeControllerREST) AddMemberRole(_ snowflake.ID, _ snowflake.ID, roleID snowflake.ID, _ ...rest.RequestOpt) error {
	f.addedRoles = append(f.addedRoles, roleID)
	return nil
}

func (f *fakeControllerREST) RemoveMemberRole(_ snowflake.ID, _ snowflake.ID, roleID snowflake.ID, _ ...rest.RequestOpt) error {
	f.removedRoles = append(f.removedRoles, roleID)
	return nil
}

func TestController_Open(t *testing.T) {
	const (
		guildID      snowflake.ID = 10
		categoryID   snowflake.ID = 20
		callerRoleID snowflake.ID = 30
		staffRoleID  snowflake.ID = 40
	)
	applicant := discord.User{ID: 50, Username: "alice"}

	client := &fakeControllerREST{t: t, channelID: 77}
	c := &Controller{client: client}

	channelID, err := c.Open(guildID, applicant, categoryID, callerRoleID, staffRoleID)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if channelID != 77 {
		t.Errorf("Open() channelID = %s, want 77", channelID)
	}

	create, ok := client.channelCreates[0].(discord.GuildTextChannelCreate)
	if !ok {
		t.Fatalf("channel create = %T, want GuildTextChannelCreate", client.channelCreates[0])
	}
	if create.Name != "user-alice" {
		t.Errorf("channel name = %q, want %q", create.Name, "user-alice")
	}
	if create.ParentID != categoryID {
		t.Errorf("channel parent = %s, want %s", create.ParentID, categoryID)
	}

	wantOverwrites := []discord.PermissionOverwrite{
		discord.RolePermissionOverwrite{RoleID: guildID, Deny: discord.PermissionViewChannel},
		discord.MemberPermissionOverwrite{UserID: applicant.ID, Allow: discord.PermissionViewChannel | discord.PermissionSendMessages},
		discord.RolePermissionOverwrite{RoleID: callerRoleID, Deny: discord.PermissionViewChannel},
		discord.RolePermissionOverwrite{RoleID: staffRoleID, Allow: discord.PermissionViewChannel | discord.PermissionSendMessages},
	}
	if !reflect.DeepEqual(create.PermissionOverwrites, wantOverwrites) {
		t.Errorf("overwrites = %v, want %v", create.PermissionOverwrites, wantOverwrites)
	}

	if len(client.messages) != 1 {
		t.Fatalf("posted %d messages, want 1", len(client.messages))
	}
	row, ok := client.messages[0].Components[0].(discord.ActionRowComponent)
	if !ok {
		t.Fatalf("component = %T, want ActionRowComponent", client.messages[0].Components[0])
	}
	approve, ok := row.Components()[0].(discord.ButtonComponent)
	if !ok {
		t.Fatalf("button = %T, want ButtonComponent", row.Components()[0])
	}
	if want := "/ticket-form/approve:50:77"; approve.CustomID != want {
		t.Errorf("approve custom id = %q, want %q", approve.CustomID, want)
	}
}

func TestController_Approve(t *testing.T) {
	client := &fakeControllerREST{t: t}
	c := &Controller{client: client}

	if err := c.Approve(10, 50, 77, 30); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if !reflect.DeepEqual(client.addedRoles, []snowflake.ID{30}) {
		t.Errorf("added roles = %v, want [30]", client.addedRoles)
	}
	if !reflect.DeepEqual(client.deletedChannels, []snowflake.ID{77}) {
		t.Errorf("deleted channels = %v, want [77]", client.deletedChannels)
	}
}

func TestController_Approve_NoCallerRole(t *testing.T) {
	client := &fakeControllerREST{t: t}
	c := &Controller{client: client}

	if err := c.Approve(10, 50, 77, 0); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if len(client.addedRoles) != 0 {
		t.Errorf("added roles = %v, want none when the caller role is unknown", client.addedRoles)
	}
	if !reflect.DeepEqual(client.deletedChannels, []snowflake.ID{77}) {
		t.Errorf("deleted channels = %v, want [77]", client.deletedChannels)
	}
}

func TestController_Deny(t *testing.T) {
	client := &fakeControllerREST{t: t}
	c := &Controller{client: client}

	if err := c.Deny(77); err != nil {
		t.Fatalf("Deny() error = %v", err)
	}
	if len(client.addedRoles) != 0 {
		t.Errorf("added roles = %v, want none on deny", client.addedRoles)
	}
	if !reflect.DeepEqual(client.deletedChannels, []snowflake.ID{77}) {
		t.Errorf("deleted channels = %v, want [77]", client.deletedChannels)
	}
}

func TestController_ToggleViewer(t *testing.T) {
	tests := []struct {
		name        string
		memberRoles []snowflake.ID
		wantAdded   bool
	}{
		{
			name:        "Adds when missing",
			memberRoles: []snowflake.ID{1, 2},
			wantAdded:   true,
		},
		{
			name:        "Removes when present",
			memberRoles: []snowflake.ID{1, 30},
			wantAdded:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeControllerREST{t: t, member: &discord.Member{RoleIDs: tt.memberRoles}}
			c := &Controller{client: client}

			added, err := c.ToggleViewer(10, 50, 30)
			if err != nil {
				t.Fatalf("ToggleViewer() error = %v", err)
			}
			if added != tt.wantAdded {
				t.Errorf("ToggleViewer() added = %v, want %v", added, tt.wantAdded)
			}
			if tt.wantAdded && len(client.addedRoles) != 1 {
				t.Errorf("added roles = %v, want [30]", client.addedRoles)
			}
			if !tt.wantAdded && len(client.removedRoles) != 1 {
				t.Errorf("removed roles = %v, want [30]", client.removedRoles)
			}
		})
	}
}

func TestFormCustomID_RoundTrip(t *testing.T) {
	id := FormCustomID("approve", 50, 77)
	if want := "/ticket-form/approve:50:77"; id != want {
		t.Fatalf("FormCustomID() = %q, want %q", id, want)
	}

	action, applicantID, channelID, err := ParseFormCustomID(id)
	if err != nil {
		t.Fatalf("ParseFormCustomID() error = %v", err)
	}
	if action != "approve" || applicantID != 50 || channelID != 77 {
		t.Errorf("ParseFormCustomID() = (%q, %s, %s), want (approve, 50, 77)", action, applicantID, channelID)
	}
}

func TestParseFormCustomID_Malformed(t *testing.T) {
	for _, id := range []string{"/ticket-form/approve", "/ticket-form/approve:x:77", "/ticket-form/approve:50:y"} {
		if _, _, _, err := ParseFormCustomID(id); err == nil {
			t.Errorf("ParseFormCustomID(%q) error = nil, want error", id)
		}
	}
}

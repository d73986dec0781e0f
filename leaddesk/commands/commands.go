package commands

import (
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/leaddesk/leaddesk"
)

var Commands = []discord.ApplicationCommandCreate{
	Tickets,
	Leads,
	Report,
	Version,
}

// isStaff reports whether the interaction member may use the staff-side
// commands: either the staff role or an administrator permission.
func isStaff(b *leaddesk.Bot, e *handler.CommandEvent) bool {
	member := e.Member()
	if member == nil {
		return false
	}
	if member.Permissions.Has(discord.PermissionAdministrator) {
		return true
	}
	topo := b.Guild.Get()
	return topo.StaffRoleID != 0 && slices.Contains(member.RoleIDs, topo.StaffRoleID)
}

package config

import "time"

// UI and Display Constants
const (
	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF

	// Discord UI Colors
	EmbedDefaultColor = 0x2B2D31

	// Role colors created by setup
	StaffRoleColor  = 0xFF0000
	CallerRoleColor = 0x00FF00

	// Pagination
	TicketsPerPage = 10
)

// Lead ticket constants
const (
	// CloseEmoji is the reaction that closes an open lead ticket.
	CloseEmoji = "❌"

	// TicketDeleteDelay is how long an approved/denied ticket channel
	// stays up before removal.
	TicketDeleteDelay = 1 * time.Second
)

// Timeouts
const (
	// CommandExecutionTimeout and ComponentTimeout bound wrapped handler
	// execution.
	CommandExecutionTimeout = 10 * time.Second
	ComponentTimeout        = 10 * time.Second

	// GatewayOpenTimeout and ShutdownTimeout bound gateway startup and
	// client teardown.
	GatewayOpenTimeout = 10 * time.Second
	ShutdownTimeout    = 10 * time.Second
)

// Caching
const (
	// UserCacheSize bounds the resolved display-name cache used by
	// reports and closure notices.
	UserCacheSize = 1000
)

// Report settings
const (
	ReportResolveWorkers = 4
)

package leads

import (
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Ticket is one open lead batch: the message listing the leads and the
// private channel it lives in, owned by the requesting user.
type Ticket struct {
	MessageID snowflake.ID
	UserID    snowflake.ID
	ChannelID snowflake.ID
	OpenedAt  time.Time
}

// Manager owns the per-user cooldown stamps, the daily request counters and
// the open ticket records. Everything is process memory; a restart drops all
// of it, which also makes open tickets unclosable by reaction afterwards.
type Manager struct {
	mu        sync.Mutex
	cooldowns map[snowflake.ID]time.Time
	counts    map[snowflake.ID]int

	tickets sync.Map // snowflake.ID (message) -> Ticket

	cooldownPeriod time.Duration
	now            func() time.Time
}

func NewManager(cooldownPeriod time.Duration) *Manager {
	return &Manager{
		cooldowns:      make(map[snowflake.ID]time.Time),
		counts:         make(map[snowflake.ID]int),
		cooldownPeriod: cooldownPeriod,
		now:            time.Now,
	}
}

// BeginRequest atomically checks the user's cooldown and, when clear, stamps
// it and increments the daily counter. A rejected request mutates nothing.
func (m *Manager) BeginRequest(userID snowflake.ID) (ok bool, remaining time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if last, exists := m.cooldowns[userID]; exists && m.cooldownPeriod > 0 {
		if until := last.Add(m.cooldownPeriod); now.Before(until) {
			return false, until.Sub(now)
		}
	}

	m.cooldowns[userID] = now
	m.counts[userID]++
	return true, 0
}

// DailyCounts returns a copy of the per-user counters.
func (m *Manager) DailyCounts() map[snowflake.ID]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[snowflake.ID]int, len(m.counts))
	for id, n := range m.counts {
		counts[id] = n
	}
	return counts
}

// ResetDailyCounts clears all counters. The daily report is the only caller.
func (m *Manager) ResetDailyCounts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[snowflake.ID]int)
}

// RegisterTicket records an open lead batch keyed by its message id.
func (m *Manager) RegisterTicket(messageID, userID, channelID snowflake.ID) {
	m.tickets.Store(messageID, Ticket{
		MessageID: messageID,
		UserID:    userID,
		ChannelID: channelID,
		OpenedAt:  m.now(),
	})
}

// Ticket looks up the open record for a message, if any.
func (m *Manager) Ticket(messageID snowflake.ID) (Ticket, bool) {
	v, ok := m.tickets.Load(messageID)
	if !ok {
		return Ticket{}, false
	}
	return v.(Ticket), true
}

// CloseTicket removes and returns the record. Closing an already-closed or
// unknown message is a no-op and reports false.
func (m *Manager) CloseTicket(messageID snowflake.ID) (Ticket, bool) {
	v, ok := m.tickets.LoadAndDelete(messageID)
	if !ok {
		return Ticket{}, false
	}
	return v.(Ticket), true
}

// OpenTickets returns all open records, oldest first.
func (m *Manager) OpenTickets() []Ticket {
	var tickets []Ticket
	m.tickets.Range(func(_, v any) bool {
		tickets = append(tickets, v.(Ticket))
		return true
	})
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].OpenedAt.Before(tickets[j].OpenedAt)
	})
	return tickets
}

// CooldownPeriod returns the configured window. Zero means disabled.
func (m *Manager) CooldownPeriod() time.Duration {
	return m.cooldownPeriod
}

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/guild"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/leads"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/logger"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/utils"
)

type reportREST interface {
	GetUser(userID snowflake.ID, opts ...rest.RequestOpt) (*discord.User, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// ReportService posts the daily lead summary at the configured wall-clock
// time and resets the counters afterwards.
type ReportService struct {
	client   reportREST
	manager  *leads.Manager
	registry *guild.Registry

	hour, minute int

	userCache *lru.Cache
	now       func() time.Time
}

func NewReportService(client reportREST, manager *leads.Manager, registry *guild.Registry, hour, minute int) *ReportService {
	cache, _ := lru.New(config.UserCacheSize)
	return &ReportService{
		client:    client,
		manager:   manager,
		registry:  registry,
		hour:      hour,
		minute:    minute,
		userCache: cache,
		now:       time.Now,
	}
}

// Start launches the daily schedule. Stops when the context is cancelled.
func (s *ReportService) Start(ctx context.Context) {
	go func() {
		for {
			next := s.nextRun(s.now())
			timer := time.NewTimer(next.Sub(s.now()))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				start := time.Now()
				err := s.RunOnce()
				logger.LogTask("daily-report", time.Since(start), err)
			}
		}
	}()
}

func (s *ReportService) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce builds and sends one summary, then clears the counters. A missing
// report channel makes it a no-op. The counters are cleared even when the
// send fails, so a lost report day merges into the next one.
func (s *ReportService) RunOnce() error {
	topo := s.registry.Get()
	if topo.ReportChannelID == 0 {
		return nil
	}

	counts := s.manager.DailyCounts()
	embed := BuildReportEmbed(s.now(), counts, s.resolveMention)

	_, err := s.client.CreateMessage(topo.ReportChannelID, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	})

	s.manager.ResetDailyCounts()

	if err != nil {
		return fmt.Errorf("failed to send daily report: %w", err)
	}
	return nil
}

// resolveMention returns a mention for the user, falling back to a raw id
// label when the lookup fails. Results are cached.
func (s *ReportService) resolveMention(userID snowflake.ID) string {
	if cached, ok := s.userCache.Get(userID); ok {
		return cached.(string)
	}

	user, err := s.client.GetUser(userID)
	if err != nil {
		return fmt.Sprintf("User %s", userID)
	}

	mention := utils.UserMention(user.ID)
	s.userCache.Add(userID, mention)
	return mention
}

// BuildReportEmbed renders the summary. One field per user with a nonzero
// count, resolved concurrently; an empty count set extends the description
// instead.
func BuildReportEmbed(date time.Time, counts map[snowflake.ID]int, resolve func(snowflake.ID) string) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("Daily Lead Report").
		SetDescription(fmt.Sprintf("Report for %s", date.Format("2006-01-02"))).
		SetColor(config.InfoColor).
		SetTimestamp(date)

	if len(counts) == 0 {
		builder.SetDescription(builder.Description + "\n\nNo leads were distributed today.")
		return builder.Build()
	}

	userIDs := make([]snowflake.ID, 0, len(counts))
	for id := range counts {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	var mu sync.Mutex
	mentions := make(map[snowflake.ID]string, len(userIDs))

	var g errgroup.Group
	g.SetLimit(config.ReportResolveWorkers)
	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			mention := resolve(id)
			mu.Lock()
			mentions[id] = mention
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, id := range userIDs {
		builder.AddField(mentions[id], fmt.Sprintf("%d leads requested", counts[id]), false)
	}
	return builder.Build()
}

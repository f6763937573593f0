package reminder

import (
	"context"
	"fmt"
	"time"

	"orga-bot/internal/cache"
	"orga-bot/internal/calendar"
	"orga-bot/internal/chat"
	appLog "orga-bot/internal/log"
)

// Lead is how far ahead of an event the reminder goes out.
const Lead = 30 * time.Minute

type EventLister interface {
	TodaysEvents(ctx context.Context) ([]calendar.Event, error)
}

// Reminder announces events that are about to start.
type Reminder struct {
	events  EventLister
	sender  chat.Sender
	channel string
	seen    *cache.Seen[string]
	now     func() time.Time
}

func New(events EventLister, sender chat.Sender, channelID string, now func() time.Time) *Reminder {
	if now == nil {
		now = time.Now
	}
	return &Reminder{
		events:  events,
		sender:  sender,
		channel: channelID,
		seen:    cache.NewSeen[string](2 * Lead),
		now:     now,
	}
}

// Check sends one reminder per timed event starting within Lead. Events
// already announced are not repeated. It returns how many were sent.
func (r *Reminder) Check(ctx context.Context) (int, error) {
	events, err := r.events.TodaysEvents(ctx)
	if err != nil {
		return 0, err
	}
	r.seen.PurgeExpired()

	now := r.now()
	sent := 0
	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		diff := ev.Start.Sub(now)
		if diff <= 0 || diff > Lead {
			continue
		}
		if !r.seen.Mark(ev.ID + "@" + ev.Start.UTC().Format(time.RFC3339)) {
			continue
		}
		msg := fmt.Sprintf("⏳ **Rappel** : %s commence dans 30 minutes !", ev.Summary)
		if err := r.sender.Send(ctx, r.channel, msg); err != nil {
			return sent, err
		}
		sent++
		appLog.Info("event reminder sent", "summary", ev.Summary, "start", ev.Start.Format(time.RFC3339))
	}
	return sent, nil
}

package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orga-bot/internal/config"
	appLog "orga-bot/internal/log"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Google talks to one Google Calendar with a service account.
type Google struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	maxEvents  int64
	now        func() time.Time
}

// NewGoogle authenticates with the service account credentials file.
func NewGoogle(ctx context.Context, cfg config.CalendarConfig, loc *time.Location) (*Google, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: credentials file missing", ErrNotConfigured)
	}
	if cfg.CalendarID == "" {
		return nil, fmt.Errorf("%w: calendar id missing", ErrNotConfigured)
	}
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("google calendar client: %w", err)
	}
	return &Google{
		svc:        svc,
		calendarID: cfg.CalendarID,
		loc:        loc,
		maxEvents:  cfg.MaxEvents,
		now:        time.Now,
	}, nil
}

// AddEvent creates an event and returns a confirmation line for the chat.
func (g *Google) AddEvent(ctx context.Context, summary, startISO string, durationMinutes int) (string, error) {
	if summary == "" {
		return "", errors.New("event summary is empty")
	}
	if durationMinutes <= 0 {
		return "", fmt.Errorf("invalid duration %d", durationMinutes)
	}
	start, err := ParseStart(startISO, g.loc)
	if err != nil {
		return "", err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	created, err := g.svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary: summary,
		Start:   &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: g.loc.String()},
		End:     &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: g.loc.String()},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}

	appLog.Info("calendar event added", "id", created.Id, "summary", created.Summary, "start", start.Format(time.RFC3339))
	return fmt.Sprintf("📅 Événement ajouté : %s le %s", created.Summary, displayStart(created.Start, start)), nil
}

// TodaysEvents lists events from now until the end of the local day.
func (g *Google) TodaysEvents(ctx context.Context) ([]Event, error) {
	now := g.now().In(g.loc)
	y, m, d := now.Date()
	endOfDay := time.Date(y, m, d+1, 0, 0, 0, 0, g.loc)

	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(endOfDay.Format(time.RFC3339)).
		MaxResults(g.maxEvents).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		ev, err := toEvent(item, g.loc)
		if err != nil {
			appLog.Warn("calendar event skipped", "id", item.Id, "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func toEvent(item *gcal.Event, loc *time.Location) (Event, error) {
	if item.Start == nil {
		return Event{}, errors.New("event has no start")
	}
	ev := Event{ID: item.Id, Summary: item.Summary}
	switch {
	case item.Start.DateTime != "":
		t, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, err
		}
		ev.Start = t
	case item.Start.Date != "":
		t, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return Event{}, err
		}
		ev.Start = t
		ev.AllDay = true
	default:
		return Event{}, errors.New("event has no start")
	}
	return ev, nil
}

func displayStart(dt *gcal.EventDateTime, fallback time.Time) string {
	if dt != nil && dt.DateTime != "" {
		return dt.DateTime
	}
	return fallback.Format(time.RFC3339)
}

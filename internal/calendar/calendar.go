package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is a calendar entry as shown in reminders and briefings.
type Event struct {
	ID      string
	Summary string
	Start   time.Time
	AllDay  bool
}

var (
	// ErrNotConfigured means no calendar credentials were provided.
	ErrNotConfigured = errors.New("calendar not configured")
	ErrInvalidStart  = errors.New("invalid start time")
)

// Calendar is the calendar collaborator.
type Calendar interface {
	AddEvent(ctx context.Context, summary, startISO string, durationMinutes int) (string, error)
	TodaysEvents(ctx context.Context) ([]Event, error)
}

const noEvents = "📅 Aucun événement prévu aujourd’hui."

// FormatEvents renders the agenda block of the briefing.
func FormatEvents(events []Event, loc *time.Location) string {
	if len(events) == 0 {
		return noEvents
	}
	var sb strings.Builder
	sb.WriteString("**📅 Événements du jour :**\n")
	for _, ev := range events {
		when := "toute la journée"
		if !ev.AllDay {
			when = ev.Start.In(loc).Format("15:04")
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", ev.Summary, when)
	}
	return sb.String()
}

var startLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseStart reads an ISO start time. Values without an offset are taken in
// loc.
func ParseStart(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q (want YYYY-MM-DDTHH:MM[:SS])", ErrInvalidStart, s)
}

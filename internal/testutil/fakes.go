package testutil

import (
	"context"
	"fmt"
	"sync"

	"orga-bot/internal/calendar"
)

// FakeCalendar records added events and serves a fixed agenda.
type FakeCalendar struct {
	mu     sync.Mutex
	Events []calendar.Event
	Added  []string
	Err    error
}

func (f *FakeCalendar) AddEvent(_ context.Context, summary, startISO string, durationMinutes int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Added = append(f.Added, fmt.Sprintf("%s@%s/%d", summary, startISO, durationMinutes))
	return fmt.Sprintf("📅 Événement ajouté : %s le %s", summary, startISO), nil
}

func (f *FakeCalendar) TodaysEvents(context.Context) ([]calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Events, f.Err
}

// RecordingSender keeps every message sent through it.
type RecordingSender struct {
	mu   sync.Mutex
	Sent []string
	Err  error
}

func (r *RecordingSender) Send(_ context.Context, channelID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, channelID+": "+text)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *RecordingSender) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Sent...)
}

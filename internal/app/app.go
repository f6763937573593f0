package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"orga-bot/internal/briefing"
	"orga-bot/internal/calendar"
	"orga-bot/internal/chat"
	"orga-bot/internal/completion"
	"orga-bot/internal/config"
	"orga-bot/internal/database"
	"orga-bot/internal/importer"
	appLog "orga-bot/internal/log"
	"orga-bot/internal/realtime"
	"orga-bot/internal/recurrence"
	"orga-bot/internal/reminder"
	"orga-bot/internal/store"
	"orga-bot/internal/tasks"
	"orga-bot/internal/vault"

	"gorm.io/gorm"
)

// App owns the database handle and the collaborators built on it. External
// clients are created on first use so commands that do not need them work
// without credentials.
type App struct {
	Config     *config.Config
	Location   *time.Location
	DB         *gorm.DB
	Store      *store.Store
	Tasks      *tasks.Service
	Importer   *importer.Importer
	Recurrence *recurrence.Engine
	Hub        *realtime.Hub

	mu       sync.Mutex
	calendar calendar.Calendar
	sender   chat.Sender
	reminder *reminder.Reminder
}

// New opens the configured database and wires the services.
func New(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	return NewWithDB(cfg, db), nil
}

// NewWithDB wires the services on an already migrated db.
func NewWithDB(cfg *config.Config, db *gorm.DB) *App {
	loc := Location(cfg.Timezone)
	now := func() time.Time { return time.Now().In(loc) }
	st := store.New(db)
	return &App{
		Config:     cfg,
		Location:   loc,
		DB:         db,
		Store:      st,
		Tasks:      tasks.NewService(st, now),
		Importer:   importer.New(st, importer.Options{ResolveExistingParents: cfg.Vault.ResolveExistingParents}),
		Recurrence: recurrence.New(st, now),
		Hub:        realtime.NewHub(),
	}
}

// Location resolves an IANA zone, falling back to the local zone.
func Location(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Warn("unknown timezone, using local time", "timezone", name, "err", err)
		return time.Local
	}
	return loc
}

func (a *App) Close() error {
	return database.Close(a.DB)
}

// SetCalendar overrides the lazily built calendar client.
func (a *App) SetCalendar(c calendar.Calendar) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calendar = c
}

// SetSender overrides the lazily built chat sender.
func (a *App) SetSender(s chat.Sender) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sender = s
}

// Calendar returns the Google calendar client, building it on first use.
func (a *App) Calendar(ctx context.Context) (calendar.Calendar, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.calendar != nil {
		return a.calendar, nil
	}
	if a.Config.Calendar.CredentialsFile == "" || a.Config.Calendar.CalendarID == "" {
		return nil, calendar.ErrNotConfigured
	}
	g, err := calendar.NewGoogle(ctx, a.Config.Calendar, a.Location)
	if err != nil {
		return nil, err
	}
	a.calendar = g
	return g, nil
}

// Sender returns the Discord sender, building it on first use.
func (a *App) Sender() (chat.Sender, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sender != nil {
		return a.sender, nil
	}
	if a.Config.Discord.Token == "" || a.Config.Discord.ChannelID == "" {
		return nil, chat.ErrNotConfigured
	}
	d, err := chat.NewDiscord(a.Config.Discord.Token)
	if err != nil {
		return nil, err
	}
	a.sender = d
	return d, nil
}

// ImportVault scans the configured vault and imports its checklists.
func (a *App) ImportVault(ctx context.Context) (importer.Result, error) {
	started := time.Now()
	scanner := vault.NewScanner(a.Config.Vault.Path)
	res, err := a.Importer.Run(ctx, scanner.Items())
	appLog.Debug("vault scan took", "path", a.Config.Vault.Path, "took", time.Since(started).Round(time.Millisecond))
	if res.Inserted > 0 {
		a.Hub.Publish(a.Config.HTTP.Username, realtime.EventTasksImported, res)
	}
	if err != nil {
		return res, fmt.Errorf("import vault: %w", err)
	}
	return res, nil
}

// CheckRecurrence runs one recurrence pass.
func (a *App) CheckRecurrence(ctx context.Context) (recurrence.Result, error) {
	res, err := a.Recurrence.Run(ctx)
	if len(res.Reactivated) > 0 {
		a.Hub.Publish(a.Config.HTTP.Username, realtime.EventTasksReactivated, res.Reactivated)
	}
	return res, err
}

// AddEvent creates a calendar event. A non-positive duration uses the
// configured default.
func (a *App) AddEvent(ctx context.Context, summary, start string, durationMinutes int) (string, error) {
	cal, err := a.Calendar(ctx)
	if err != nil {
		return "", err
	}
	if durationMinutes <= 0 {
		durationMinutes = a.Config.Calendar.DefaultDurationMinutes
	}
	return cal.AddEvent(ctx, summary, start, durationMinutes)
}

// Composer builds a briefing composer from whatever collaborators are
// configured. A missing calendar or LLM key only narrows the message.
func (a *App) Composer(ctx context.Context) *briefing.Composer {
	opts := briefing.Options{
		TodoFile: a.Config.Briefing.TodoFile,
		Location: a.Location,
		Now:      func() time.Time { return time.Now().In(a.Location) },
	}
	if cal, err := a.Calendar(ctx); err == nil {
		opts.Events = cal
	} else {
		appLog.Debug("briefing without calendar", "reason", err)
	}
	if a.Config.Briefing.UseLLM && a.Config.OpenAI.APIKey != "" {
		opts.Completer = completion.NewOpenAIClient(a.Config.OpenAI)
	}
	return briefing.NewComposer(a.Tasks, opts)
}

// PostBriefing composes the daily briefing and sends it to the configured
// channel. It returns the composed message.
func (a *App) PostBriefing(ctx context.Context) (string, error) {
	sender, err := a.Sender()
	if err != nil {
		return "", err
	}
	msg, err := a.Composer(ctx).Post(ctx, sender, a.Config.Discord.ChannelID)
	if err != nil {
		return msg, err
	}
	appLog.Info("briefing posted", "channel", a.Config.Discord.ChannelID, "runes", len([]rune(msg)))
	a.Hub.Publish(a.Config.HTTP.Username, realtime.EventBriefingPublished, nil)
	return msg, nil
}

// CheckReminders announces events starting soon. The reminder keeps its
// dedup state across calls.
func (a *App) CheckReminders(ctx context.Context) (int, error) {
	a.mu.Lock()
	r := a.reminder
	a.mu.Unlock()
	if r == nil {
		cal, err := a.Calendar(ctx)
		if err != nil {
			return 0, err
		}
		sender, err := a.Sender()
		if err != nil {
			return 0, err
		}
		r = reminder.New(cal, sender, a.Config.Discord.ChannelID, func() time.Time { return time.Now().In(a.Location) })
		a.mu.Lock()
		if a.reminder == nil {
			a.reminder = r
		} else {
			r = a.reminder
		}
		a.mu.Unlock()
	}
	return r.Check(ctx)
}

package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"orga-bot/internal/config"
	"orga-bot/internal/importer"
	appLog "orga-bot/internal/log"
	"orga-bot/internal/recurrence"

	"github.com/robfig/cron/v3"
)

// Job names as they appear in logs.
const (
	JobImport     = "import"
	JobRecurrence = "recurrence"
	JobBriefing   = "briefing"
	JobReminders  = "reminders"
)

// jobTimeout bounds a single run so a hung network call cannot pile up.
const jobTimeout = 5 * time.Minute

// Jobs is the work the scheduler triggers.
type Jobs interface {
	ImportVault(ctx context.Context) (importer.Result, error)
	CheckRecurrence(ctx context.Context) (recurrence.Result, error)
	PostBriefing(ctx context.Context) (string, error)
	CheckReminders(ctx context.Context) (int, error)
}

// Scheduler runs Jobs on cron specs in a fixed time zone.
type Scheduler struct {
	cron  *cron.Cron
	jobs  map[string]func(context.Context) error
	specs map[string]string
	base  context.Context
}

// New registers every job with a non-empty spec. An invalid spec is an
// error; nothing runs until Start.
func New(jobs Jobs, cfg config.ScheduleConfig, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs:  make(map[string]func(context.Context) error),
		specs: make(map[string]string),
		base:  context.Background(),
	}

	all := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{JobImport, cfg.Import, func(ctx context.Context) error {
			_, err := jobs.ImportVault(ctx)
			return err
		}},
		{JobRecurrence, cfg.Recurrence, func(ctx context.Context) error {
			_, err := jobs.CheckRecurrence(ctx)
			return err
		}},
		{JobBriefing, cfg.Briefing, func(ctx context.Context) error {
			_, err := jobs.PostBriefing(ctx)
			return err
		}},
		{JobReminders, cfg.Reminders, func(ctx context.Context) error {
			_, err := jobs.CheckReminders(ctx)
			return err
		}},
	}
	for _, j := range all {
		if j.spec == "" {
			appLog.Info("job disabled", "job", j.name)
			continue
		}
		name := j.name
		if _, err := s.cron.AddFunc(j.spec, func() { _ = s.Run(s.base, name) }); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", j.name, j.spec, err)
		}
		s.jobs[name] = j.run
		s.specs[name] = j.spec
	}
	return s, nil
}

// Jobs returns the names of the scheduled jobs, sorted.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes a scheduled job once. Failures are logged and returned.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	run, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	started := time.Now()
	if err := run(ctx); err != nil {
		appLog.Error("scheduled job failed", err, "job", name)
		return err
	}
	appLog.Debug("scheduled job done", "job", name, "took", time.Since(started).Round(time.Millisecond))
	return nil
}

// Start begins firing jobs. Runs use ctx as their parent.
func (s *Scheduler) Start(ctx context.Context) {
	s.base = ctx
	for _, name := range s.Jobs() {
		appLog.Info("job scheduled", "job", name, "spec", s.specs[name])
	}
	s.cron.Start()
}

// Stop prevents new runs and waits for running ones to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger routes cron's own messages through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}

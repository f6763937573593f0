package recurrence

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLog "orga-bot/internal/log"
	"orga-bot/internal/models"
	"orga-bot/internal/store"
)

// Result summarizes one pass over the recurring tasks.
type Result struct {
	Checked        int           `json:"checked"`
	AlreadyPending int           `json:"alreadyPending"`
	Reactivated    []models.Task `json:"reactivated"`
	Failed         int           `json:"failed"`
}

// Engine flips recurring tasks back to pending once their interval has
// elapsed since the last completion.
type Engine struct {
	store *store.Store
	now   func() time.Time
}

// New builds an engine. now supplies the current time in the user's zone.
func New(s *store.Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: s, now: now}
}

// Due reports whether t should be pending on today: it has never been
// done, or last_done + interval_days <= today.
func Due(t models.Task, today time.Time) (bool, error) {
	if t.IntervalDays == nil {
		return false, nil
	}
	if *t.IntervalDays <= 0 {
		return false, fmt.Errorf("task %d has non-positive interval %d", t.ID, *t.IntervalDays)
	}
	if t.LastDone == nil {
		return true, nil
	}
	last, err := models.ParseDate(*t.LastDone)
	if err != nil {
		return false, fmt.Errorf("task %d: %w", t.ID, err)
	}
	next := last.AddDate(0, 0, *t.IntervalDays)
	return !next.After(models.DateOnly(today)), nil
}

// Run evaluates every recurring task against today. Rows are read once up
// front; each qualifying task is updated and committed on its own. A failed
// row does not stop the others; all failures are returned joined.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	var res Result
	tasks, err := e.store.ListRecurring(ctx)
	if err != nil {
		return res, err
	}
	today := models.DateOnly(e.now())

	var errs []error
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res.Checked++

		due, err := Due(t, today)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			appLog.Error("recurring task skipped", err, "id", t.ID, "title", t.Title)
			continue
		}
		if !due {
			continue
		}
		if t.Status == models.StatusPending {
			res.AlreadyPending++
			continue
		}

		if err := e.store.SetStatus(ctx, t.ID, models.StatusPending); err != nil {
			res.Failed++
			errs = append(errs, err)
			appLog.Error("recurring task reactivation failed", err, "id", t.ID, "title", t.Title)
			continue
		}
		t.Status = models.StatusPending
		res.Reactivated = append(res.Reactivated, t)
		appLog.Info("recurring task due", "id", t.ID, "title", t.Title, "last_done", lastDone(t))
	}

	appLog.Info("recurrence check finished", "checked", res.Checked, "reactivated", len(res.Reactivated), "failed", res.Failed)
	return res, errors.Join(errs...)
}

func lastDone(t models.Task) string {
	if t.LastDone == nil {
		return "never"
	}
	return *t.LastDone
}

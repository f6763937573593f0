package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appLog "orga-bot/internal/log"
	"orga-bot/internal/models"
	"orga-bot/internal/store"
)

var (
	ErrEmptyTitle      = errors.New("task title is empty")
	ErrInvalidCategory = errors.New("unknown task category")
	ErrInvalidInterval = errors.New("interval must be a positive number of days")
	ErrInvalidDate     = errors.New("due date must be YYYY-MM-DD")
)

// NewTask is the input of Add. Empty DueDate and nil IntervalDays mean absent.
type NewTask struct {
	Title        string          `json:"title"`
	Category     models.Category `json:"category"`
	ProjectName  string          `json:"projectName"`
	DueDate      string          `json:"dueDate"`
	IntervalDays *int            `json:"intervalDays"`
}

// Service is the query and mutation surface used by the CLI, the HTTP API
// and the briefing.
type Service struct {
	store *store.Store
	now   func() time.Time
}

func NewService(s *store.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: s, now: now}
}

// Today returns the calendar date used for due dates and completions.
func (svc *Service) Today() string {
	return models.FormatDate(models.DateOnly(svc.now()))
}

// TodaysTasks returns todo tasks due today or without a due date.
func (svc *Service) TodaysTasks(ctx context.Context) ([]models.Task, error) {
	return svc.store.TodoForDate(ctx, svc.Today())
}

// TodaysTitles is TodaysTasks reduced to titles.
func (svc *Service) TodaysTitles(ctx context.Context) ([]string, error) {
	tasks, err := svc.TodaysTasks(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		titles = append(titles, t.Title)
	}
	return titles, nil
}

// Pending returns recurring tasks waiting to be done again.
func (svc *Service) Pending(ctx context.Context) ([]models.Task, error) {
	return svc.store.ListByStatus(ctx, models.StatusPending)
}

// Dated returns every task with a due date.
func (svc *Service) Dated(ctx context.Context) ([]models.Task, error) {
	return svc.store.ListWithDueDate(ctx)
}

// MarkDone completes every task whose title is exactly title, stamping
// today as last_done. It returns the number of tasks changed.
func (svc *Service) MarkDone(ctx context.Context, title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrEmptyTitle
	}
	n, err := svc.store.MarkDoneByTitle(ctx, title, svc.Today())
	if err != nil {
		return 0, err
	}
	appLog.Info("task marked done", "title", title, "rows", n)
	return n, nil
}

// Add inserts a todo task. Unlike the vault import it never checks for an
// existing task with the same title.
func (svc *Service) Add(ctx context.Context, in NewTask) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	category := models.Category(strings.ToLower(strings.TrimSpace(string(in.Category))))
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	task := &models.Task{
		Title:       title,
		Category:    category,
		ProjectName: strings.TrimSpace(in.ProjectName),
		Status:      models.StatusTodo,
	}
	if due := strings.TrimSpace(in.DueDate); due != "" {
		if _, err := models.ParseDate(due); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, due)
		}
		task.DueDate = &due
	}
	if in.IntervalDays != nil {
		if *in.IntervalDays <= 0 {
			return nil, ErrInvalidInterval
		}
		n := *in.IntervalDays
		task.IntervalDays = &n
	}

	if err := svc.store.Create(ctx, task); err != nil {
		return nil, err
	}
	appLog.Info("task added", "id", task.ID, "title", task.Title, "category", task.Category)
	return task, nil
}

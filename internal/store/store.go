package store

import (
	"context"
	"errors"
	"fmt"

	"orga-bot/internal/models"

	"gorm.io/gorm"
)

// Store is the accessor for the tasks table. Each method runs its own
// statement and commits; nothing spans two calls.
type Store struct {
	db *gorm.DB
}

// New wraps an opened and migrated database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts t and fills in its ID.
func (s *Store) Create(ctx context.Context, t *models.Task) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("insert task %q: %w", t.Title, err)
	}
	return nil
}

// Get returns the task with the given id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	err := s.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

// FindByKey looks up a task by its import identity. It returns nil when no
// row matches; with several matches the oldest wins.
func (s *Store) FindByKey(ctx context.Context, title string, category models.Category, project string) (*models.Task, error) {
	var t models.Task
	err := s.db.WithContext(ctx).
		Where("title = ? AND category = ? AND project_name = ?", title, category, project).
		Order("id").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task %q: %w", title, err)
	}
	return &t, nil
}

// TodoForDate returns todo tasks due on date or without a due date.
func (s *Store) TodoForDate(ctx context.Context, date string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("status = ? AND (due_date = ? OR due_date IS NULL)", models.StatusTodo, date).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list todo tasks: %w", err)
	}
	return tasks, nil
}

// ListByStatus returns all tasks in the given status.
func (s *Store) ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list %s tasks: %w", status, err)
	}
	return tasks, nil
}

// ListRecurring returns every task with an interval.
func (s *Store) ListRecurring(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.WithContext(ctx).Where("interval_days IS NOT NULL").Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	return tasks, nil
}

// ListWithDueDate returns every task that has a due date.
func (s *Store) ListWithDueDate(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.WithContext(ctx).Where("due_date IS NOT NULL").Order("due_date, id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list dated tasks: %w", err)
	}
	return tasks, nil
}

// SetStatus updates only the status column of one task.
func (s *Store) SetStatus(ctx context.Context, id uint, status models.TaskStatus) error {
	err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return fmt.Errorf("set status of task %d: %w", id, err)
	}
	return nil
}

// MarkDoneByTitle completes every task titled exactly title and returns
// how many rows matched. On MySQL this relies on clientFoundRows, which
// database.Open sets.
func (s *Store) MarkDoneByTitle(ctx context.Context, title, date string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("title = ?", title).
		Updates(map[string]any{"status": models.StatusDone, "last_done": date})
	if res.Error != nil {
		return 0, fmt.Errorf("mark %q done: %w", title, res.Error)
	}
	return res.RowsAffected, nil
}

// Count returns the number of stored tasks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Task{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

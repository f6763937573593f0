package models

import (
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo    TaskStatus = "todo"
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
)

// Category groups tasks. Vault imports only ever produce projet or quotidien.
type Category string

const (
	CategoryProject   Category = "projet"
	CategoryDaily     Category = "quotidien"
	CategoryTechnical Category = "technique"
	CategoryRecurring Category = "recurrente"
)

// Categories lists the accepted categories in menu order.
var Categories = []Category{CategoryProject, CategoryTechnical, CategoryDaily, CategoryRecurring}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Task represents a task in the system
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null;index:idx_tasks_identity,priority:1"`
	Category    Category   `json:"category" gorm:"type:varchar(32);not null;index:idx_tasks_identity,priority:2"`
	ProjectName string     `json:"projectName" gorm:"column:project_name;type:varchar(255);index:idx_tasks_identity,priority:3"`
	Status      TaskStatus `json:"status" gorm:"type:varchar(16);not null;default:'todo';index"`
	// Dates are stored as YYYY-MM-DD text; nil means absent.
	DueDate      *string   `json:"dueDate,omitempty" gorm:"column:due_date;type:varchar(10)"`
	IntervalDays *int      `json:"intervalDays,omitempty" gorm:"column:interval_days"`
	LastDone     *string   `json:"lastDone,omitempty" gorm:"column:last_done;type:varchar(10)"`
	ParentTaskID *uint     `json:"parentTaskId,omitempty" gorm:"column:parent_task_id;index"`
	Subtasks     []Task    `json:"-" gorm:"foreignKey:ParentTaskID"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

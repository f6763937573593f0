package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"orga-bot/internal/calendar"
	appLog "orga-bot/internal/log"
	"orga-bot/internal/models"
	"orga-bot/internal/realtime"
	"orga-bot/internal/tasks"

	"github.com/gin-gonic/gin"
)

// MarkDoneRequest names the task(s) to complete by title
type MarkDoneRequest struct {
	Title string `json:"title" binding:"required"`
}

// AddEventRequest represents the request payload for creating a calendar event
type AddEventRequest struct {
	Summary         string `json:"summary" binding:"required"`
	Start           string `json:"start" binding:"required"`
	DurationMinutes int    `json:"durationMinutes"`
}

type taskList struct {
	Date  string        `json:"date,omitempty"`
	Count int           `json:"count"`
	Tasks []models.Task `json:"tasks"`
}

// GetTodaysTasks lists todo tasks due today or undated
// GET /api/tasks/today
func (h *Handler) GetTodaysTasks(c *gin.Context) {
	list, err := h.tasks.TodaysTasks(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to fetch tasks", err)
		return
	}
	c.JSON(http.StatusOK, taskList{Date: h.tasks.Today(), Count: len(list), Tasks: nonNil(list)})
}

// GetPendingTasks lists recurring tasks waiting to be done
// GET /api/tasks/pending
func (h *Handler) GetPendingTasks(c *gin.Context) {
	list, err := h.tasks.Pending(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to fetch tasks", err)
		return
	}
	c.JSON(http.StatusOK, taskList{Count: len(list), Tasks: nonNil(list)})
}

// CreateTask handles creating a new task
// POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req tasks.NewTask
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := h.tasks.Add(c.Request.Context(), req)
	if err != nil {
		if isValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "Failed to create task", err)
		return
	}

	h.hub.Publish(c.GetString("username"), realtime.EventTaskCreated, task)
	c.JSON(http.StatusCreated, task)
}

// MarkTaskDone marks every task with the given title as done today
// POST /api/tasks/done
func (h *Handler) MarkTaskDone(c *gin.Context) {
	var req MarkDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	n, err := h.tasks.MarkDone(c.Request.Context(), req.Title)
	if err != nil {
		if isValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "Failed to update task", err)
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	payload := gin.H{"title": strings.TrimSpace(req.Title), "updated": n, "date": h.tasks.Today()}
	h.hub.Publish(c.GetString("username"), realtime.EventTaskDone, payload)
	c.JSON(http.StatusOK, payload)
}

// RunRecurrence triggers one recurrence pass
// POST /api/recurrence/run
func (h *Handler) RunRecurrence(c *gin.Context) {
	res, err := h.jobs.CheckRecurrence(c.Request.Context())
	if err != nil {
		appLog.Error("recurrence run failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, res)
}

// RunImport triggers a vault import
// POST /api/import
func (h *Handler) RunImport(c *gin.Context) {
	res, err := h.jobs.ImportVault(c.Request.Context())
	if err != nil {
		appLog.Error("vault import failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportICS serves dated and recurring tasks as an iCalendar feed
// GET /api/tasks.ics
func (h *Handler) ExportICS(c *gin.Context) {
	list, err := h.tasks.Dated(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to fetch tasks", err)
		return
	}
	body, err := calendar.ExportTasks(list, time.Now())
	if err != nil {
		internalError(c, "Failed to export tasks", err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="tasks.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// AddEvent creates a calendar event
// POST /api/events
func (h *Handler) AddEvent(c *gin.Context) {
	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Summary and start are required"})
		return
	}

	msg, err := h.jobs.AddEvent(c.Request.Context(), req.Summary, req.Start, req.DurationMinutes)
	if err != nil {
		if errors.Is(err, calendar.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, calendar.ErrInvalidStart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "Failed to create event", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func isValidation(err error) bool {
	return errors.Is(err, tasks.ErrEmptyTitle) ||
		errors.Is(err, tasks.ErrInvalidCategory) ||
		errors.Is(err, tasks.ErrInvalidInterval) ||
		errors.Is(err, tasks.ErrInvalidDate)
}

func internalError(c *gin.Context, msg string, err error) {
	appLog.Error(strings.ToLower(msg), err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func nonNil(list []models.Task) []models.Task {
	if list == nil {
		return []models.Task{}
	}
	return list
}

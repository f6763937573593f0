package handlers

import (
	"context"

	"orga-bot/internal/auth"
	"orga-bot/internal/config"
	"orga-bot/internal/importer"
	"orga-bot/internal/realtime"
	"orga-bot/internal/recurrence"
	"orga-bot/internal/tasks"
)

// Jobs are the long-running operations the API can trigger on demand.
type Jobs interface {
	ImportVault(ctx context.Context) (importer.Result, error)
	CheckRecurrence(ctx context.Context) (recurrence.Result, error)
	AddEvent(ctx context.Context, summary, start string, durationMinutes int) (string, error)
}

// Handler serves the HTTP API.
type Handler struct {
	tasks *tasks.Service
	jobs  Jobs
	hub   *realtime.Hub
	auth  *auth.Manager
	http  config.HTTPConfig
}

func New(svc *tasks.Service, jobs Jobs, hub *realtime.Hub, authMgr *auth.Manager, cfg config.HTTPConfig) *Handler {
	return &Handler{tasks: svc, jobs: jobs, hub: hub, auth: authMgr, http: cfg}
}

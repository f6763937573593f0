package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"orga-bot/internal/app"
	"orga-bot/internal/auth"
	"orga-bot/internal/config"
	"orga-bot/internal/middleware"
	"orga-bot/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse"

type harness struct {
	app    *app.App
	router *gin.Engine
	token  string
	cal    *testutil.FakeCalendar
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Vault.Path = t.TempDir()
	cfg.HTTP.JWTSecret = "test-secret"
	cfg.HTTP.PasswordHash, err = auth.HashPassword(testPassword)
	require.NoError(t, err)

	a := app.NewWithDB(cfg, db)
	cal := &testutil.FakeCalendar{}
	a.SetCalendar(cal)

	authMgr := auth.NewManager(cfg.HTTP)
	h := New(a.Tasks, a, a.Hub, authMgr, cfg.HTTP)

	r := gin.New()
	r.POST("/api/login", h.Login)
	p := r.Group("/api")
	p.Use(middleware.JWTAuthMiddleware(authMgr))
	p.GET("/tasks/today", h.GetTodaysTasks)
	p.GET("/tasks/pending", h.GetPendingTasks)
	p.POST("/tasks", h.CreateTask)
	p.POST("/tasks/done", h.MarkTaskDone)
	p.POST("/recurrence/run", h.RunRecurrence)
	p.POST("/import", h.RunImport)
	p.GET("/tasks.ics", h.ExportICS)
	p.POST("/events", h.AddEvent)

	token, err := authMgr.GenerateToken(cfg.HTTP.Username)
	require.NoError(t, err)
	return &harness{app: a, router: r, token: token, cal: cal}
}

func (hs *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+hs.token)
	w := httptest.NewRecorder()
	hs.router.ServeHTTP(w, req)
	return w
}

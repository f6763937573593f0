package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"orga-bot/internal/app"
	"orga-bot/internal/auth"
	"orga-bot/internal/config"
	"orga-bot/internal/handlers"
	"orga-bot/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	cfg.HTTP.JWTSecret = "s"
	a := app.NewWithDB(cfg, db)
	authMgr := auth.NewManager(cfg.HTTP)
	return SetupRoutes(handlers.New(a.Tasks, a, a.Hub, authMgr, cfg.HTTP), authMgr)
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setupRouter(t)
	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks/today"},
		{http.MethodGet, "/api/tasks/pending"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPost, "/api/tasks/done"},
		{http.MethodGet, "/api/tasks.ics"},
		{http.MethodPost, "/api/recurrence/run"},
		{http.MethodPost, "/api/import"},
		{http.MethodPost, "/api/events"},
		{http.MethodGet, "/ws"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, rt.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/tasks", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

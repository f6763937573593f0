package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func login(t *testing.T, hs *harness, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	hs.router.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	hs := newHarness(t)
	w := login(t, hs, "orga", testPassword)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "orga", resp.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	hs := newHarness(t)
	require.Equal(t, http.StatusUnauthorized, login(t, hs, "orga", "nope").Code)
	require.Equal(t, http.StatusUnauthorized, login(t, hs, "someone", testPassword).Code)
}

func TestLogin_MissingFields(t *testing.T) {
	hs := newHarness(t)
	require.Equal(t, http.StatusBadRequest, login(t, hs, "orga", "").Code)
}

func TestLogin_DisabledWithoutHash(t *testing.T) {
	hs := newHarness(t)
	cfg := hs.app.Config.HTTP
	cfg.PasswordHash = ""
	h := New(hs.app.Tasks, hs.app, hs.app.Hub, nil, cfg)
	hs.router.POST("/api/login-disabled", h.Login)

	body, _ := json.Marshal(map[string]string{"username": "orga", "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/login-disabled", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	hs.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

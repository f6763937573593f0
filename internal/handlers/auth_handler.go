package handlers

import (
	"net/http"

	"orga-bot/internal/auth"
	appLog "orga-bot/internal/log"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Login checks the configured credentials and issues a token
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	if h.http.PasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Login is disabled"})
		return
	}
	if req.Username != h.http.Username || !auth.CheckPassword(h.http.PasswordHash, req.Password) {
		appLog.Warn("login rejected", "username", req.Username, "remote", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.auth.GenerateToken(req.Username)
	if err != nil {
		appLog.Error("token generation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Username: req.Username,
		Message:  "Login successful",
	})
}

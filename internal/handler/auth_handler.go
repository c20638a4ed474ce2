package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/fleetdesk_api/internal/middleware"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// Authenticator signs admins in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

type AuthHandler struct {
	authService Authenticator
}

func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	utils.Success(c, 200, "Login successful", result)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	utils.Success(c, 200, "Authenticated", gin.H{
		"userId": middleware.UserID(c),
		"email":  middleware.UserEmail(c),
	})
}

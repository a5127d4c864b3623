package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/riffbook-backend/internal/http/response"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req, false) {
		return
	}
	user, accessToken, err := ah.authService.Register(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, "registration_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{
		"user":         user,
		"access_token": accessToken,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
	})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req, false) {
		return
	}
	user, accessToken, err := ah.authService.Login(requestDBC(c), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, "login_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"user":         user,
		"access_token": accessToken,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
	})
}


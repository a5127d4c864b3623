package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/riffbook-backend/internal/http/response"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, "get_me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me
// body: { "display_name": "...", "timezone": "Asia/Seoul" }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateMeInput
	if !bindJSON(c, &req, true) {
		return
	}
	me, err := uh.userService.UpdateMe(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, "update_me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

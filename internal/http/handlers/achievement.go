package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/riffbook-backend/internal/http/response"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type AchievementHandler struct {
	achievements services.AchievementService
}

func NewAchievementHandler(achievements services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

// GET /api/achievements
// Runs a check first so the response reflects the latest sessions.
func (h *AchievementHandler) List(c *gin.Context) {
	overview, err := h.achievements.Overview(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, "list_achievements_failed", err)
		return
	}
	response.RespondOK(c, overview)
}

// POST /api/achievements/check
func (h *AchievementHandler) Check(c *gin.Context) {
	res, err := h.achievements.Check(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, "check_achievements_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/stats
func (h *AchievementHandler) Stats(c *gin.Context) {
	stats, err := h.achievements.Stats(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, "get_stats_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/riffbook-backend/internal/http/response"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type GoalHandler struct {
	goals services.GoalService
}

func NewGoalHandler(goals services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// GET /api/goals?active=true
func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.goals.List(requestDBC(c), c.Query("active") == "true")
	if err != nil {
		response.RespondServiceError(c, "list_goals_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"goals": goals})
}

// POST /api/goals
func (h *GoalHandler) Create(c *gin.Context) {
	var req services.CreateGoalInput
	if !bindJSON(c, &req, false) {
		return
	}
	goal, err := h.goals.Create(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, "create_goal_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"goal": goal})
}

// PUT /api/goals/:id
func (h *GoalHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "invalid_goal_id")
	if !ok {
		return
	}
	var req services.GoalPatch
	if !bindJSON(c, &req, true) {
		return
	}
	goal, err := h.goals.Update(requestDBC(c), id, req)
	if err != nil {
		response.RespondServiceError(c, "update_goal_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"goal": goal})
}

// DELETE /api/goals/:id
func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_goal_id")
	if !ok {
		return
	}
	if err := h.goals.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, "delete_goal_failed", err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/goals/:id/progress
func (h *GoalHandler) Progress(c *gin.Context) {
	id, ok := pathID(c, "invalid_goal_id")
	if !ok {
		return
	}
	p, err := h.goals.Progress(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, "goal_progress_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}

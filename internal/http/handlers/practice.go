package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/riffbook-backend/internal/http/response"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type PracticeHandler struct {
	practice services.PracticeService
}

func NewPracticeHandler(practice services.PracticeService) *PracticeHandler {
	return &PracticeHandler{practice: practice}
}

// POST /api/practice
func (h *PracticeHandler) Start(c *gin.Context) {
	var req services.StartSessionInput
	if !bindJSON(c, &req, false) {
		return
	}
	session, err := h.practice.Start(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, "start_session_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"session": session})
}

// POST /api/practice/:id/end
func (h *PracticeHandler) End(c *gin.Context) {
	id, ok := pathID(c, "invalid_session_id")
	if !ok {
		return
	}
	var req services.EndSessionInput
	if !bindJSON(c, &req, false) {
		return
	}
	session, err := h.practice.End(requestDBC(c), id, req)
	if err != nil {
		response.RespondServiceError(c, "end_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// POST /api/practice/:id/comment
func (h *PracticeHandler) Comment(c *gin.Context) {
	id, ok := pathID(c, "invalid_session_id")
	if !ok {
		return
	}
	var req services.CommentInput
	if !bindJSON(c, &req, true) {
		return
	}
	session, err := h.practice.Comment(requestDBC(c), id, req)
	if err != nil {
		response.RespondServiceError(c, "comment_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// GET /api/practice?limit=&offset=
func (h *PracticeHandler) List(c *gin.Context) {
	sessions, err := h.practice.List(requestDBC(c), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		response.RespondServiceError(c, "list_sessions_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/practice/:id
func (h *PracticeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "invalid_session_id")
	if !ok {
		return
	}
	session, err := h.practice.Get(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, "get_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// DELETE /api/practice/:id
func (h *PracticeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_session_id")
	if !ok {
		return
	}
	if err := h.practice.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, "delete_session_failed", err)
		return
	}
	response.RespondNoContent(c)
}

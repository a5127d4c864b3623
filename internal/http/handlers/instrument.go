package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/riffbook-backend/internal/http/response"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type InstrumentHandler struct {
	instruments services.InstrumentService
}

func NewInstrumentHandler(instruments services.InstrumentService) *InstrumentHandler {
	return &InstrumentHandler{instruments: instruments}
}

// GET /api/instruments
func (h *InstrumentHandler) List(c *gin.Context) {
	items, err := h.instruments.List(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, "list_instruments_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"instruments": items})
}

// POST /api/instruments
func (h *InstrumentHandler) Create(c *gin.Context) {
	var req services.CreateInstrumentInput
	if !bindJSON(c, &req, false) {
		return
	}
	inst, err := h.instruments.Create(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, "create_instrument_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"instrument": inst})
}

// DELETE /api/instruments/:id
func (h *InstrumentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "invalid_instrument_id")
	if !ok {
		return
	}
	if err := h.instruments.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, "delete_instrument_failed", err)
		return
	}
	response.RespondNoContent(c)
}

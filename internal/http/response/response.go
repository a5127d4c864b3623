package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
)

// APIError is the body of every non-2xx response. TraceID lets a client quote
// the request when reporting a failure.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Message: "unknown error", Code: code}
	if err != nil {
		body.Message = err.Error()
	}
	if c.Request != nil {
		body.TraceID = ctxutil.TraceID(c.Request.Context())
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

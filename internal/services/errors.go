package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/riffbook-backend/internal/platform/apierr"
	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
)

// MinSessionSeconds is the shortest practice that is kept as a record.
const MinSessionSeconds = 60

var (
	ErrUnauthorized       = apierr.Unauthorized(errors.New("missing or invalid credentials"))
	ErrDurationTooShort   = apierr.BadRequest("duration_too_short", fmt.Errorf("practice must last at least %d seconds", MinSessionSeconds))
	ErrSessionNotFound    = apierr.NotFound("session_not_found")
	ErrGoalNotFound       = apierr.NotFound("goal_not_found")
	ErrInstrumentNotFound = apierr.NotFound("instrument_not_found")
	ErrUserNotFound       = apierr.NotFound("user_not_found")
)

func invalid(code, format string, args ...any) *apierr.Error {
	return apierr.New(http.StatusBadRequest, code, fmt.Errorf(format, args...))
}

// requireUser returns the authenticated caller from the request context.
func requireUser(dbc dbctx.Context) (uuid.UUID, error) {
	userID := ctxutil.UserID(dbc.Ctx)
	if userID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/riffbook-backend/internal/data/repos"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
)

// LoadLocation resolves an IANA zone name; empty or unknown names fall
// back to def, and a nil def to time.Local.
func LoadLocation(name string, def *time.Location) *time.Location {
	if def == nil {
		def = time.Local
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return def
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return def
	}
	return loc
}

// userNow is the current time in the user's zone, which decides calendar
// days for streaks and goal windows.
func userNow(dbc dbctx.Context, userRepo repos.UserRepo, userID uuid.UUID, now func() time.Time, def *time.Location) (time.Time, error) {
	u, err := userRepo.GetByID(dbc, userID)
	if err != nil {
		return time.Time{}, err
	}
	tz := ""
	if u != nil {
		tz = u.Timezone
	}
	return now().In(LoadLocation(tz, def)), nil
}

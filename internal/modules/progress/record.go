package progress

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/riffbook-backend/internal/domain"
)

// CompletedRate is the completion rate at or above which a session counts
// as a completed run-through.
const CompletedRate = 0.9

// SessionRecord is the read-only view of a practice session the engine
// aggregates over.
type SessionRecord struct {
	UserID          uuid.UUID
	InstrumentID    uuid.UUID
	StartedAt       time.Time
	DurationSeconds int64
	FinalBPM        int
	CompletionRate  *float64
	ContentSource   types.ContentSource
}

func RecordFromSession(s *types.PracticeSession) SessionRecord {
	return SessionRecord{
		UserID:          s.UserID,
		InstrumentID:    s.InstrumentID,
		StartedAt:       s.StartedAt,
		DurationSeconds: s.DurationSeconds,
		FinalBPM:        s.FinalBPM,
		CompletionRate:  s.CompletionRate,
		ContentSource:   s.ContentSource,
	}
}

func RecordsFromSessions(sessions []*types.PracticeSession) []SessionRecord {
	out := make([]SessionRecord, 0, len(sessions))
	for _, s := range sessions {
		if s == nil {
			continue
		}
		out = append(out, RecordFromSession(s))
	}
	return out
}

func (r SessionRecord) completed() bool {
	return r.CompletionRate != nil && *r.CompletionRate >= CompletedRate
}

func (r SessionRecord) duration() int64 {
	if r.DurationSeconds < 0 {
		return 0
	}
	return r.DurationSeconds
}

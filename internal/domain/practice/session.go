package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentSource records where the practiced material came from.
type ContentSource string

const (
	ContentSourceAIGenerated   ContentSource = "ai_generated"
	ContentSourceAIRecommended ContentSource = "ai_recommended"
	ContentSourceUserSelected  ContentSource = "user_selected"
	ContentSourceCustom        ContentSource = "custom"
)

func (s ContentSource) Valid() bool {
	switch s {
	case ContentSourceAIGenerated, ContentSourceAIRecommended, ContentSourceUserSelected, ContentSourceCustom:
		return true
	default:
		return false
	}
}

const (
	DefaultBPM           = 120
	DefaultTimeSignature = "4/4"
	DefaultContentType   = "free"
	DefaultDifficulty    = "intermediate"
	DefaultNotationMode  = "tab"
)

// PracticeSession is one practice sitting. Duration and final BPM are written
// when the session ends; comment fields when the user reflects on it.
type PracticeSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_practice_session_user_started,priority:1" json:"user_id"`
	InstrumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"instrument_id"`

	StartedAt       time.Time  `gorm:"not null;index:idx_practice_session_user_started,priority:2" json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int64      `gorm:"not null;default:0" json:"duration_seconds"`

	ContentType   string        `gorm:"not null" json:"content_type"`
	ContentTitle  *string       `json:"content_title,omitempty"`
	ContentSource ContentSource `gorm:"not null" json:"content_source"`
	Difficulty    string        `json:"difficulty"`

	InitialBPM    int    `gorm:"column:initial_bpm;not null" json:"initial_bpm"`
	FinalBPM      int    `gorm:"column:final_bpm;not null" json:"final_bpm"`
	TimeSignature string `gorm:"not null" json:"time_signature"`
	NotationMode  string `gorm:"not null" json:"notation_mode"`

	// Nil when the client never reported a completion rate.
	CompletionRate *float64       `json:"completion_rate,omitempty"`
	SessionData    datatypes.JSON `json:"session_data,omitempty"`

	UserComment        *string        `json:"user_comment,omitempty"`
	QuickTags          datatypes.JSON `json:"quick_tags,omitempty"`
	SatisfactionRating *int           `json:"satisfaction_rating,omitempty"`
	CommentSubmittedAt *time.Time     `json:"comment_submitted_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (PracticeSession) TableName() string { return "practice_session" }

func (s *PracticeSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

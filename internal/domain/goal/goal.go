package goal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
)

func (t Type) Valid() bool {
	return t == TypeDaily || t == TypeWeekly || t == TypeMonthly
}

type TargetType string

const (
	TargetTime     TargetType = "time"
	TargetSessions TargetType = "sessions"
	TargetBPM      TargetType = "bpm"
)

func (t TargetType) Valid() bool {
	return t == TargetTime || t == TargetSessions || t == TargetBPM
}

// PracticeGoal is a recurring target over a daily, weekly or monthly window.
// Time targets are in minutes.
type PracticeGoal struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         Type       `gorm:"not null" json:"type"`
	TargetType   TargetType `gorm:"not null" json:"target_type"`
	TargetValue  int        `gorm:"not null" json:"target_value"`
	InstrumentID *uuid.UUID `gorm:"type:uuid;index" json:"instrument_id,omitempty"`
	Description  *string    `json:"description,omitempty"`
	IsActive     bool       `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (PracticeGoal) TableName() string { return "practice_goal" }

func (g *PracticeGoal) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Progress is derived on every read and never stored.
type Progress struct {
	GoalID     uuid.UUID `json:"goal_id"`
	Current    int       `json:"current"`
	Target     int       `json:"target"`
	Percentage float64   `json:"percentage"`
	IsAchieved bool      `json:"is_achieved"`
}

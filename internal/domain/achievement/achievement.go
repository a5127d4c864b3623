package achievement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement is one entry of the seeded catalog.
type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Category    string    `gorm:"not null;index" json:"category"`
	Threshold   int       `json:"threshold"`
}

func (Achievement) TableName() string { return "achievement" }

func (a *Achievement) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserAchievement tracks one user's progress toward one achievement.
// At most one row exists per (user, achievement); UnlockedAt is set once.
type UserAchievement struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement_user_achievement,priority:1" json:"user_id"`
	AchievementID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement_user_achievement,priority:2" json:"achievement_id"`
	Progress      int        `gorm:"not null;default:0" json:"progress"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }

func (ua *UserAchievement) BeforeCreate(*gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	return nil
}

func (ua *UserAchievement) Unlocked() bool { return ua != nil && ua.UnlockedAt != nil }

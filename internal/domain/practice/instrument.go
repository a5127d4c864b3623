package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Instrument is something a user practices on (guitar, bass, drums, keyboard, violin, ...).
type Instrument struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type     string         `gorm:"not null;column:type" json:"type"`
	Name     string         `gorm:"not null;column:name" json:"name"`
	IsCustom bool           `gorm:"not null;column:is_custom" json:"is_custom"`
	Settings datatypes.JSON `gorm:"column:settings" json:"settings,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Instrument) TableName() string { return "instrument" }

func (i *Instrument) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

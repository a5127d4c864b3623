package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/riffbook-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Practice
		// =========================
		&types.Instrument{},
		&types.PracticeSession{},
		&types.PracticeGoal{},

		// =========================
		// Achievements
		// =========================
		&types.Achievement{},
		&types.UserAchievement{},
	)
}

// EnsureAchievementIndexes backs the one-row-per-(user, achievement) rule
// with a unique index even on tables created before the model carried it.
func EnsureAchievementIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_user_achievement_user_achievement
		ON user_achievement(user_id, achievement_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_user_achievement_user_achievement: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_achievement_code
		ON achievement(code);
	`).Error; err != nil {
		return fmt.Errorf("create idx_achievement_code: %w", err)
	}
	return nil
}

func EnsurePracticeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_practice_session_user_started
		ON practice_session(user_id, started_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_practice_session_user_started: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_practice_goal_user_active
		ON practice_goal(user_id, is_active);
	`).Error; err != nil {
		return fmt.Errorf("create idx_practice_goal_user_active: %w", err)
	}
	return nil
}

func MigrateAll(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return err
	}
	if err := EnsureAchievementIndexes(db); err != nil {
		return err
	}
	return EnsurePracticeIndexes(db)
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureAchievementIndexes(s.db); err != nil {
		s.log.Error("Achievement index migration failed", "error", err)
		return err
	}
	if err := EnsurePracticeIndexes(s.db); err != nil {
		s.log.Error("Practice index migration failed", "error", err)
		return err
	}
	return nil
}

package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/data/repos/achievement"
	"github.com/yungbote/riffbook-backend/internal/data/repos/goal"
	"github.com/yungbote/riffbook-backend/internal/data/repos/practice"
	"github.com/yungbote/riffbook-backend/internal/data/repos/user"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type InstrumentRepo = practice.InstrumentRepo
type PracticeSessionRepo = practice.PracticeSessionRepo

type PracticeGoalRepo = goal.PracticeGoalRepo

type AchievementRepo = achievement.AchievementRepo
type UserAchievementRepo = achievement.UserAchievementRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return user.NewUserRepo(db, log)
}

func NewInstrumentRepo(db *gorm.DB, log *logger.Logger) InstrumentRepo {
	return practice.NewInstrumentRepo(db, log)
}

func NewPracticeSessionRepo(db *gorm.DB, log *logger.Logger) PracticeSessionRepo {
	return practice.NewPracticeSessionRepo(db, log)
}

func NewPracticeGoalRepo(db *gorm.DB, log *logger.Logger) PracticeGoalRepo {
	return goal.NewPracticeGoalRepo(db, log)
}

func NewAchievementRepo(db *gorm.DB, log *logger.Logger) AchievementRepo {
	return achievement.NewAchievementRepo(db, log)
}

func NewUserAchievementRepo(db *gorm.DB, log *logger.Logger) UserAchievementRepo {
	return achievement.NewUserAchievementRepo(db, log)
}

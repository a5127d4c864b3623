package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/data/repos"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	Instrument      repos.InstrumentRepo
	PracticeSession repos.PracticeSessionRepo
	PracticeGoal    repos.PracticeGoalRepo
	Achievement     repos.AchievementRepo
	UserAchievement repos.UserAchievementRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Instrument:      repos.NewInstrumentRepo(db, log),
		PracticeSession: repos.NewPracticeSessionRepo(db, log),
		PracticeGoal:    repos.NewPracticeGoalRepo(db, log),
		Achievement:     repos.NewAchievementRepo(db, log),
		UserAchievement: repos.NewUserAchievementRepo(db, log),
	}
}

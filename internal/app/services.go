package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/modules/progress"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Instrument  services.InstrumentService
	Practice    services.PracticeService
	Goal        services.GoalService
	Achievement services.AchievementService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := progress.DefaultCatalog()
	if err != nil {
		return Services{}, fmt.Errorf("load achievement catalog: %w", err)
	}

	achievements := services.NewAchievementService(
		db,
		log,
		catalog,
		repos.Achievement,
		repos.UserAchievement,
		repos.PracticeSession,
		repos.User,
		clients.UserLocker,
		services.AchievementConfig{
			Location:     cfg.Location,
			CheckTimeout: cfg.AchievementCheckTimeout,
			LockWait:     cfg.AchievementLockWait,
		},
	)

	return Services{
		Auth:        services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:        services.NewUserService(db, log, repos.User),
		Instrument:  services.NewInstrumentService(db, log, repos.Instrument, repos.PracticeSession, repos.PracticeGoal),
		Practice:    services.NewPracticeService(db, log, repos.Instrument, repos.PracticeSession, achievements, nil),
		Goal:        services.NewGoalService(db, log, repos.PracticeGoal, repos.Instrument, repos.PracticeSession, repos.User, cfg.Location, nil),
		Achievement: achievements,
	}, nil
}

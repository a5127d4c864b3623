package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/clients/redis"
	"github.com/yungbote/riffbook-backend/internal/data/repos"
	"github.com/yungbote/riffbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/modules/progress"
	"github.com/yungbote/riffbook-backend/internal/platform/apierr"
	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
)

// fixedNow is a Wednesday evening in UTC.
var fixedNow = time.Date(2026, 5, 20, 21, 0, 0, 0, time.UTC)

type testEnv struct {
	db *gorm.DB

	userRepo            repos.UserRepo
	instrumentRepo      repos.InstrumentRepo
	sessionRepo         repos.PracticeSessionRepo
	goalRepo            repos.PracticeGoalRepo
	achievementRepo     repos.AchievementRepo
	userAchievementRepo repos.UserAchievementRepo

	auth         AuthService
	users        UserService
	instruments  InstrumentService
	practice     PracticeService
	goals        GoalService
	achievements AchievementService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLocker(t, redis.NewLocalUserLocker())
}

func newTestEnvWithLocker(t *testing.T, locker redis.UserLocker) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	now := func() time.Time { return fixedNow }

	catalog, err := progress.DefaultCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	env := &testEnv{
		db:                  db,
		userRepo:            repos.NewUserRepo(db, log),
		instrumentRepo:      repos.NewInstrumentRepo(db, log),
		sessionRepo:         repos.NewPracticeSessionRepo(db, log),
		goalRepo:            repos.NewPracticeGoalRepo(db, log),
		achievementRepo:     repos.NewAchievementRepo(db, log),
		userAchievementRepo: repos.NewUserAchievementRepo(db, log),
	}
	env.auth = NewAuthService(db, log, env.userRepo, "test-secret", time.Hour)
	env.users = NewUserService(db, log, env.userRepo)
	env.instruments = NewInstrumentService(db, log, env.instrumentRepo, env.sessionRepo, env.goalRepo)
	env.achievements = NewAchievementService(db, log, catalog,
		env.achievementRepo, env.userAchievementRepo, env.sessionRepo, env.userRepo,
		locker, AchievementConfig{Location: time.UTC, Now: now})
	env.practice = NewPracticeService(db, log, env.instrumentRepo, env.sessionRepo, env.achievements, now)
	env.goals = NewGoalService(db, log, env.goalRepo, env.instrumentRepo, env.sessionRepo, env.userRepo, time.UTC, now)

	// Background checks must finish before the database closes.
	t.Cleanup(env.achievements.Wait)

	if _, err := env.achievements.SeedCatalog(context.Background()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return env
}

func (e *testEnv) seedUser(t *testing.T) *types.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), e.db, uuid.NewString()+"@riffbook.test")
}

func asUser(userID uuid.UUID) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
	return dbctx.Context{Ctx: ctx}
}

func apiCode(err error) string {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

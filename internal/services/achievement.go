package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/clients/redis"
	"github.com/yungbote/riffbook-backend/internal/data/repos"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/modules/progress"
	"github.com/yungbote/riffbook-backend/internal/observability"
	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

// AchievementView is a catalog entry joined with the caller's state.
type AchievementView struct {
	*types.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	Progress   int        `json:"progress"`
}

// AchievementOverview lists the catalog with the caller's state.
// RecentlyUnlocked holds what the check behind this call just unlocked;
// Recent is the latest unlocks on record, newest first.
type AchievementOverview struct {
	Achievements     []*AchievementView `json:"achievements"`
	RecentlyUnlocked []*AchievementView `json:"recently_unlocked"`
	Recent           []*AchievementView `json:"recent"`
}

const recentUnlocksLimit = 5

// AchievementTrigger schedules a background check after practice data
// changes.
type AchievementTrigger interface {
	CheckAsync(ctx context.Context, userID uuid.UUID, reason string)
}

type AchievementService interface {
	AchievementTrigger
	// CheckAchievements evaluates every catalog rule for userID and writes
	// the resulting unlocks and progress changes.
	CheckAchievements(ctx context.Context, userID uuid.UUID) (progress.Result, error)
	Check(dbc dbctx.Context) (progress.Result, error)
	Overview(dbc dbctx.Context) (*AchievementOverview, error)
	Stats(dbc dbctx.Context) (*progress.Stats, error)
	SeedCatalog(ctx context.Context) (int, error)
	// Wait blocks until every background check has finished.
	Wait()
}

type AchievementConfig struct {
	Location     *time.Location
	CheckTimeout time.Duration
	LockWait     time.Duration
	Now          func() time.Time
}

type achievementService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	catalog             progress.Catalog
	achievementRepo     repos.AchievementRepo
	userAchievementRepo repos.UserAchievementRepo
	sessionRepo         repos.PracticeSessionRepo
	userRepo            repos.UserRepo
	locker              redis.UserLocker
	reconciler          *progress.Reconciler

	loc          *time.Location
	checkTimeout time.Duration
	lockWait     time.Duration
	now          func() time.Time
	wg           sync.WaitGroup
}

func NewAchievementService(
	db *gorm.DB,
	log *logger.Logger,
	catalog progress.Catalog,
	achievementRepo repos.AchievementRepo,
	userAchievementRepo repos.UserAchievementRepo,
	sessionRepo repos.PracticeSessionRepo,
	userRepo repos.UserRepo,
	locker redis.UserLocker,
	cfg AchievementConfig,
) AchievementService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 30 * time.Second
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 10 * time.Second
	}
	if locker == nil {
		locker = redis.NewLocalUserLocker()
	}
	return &achievementService{
		db:                  db,
		log:                 log.With("service", "AchievementService"),
		catalog:             catalog,
		achievementRepo:     achievementRepo,
		userAchievementRepo: userAchievementRepo,
		sessionRepo:         sessionRepo,
		userRepo:            userRepo,
		locker:              locker,
		reconciler:          progress.NewReconciler(userAchievementRepo, cfg.Now),
		loc:                 cfg.Location,
		checkTimeout:        cfg.CheckTimeout,
		lockWait:            cfg.LockWait,
		now:                 cfg.Now,
	}
}

func emptyResult() progress.Result {
	return progress.Result{Unlocked: []uuid.UUID{}, Updated: []progress.ProgressUpdate{}}
}

func (s *achievementService) CheckAchievements(ctx context.Context, userID uuid.UUID) (progress.Result, error) {
	ctx, span := observability.Tracer().Start(ctxutil.Default(ctx), "achievements.check")
	defer span.End()

	if userID == uuid.Nil {
		return emptyResult(), ErrUnauthorized
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	unlock, err := s.locker.Lock(lockCtx, userID)
	cancel()
	switch {
	case errors.Is(err, redis.ErrLockTimeout):
		span.SetStatus(codes.Error, "lock timeout")
		return emptyResult(), fmt.Errorf("lock user: %w", err)
	case err != nil:
		// The unique index and conditional writes keep this safe unlocked.
		s.log.Warn("User lock unavailable, checking without it", "user_id", userID, "error", err)
	default:
		defer unlock()
	}

	var (
		sessions []*types.PracticeSession
		stored   []*types.Achievement
		existing []*types.UserAchievement
		now      time.Time
	)
	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		var err error
		sessions, err = s.sessionRepo.ListAllByUser(gdbc, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stored, err = s.achievementRepo.ListAll(gdbc)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.userAchievementRepo.ListByUser(gdbc, userID)
		return err
	})
	g.Go(func() error {
		var err error
		now, err = userNow(gdbc, s.userRepo, userID, s.now, s.loc)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load")
		return emptyResult(), fmt.Errorf("load achievement inputs: %w", err)
	}

	stats := progress.ComputeStats(progress.RecordsFromSessions(sessions), now)
	evals, err := progress.Evaluate(s.catalog, stats)
	if err != nil {
		return emptyResult(), err
	}

	idByCode := make(map[string]uuid.UUID, len(stored))
	for _, a := range stored {
		idByCode[a.Code] = a.ID
	}
	targets := make([]progress.Target, 0, len(evals))
	for _, ev := range evals {
		id, ok := idByCode[ev.Code]
		if !ok {
			s.log.Debug("Achievement not seeded, skipping", "code", ev.Code)
			continue
		}
		targets = append(targets, progress.Target{AchievementID: id, Evaluation: ev})
	}

	res, err := s.reconciler.Reconcile(dbctx.Context{Ctx: ctx}, userID, targets, existing)
	span.SetAttributes(
		attribute.Int("achievements.sessions", stats.SessionCount),
		attribute.Int("achievements.unlocked", len(res.Unlocked)),
		attribute.Int("achievements.updated", len(res.Updated)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile")
		return res, err
	}
	if !res.Empty() {
		s.log.Info("Achievements reconciled",
			"user_id", userID,
			"unlocked", len(res.Unlocked),
			"updated", len(res.Updated),
		)
	}
	return res, nil
}

func (s *achievementService) Check(dbc dbctx.Context) (progress.Result, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return emptyResult(), err
	}
	return s.CheckAchievements(dbc.Ctx, userID)
}

func (s *achievementService) CheckAsync(ctx context.Context, userID uuid.UUID, reason string) {
	if userID == uuid.Nil {
		return
	}
	// Detached from the request so the check outlives the response.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctxutil.Default(ctx)), s.checkTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if _, err := s.CheckAchievements(ctx, userID); err != nil {
			s.log.Warn("Background achievement check failed", "user_id", userID, "reason", reason, "error", err)
		}
	}()
}

func (s *achievementService) Wait() {
	s.wg.Wait()
}

func (s *achievementService) Overview(dbc dbctx.Context) (*AchievementOverview, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	res, err := s.CheckAchievements(dbc.Ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		stored []*types.Achievement
		rows   []*types.UserAchievement
		recent []*types.UserAchievement
	)
	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		var err error
		stored, err = s.achievementRepo.ListAll(gdbc)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.userAchievementRepo.ListByUser(gdbc, userID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.userAchievementRepo.ListRecentlyUnlocked(gdbc, userID, recentUnlocksLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	byCode := make(map[string]*types.Achievement, len(stored))
	for _, a := range stored {
		byCode[a.Code] = a
	}
	rowByAchievement := make(map[uuid.UUID]*types.UserAchievement, len(rows))
	for _, r := range rows {
		rowByAchievement[r.AchievementID] = r
	}

	out := &AchievementOverview{
		Achievements:     make([]*AchievementView, 0, s.catalog.Len()),
		RecentlyUnlocked: make([]*AchievementView, 0, len(res.Unlocked)),
		Recent:           make([]*AchievementView, 0, len(recent)),
	}
	viewByID := make(map[uuid.UUID]*AchievementView, len(stored))
	for _, rule := range s.catalog.Rules() {
		a, ok := byCode[rule.Code]
		if !ok {
			continue
		}
		v := &AchievementView{Achievement: a}
		if row := rowByAchievement[a.ID]; row != nil {
			v.Unlocked = row.Unlocked()
			v.UnlockedAt = row.UnlockedAt
			v.Progress = row.Progress
		}
		out.Achievements = append(out.Achievements, v)
		viewByID[a.ID] = v
	}
	for _, id := range res.Unlocked {
		if v, ok := viewByID[id]; ok {
			out.RecentlyUnlocked = append(out.RecentlyUnlocked, v)
		}
	}
	for _, r := range recent {
		if v, ok := viewByID[r.AchievementID]; ok {
			out.Recent = append(out.Recent, v)
		}
	}
	return out, nil
}

func (s *achievementService) Stats(dbc dbctx.Context) (*progress.Stats, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListAllByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	now, err := userNow(dbc, s.userRepo, userID, s.now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	stats := progress.ComputeStats(progress.RecordsFromSessions(sessions), now)
	return &stats, nil
}

// SeedCatalog writes every catalog rule to the achievement table. Safe to
// run on every start.
func (s *achievementService) SeedCatalog(ctx context.Context) (int, error) {
	rules := s.catalog.Rules()
	rows := make([]*types.Achievement, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, &types.Achievement{
			Code:        r.Code,
			Title:       r.Title,
			Description: r.Description,
			Icon:        r.Icon,
			Category:    r.Category,
			Threshold:   r.StoredThreshold(),
		})
	}
	if err := s.achievementRepo.Upsert(dbctx.Context{Ctx: ctxutil.Default(ctx)}, rows); err != nil {
		return 0, fmt.Errorf("seed achievements: %w", err)
	}
	s.log.Info("Achievement catalog seeded", "count", len(rows))
	return len(rows), nil
}

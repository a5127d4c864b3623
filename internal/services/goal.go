package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/data/repos"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/modules/progress"
	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

const goalProgressConcurrency = 4

type GoalWithProgress struct {
	*types.PracticeGoal
	Progress types.GoalProgress `json:"progress"`
}

type CreateGoalInput struct {
	Type         types.GoalType       `json:"type"`
	TargetType   types.GoalTargetType `json:"target_type"`
	TargetValue  int                  `json:"target_value"`
	InstrumentID *uuid.UUID           `json:"instrument_id"`
	Description  string               `json:"description"`
}

type GoalPatch struct {
	TargetValue  OptionalInt    `json:"target_value"`
	InstrumentID OptionalUUID   `json:"instrument_id"`
	Description  OptionalString `json:"description"`
	IsActive     OptionalBool   `json:"is_active"`
}

type GoalService interface {
	List(dbc dbctx.Context, activeOnly bool) ([]*GoalWithProgress, error)
	Create(dbc dbctx.Context, in CreateGoalInput) (*GoalWithProgress, error)
	Update(dbc dbctx.Context, goalID uuid.UUID, patch GoalPatch) (*GoalWithProgress, error)
	Delete(dbc dbctx.Context, goalID uuid.UUID) error
	Progress(dbc dbctx.Context, goalID uuid.UUID) (types.GoalProgress, error)
	// CalculateGoalProgress measures goal against the user's sessions in
	// its current window, evaluated in the user's timezone.
	CalculateGoalProgress(dbc dbctx.Context, userID uuid.UUID, goal *types.PracticeGoal) (types.GoalProgress, error)
}

type goalService struct {
	db             *gorm.DB
	log            *logger.Logger
	goalRepo       repos.PracticeGoalRepo
	instrumentRepo repos.InstrumentRepo
	sessionRepo    repos.PracticeSessionRepo
	userRepo       repos.UserRepo
	loc            *time.Location
	now            func() time.Time
}

func NewGoalService(
	db *gorm.DB,
	log *logger.Logger,
	goalRepo repos.PracticeGoalRepo,
	instrumentRepo repos.InstrumentRepo,
	sessionRepo repos.PracticeSessionRepo,
	userRepo repos.UserRepo,
	loc *time.Location,
	now func() time.Time,
) GoalService {
	if now == nil {
		now = time.Now
	}
	return &goalService{
		db:             db,
		log:            log.With("service", "GoalService"),
		goalRepo:       goalRepo,
		instrumentRepo: instrumentRepo,
		sessionRepo:    sessionRepo,
		userRepo:       userRepo,
		loc:            loc,
		now:            now,
	}
}

func (s *goalService) CalculateGoalProgress(dbc dbctx.Context, userID uuid.UUID, goal *types.PracticeGoal) (types.GoalProgress, error) {
	now, err := userNow(dbc, s.userRepo, userID, s.now, s.loc)
	if err != nil {
		return types.GoalProgress{}, fmt.Errorf("load user: %w", err)
	}
	return s.progressAt(dbc, userID, goal, now)
}

func (s *goalService) progressAt(dbc dbctx.Context, userID uuid.UUID, goal *types.PracticeGoal, now time.Time) (types.GoalProgress, error) {
	start, end := progress.GoalWindow(goal.Type, now)
	sessions, err := s.sessionRepo.ListByUserInRange(dbc, userID, start, end)
	if err != nil {
		return types.GoalProgress{}, fmt.Errorf("load sessions: %w", err)
	}
	return progress.CalculateGoalProgress(goal, progress.RecordsFromSessions(sessions), now), nil
}

func (s *goalService) List(dbc dbctx.Context, activeOnly bool) ([]*GoalWithProgress, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.ListByUser(dbc, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	now, err := userNow(dbc, s.userRepo, userID, s.now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	out := make([]*GoalWithProgress, len(goals))
	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	g.SetLimit(goalProgressConcurrency)
	gdbc := dbctx.Context{Ctx: gctx}
	for i, goal := range goals {
		g.Go(func() error {
			p, err := s.progressAt(gdbc, userID, goal, now)
			if err != nil {
				return err
			}
			out[i] = &GoalWithProgress{PracticeGoal: goal, Progress: p}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *goalService) checkInstrument(dbc dbctx.Context, userID uuid.UUID, instrumentID *uuid.UUID) error {
	if instrumentID == nil {
		return nil
	}
	inst, err := s.instrumentRepo.GetByIDForUser(dbc, userID, *instrumentID)
	if err != nil {
		return fmt.Errorf("load instrument: %w", err)
	}
	if inst == nil {
		return ErrInstrumentNotFound
	}
	return nil
}

func (s *goalService) Create(dbc dbctx.Context, in CreateGoalInput) (*GoalWithProgress, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, invalid("invalid_goal_type", "type must be daily, weekly or monthly")
	}
	if !in.TargetType.Valid() {
		return nil, invalid("invalid_target_type", "target_type must be time, sessions or bpm")
	}
	if in.TargetValue <= 0 {
		return nil, invalid("invalid_target_value", "target_value must be positive")
	}
	if in.InstrumentID != nil && *in.InstrumentID == uuid.Nil {
		in.InstrumentID = nil
	}
	if err := s.checkInstrument(dbc, userID, in.InstrumentID); err != nil {
		return nil, err
	}

	goal := &types.PracticeGoal{
		UserID:       userID,
		Type:         in.Type,
		TargetType:   in.TargetType,
		TargetValue:  in.TargetValue,
		InstrumentID: in.InstrumentID,
		IsActive:     true,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		goal.Description = &d
	}
	if _, err := s.goalRepo.Create(dbc, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	p, err := s.CalculateGoalProgress(dbc, userID, goal)
	if err != nil {
		return nil, err
	}
	return &GoalWithProgress{PracticeGoal: goal, Progress: p}, nil
}

func (s *goalService) Update(dbc dbctx.Context, goalID uuid.UUID, patch GoalPatch) (*GoalWithProgress, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.TargetValue.Set {
		if patch.TargetValue.Value == nil || *patch.TargetValue.Value <= 0 {
			return nil, invalid("invalid_target_value", "target_value must be positive")
		}
		updates["target_value"] = *patch.TargetValue.Value
	}
	if patch.InstrumentID.Set {
		if err := s.checkInstrument(dbc, userID, patch.InstrumentID.Value); err != nil {
			return nil, err
		}
		updates["instrument_id"] = patch.InstrumentID.Value
	}
	if patch.Description.Set {
		updates["description"] = patch.Description.Value
	}
	if patch.IsActive.Set {
		if patch.IsActive.Value == nil {
			return nil, invalid("invalid_request", "is_active cannot be null")
		}
		updates["is_active"] = *patch.IsActive.Value
	}

	if len(updates) > 0 {
		ok, err := s.goalRepo.UpdateFields(dbc, userID, goalID, updates)
		if err != nil {
			return nil, fmt.Errorf("update goal: %w", err)
		}
		if !ok {
			return nil, ErrGoalNotFound
		}
	}
	goal, err := s.goalRepo.GetByIDForUser(dbc, userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("load goal: %w", err)
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	p, err := s.CalculateGoalProgress(dbc, userID, goal)
	if err != nil {
		return nil, err
	}
	return &GoalWithProgress{PracticeGoal: goal, Progress: p}, nil
}

func (s *goalService) Delete(dbc dbctx.Context, goalID uuid.UUID) error {
	userID, err := requireUser(dbc)
	if err != nil {
		return err
	}
	deleted, err := s.goalRepo.Delete(dbc, userID, goalID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if !deleted {
		return ErrGoalNotFound
	}
	return nil
}

func (s *goalService) Progress(dbc dbctx.Context, goalID uuid.UUID) (types.GoalProgress, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return types.GoalProgress{}, err
	}
	goal, err := s.goalRepo.GetByIDForUser(dbc, userID, goalID)
	if err != nil {
		return types.GoalProgress{}, fmt.Errorf("load goal: %w", err)
	}
	if goal == nil {
		return types.GoalProgress{}, ErrGoalNotFound
	}
	return s.CalculateGoalProgress(dbc, userID, goal)
}

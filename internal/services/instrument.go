package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/data/repos"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/apierr"
	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

// builtinInstruments are the types the client ships presets for; anything
// else is stored as a custom instrument.
var builtinInstruments = map[string]struct{}{
	"guitar":   {},
	"bass":     {},
	"drums":    {},
	"keyboard": {},
	"piano":    {},
	"violin":   {},
	"ukulele":  {},
	"vocal":    {},
}

type CreateInstrumentInput struct {
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

type InstrumentService interface {
	List(dbc dbctx.Context) ([]*types.Instrument, error)
	Create(dbc dbctx.Context, in CreateInstrumentInput) (*types.Instrument, error)
	Delete(dbc dbctx.Context, instrumentID uuid.UUID) error
}

type instrumentService struct {
	db             *gorm.DB
	log            *logger.Logger
	instrumentRepo repos.InstrumentRepo
	sessionRepo    repos.PracticeSessionRepo
	goalRepo       repos.PracticeGoalRepo
}

func NewInstrumentService(db *gorm.DB, log *logger.Logger, instrumentRepo repos.InstrumentRepo, sessionRepo repos.PracticeSessionRepo, goalRepo repos.PracticeGoalRepo) InstrumentService {
	return &instrumentService{
		db:             db,
		log:            log.With("service", "InstrumentService"),
		instrumentRepo: instrumentRepo,
		sessionRepo:    sessionRepo,
		goalRepo:       goalRepo,
	}
}

func (s *instrumentService) List(dbc dbctx.Context) ([]*types.Instrument, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	return s.instrumentRepo.ListByUser(dbc, userID)
}

func (s *instrumentService) Create(dbc dbctx.Context, in CreateInstrumentInput) (*types.Instrument, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	name := strings.TrimSpace(in.Name)
	if kind == "" || name == "" {
		return nil, invalid("invalid_request", "instrument type and name are required")
	}
	var settings datatypes.JSON
	if len(in.Settings) > 0 && string(in.Settings) != "null" {
		if !json.Valid(in.Settings) {
			return nil, invalid("invalid_settings", "settings must be valid JSON")
		}
		settings = datatypes.JSON(in.Settings)
	}
	_, builtin := builtinInstruments[kind]
	inst, err := s.instrumentRepo.Create(dbc, &types.Instrument{
		UserID:   userID,
		Type:     kind,
		Name:     name,
		IsCustom: !builtin,
		Settings: settings,
	})
	if err != nil {
		return nil, fmt.Errorf("create instrument: %w", err)
	}
	return inst, nil
}

// Delete refuses instruments that still have practice history, since
// sessions and the stats derived from them reference the instrument.
// Goals scoped to it fall back to all instruments.
func (s *instrumentService) Delete(dbc dbctx.Context, instrumentID uuid.UUID) error {
	userID, err := requireUser(dbc)
	if err != nil {
		return err
	}
	ctx := ctxutil.Default(dbc.Ctx)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		inst, err := s.instrumentRepo.GetByIDForUser(inner, userID, instrumentID)
		if err != nil {
			return fmt.Errorf("load instrument: %w", err)
		}
		if inst == nil {
			return ErrInstrumentNotFound
		}
		n, err := s.sessionRepo.CountByInstrument(inner, userID, instrumentID)
		if err != nil {
			return fmt.Errorf("count sessions: %w", err)
		}
		if n > 0 {
			return apierr.Conflict("instrument_in_use", errors.New("instrument has practice sessions"))
		}
		if err := s.goalRepo.ClearInstrument(inner, userID, instrumentID); err != nil {
			return fmt.Errorf("unscope goals: %w", err)
		}
		if _, err := s.instrumentRepo.Delete(inner, userID, instrumentID); err != nil {
			return fmt.Errorf("delete instrument: %w", err)
		}
		return nil
	})
}

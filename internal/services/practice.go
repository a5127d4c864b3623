package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/data/repos"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/domain/practice"
	"github.com/yungbote/riffbook-backend/internal/platform/apierr"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

const (
	minBPM            = 30
	maxBPM            = 300
	maxSessionListLen = 100
)

type StartSessionInput struct {
	InstrumentID  uuid.UUID           `json:"instrument_id"`
	ContentType   string              `json:"content_type"`
	ContentTitle  string              `json:"content_title"`
	ContentSource types.ContentSource `json:"content_source"`
	Difficulty    string              `json:"difficulty"`
	BPM           int                 `json:"bpm"`
	TimeSignature string              `json:"time_signature"`
	NotationMode  string              `json:"notation_mode"`
}

type EndSessionInput struct {
	DurationSeconds int64           `json:"duration_seconds"`
	FinalBPM        int             `json:"final_bpm"`
	CompletionRate  *float64        `json:"completion_rate"`
	SessionData     json.RawMessage `json:"session_data"`
}

type CommentInput struct {
	Comment            string   `json:"comment"`
	QuickTags          []string `json:"quick_tags"`
	SatisfactionRating *int     `json:"satisfaction_rating"`
}

type PracticeService interface {
	Start(dbc dbctx.Context, in StartSessionInput) (*types.PracticeSession, error)
	// End records duration and tempo. Sessions shorter than
	// MinSessionSeconds are discarded and ErrDurationTooShort is returned.
	End(dbc dbctx.Context, sessionID uuid.UUID, in EndSessionInput) (*types.PracticeSession, error)
	Comment(dbc dbctx.Context, sessionID uuid.UUID, in CommentInput) (*types.PracticeSession, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.PracticeSession, error)
	Get(dbc dbctx.Context, sessionID uuid.UUID) (*types.PracticeSession, error)
	Delete(dbc dbctx.Context, sessionID uuid.UUID) error
}

type practiceService struct {
	db             *gorm.DB
	log            *logger.Logger
	instrumentRepo repos.InstrumentRepo
	sessionRepo    repos.PracticeSessionRepo
	achievements   AchievementTrigger
	now            func() time.Time
}

func NewPracticeService(
	db *gorm.DB,
	log *logger.Logger,
	instrumentRepo repos.InstrumentRepo,
	sessionRepo repos.PracticeSessionRepo,
	achievements AchievementTrigger,
	now func() time.Time,
) PracticeService {
	if now == nil {
		now = time.Now
	}
	return &practiceService{
		db:             db,
		log:            log.With("service", "PracticeService"),
		instrumentRepo: instrumentRepo,
		sessionRepo:    sessionRepo,
		achievements:   achievements,
		now:            now,
	}
}

// defaultSessionData seeds the structure the practice client appends to.
func defaultSessionData(bpm int, timeSignature string) datatypes.JSON {
	raw, _ := json.Marshal(map[string]any{
		"metronome": map[string]any{
			"initial_bpm":    bpm,
			"bpm_changes":    []any{},
			"time_signature": timeSignature,
		},
		"playback": map[string]any{
			"play_count":          0,
			"pause_count":         0,
			"total_pause_seconds": 0,
			"loop_sections":       []any{},
		},
		"notation_switches": []any{},
	})
	return datatypes.JSON(raw)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func (s *practiceService) Start(dbc dbctx.Context, in StartSessionInput) (*types.PracticeSession, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	if in.InstrumentID == uuid.Nil {
		return nil, invalid("invalid_request", "instrument_id is required")
	}
	inst, err := s.instrumentRepo.GetByIDForUser(dbc, userID, in.InstrumentID)
	if err != nil {
		return nil, fmt.Errorf("load instrument: %w", err)
	}
	if inst == nil {
		return nil, ErrInstrumentNotFound
	}

	bpm := in.BPM
	if bpm == 0 {
		bpm = practice.DefaultBPM
	}
	if bpm < minBPM || bpm > maxBPM {
		return nil, invalid("invalid_bpm", "bpm must be between %d and %d", minBPM, maxBPM)
	}
	source := in.ContentSource
	if source == "" {
		source = types.ContentSourceCustom
	}
	if !source.Valid() {
		return nil, invalid("invalid_content_source", "unknown content source %q", source)
	}
	timeSignature := orDefault(in.TimeSignature, practice.DefaultTimeSignature)

	var title *string
	if t := strings.TrimSpace(in.ContentTitle); t != "" {
		title = &t
	}
	session := &types.PracticeSession{
		UserID:        userID,
		InstrumentID:  inst.ID,
		StartedAt:     s.now().UTC(),
		ContentType:   orDefault(in.ContentType, practice.DefaultContentType),
		ContentTitle:  title,
		ContentSource: source,
		Difficulty:    orDefault(in.Difficulty, practice.DefaultDifficulty),
		InitialBPM:    bpm,
		FinalBPM:      bpm,
		TimeSignature: timeSignature,
		NotationMode:  orDefault(in.NotationMode, practice.DefaultNotationMode),
		SessionData:   defaultSessionData(bpm, timeSignature),
	}
	if _, err := s.sessionRepo.Create(dbc, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.log.Debug("Practice session started", "user_id", userID, "session_id", session.ID)
	return session, nil
}

func (s *practiceService) End(dbc dbctx.Context, sessionID uuid.UUID, in EndSessionInput) (*types.PracticeSession, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByIDForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.EndedAt != nil {
		return nil, apierr.Conflict("session_already_ended", errors.New("session has already ended"))
	}

	if in.DurationSeconds < MinSessionSeconds {
		if _, err := s.sessionRepo.Delete(dbc, userID, sessionID); err != nil {
			return nil, fmt.Errorf("discard short session: %w", err)
		}
		s.log.Info("Discarded short practice session", "user_id", userID, "session_id", sessionID, "duration_seconds", in.DurationSeconds)
		return nil, ErrDurationTooShort
	}

	finalBPM := in.FinalBPM
	if finalBPM == 0 {
		finalBPM = session.InitialBPM
	}
	if finalBPM < minBPM || finalBPM > maxBPM {
		return nil, invalid("invalid_bpm", "final_bpm must be between %d and %d", minBPM, maxBPM)
	}
	if in.CompletionRate != nil && (*in.CompletionRate < 0 || *in.CompletionRate > 1) {
		return nil, invalid("invalid_completion_rate", "completion_rate must be between 0 and 1")
	}

	endedAt := s.now().UTC()
	updates := map[string]any{
		"ended_at":         endedAt,
		"duration_seconds": in.DurationSeconds,
		"final_bpm":        finalBPM,
	}
	if in.CompletionRate != nil {
		updates["completion_rate"] = *in.CompletionRate
	}
	if len(in.SessionData) > 0 && string(in.SessionData) != "null" {
		if !json.Valid(in.SessionData) {
			return nil, invalid("invalid_session_data", "session_data must be valid JSON")
		}
		updates["session_data"] = datatypes.JSON(in.SessionData)
	}
	if _, err := s.sessionRepo.UpdateFields(dbc, userID, sessionID, updates); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	s.trigger(dbc, userID, "session_end")
	return s.sessionRepo.GetByIDForUser(dbc, userID, sessionID)
}

func (s *practiceService) Comment(dbc dbctx.Context, sessionID uuid.UUID, in CommentInput) (*types.PracticeSession, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByIDForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if in.SatisfactionRating != nil && (*in.SatisfactionRating < 1 || *in.SatisfactionRating > 5) {
		return nil, invalid("invalid_rating", "satisfaction_rating must be between 1 and 5")
	}

	updates := map[string]any{
		"user_comment":         nil,
		"quick_tags":           nil,
		"satisfaction_rating":  nil,
		"comment_submitted_at": s.now().UTC(),
	}
	if c := strings.TrimSpace(in.Comment); c != "" {
		updates["user_comment"] = c
	}
	if tags := cleanTags(in.QuickTags); len(tags) > 0 {
		raw, err := json.Marshal(tags)
		if err != nil {
			return nil, err
		}
		updates["quick_tags"] = datatypes.JSON(raw)
	}
	if in.SatisfactionRating != nil {
		updates["satisfaction_rating"] = *in.SatisfactionRating
	}
	if _, err := s.sessionRepo.UpdateFields(dbc, userID, sessionID, updates); err != nil {
		return nil, fmt.Errorf("comment session: %w", err)
	}

	s.trigger(dbc, userID, "session_comment")
	return s.sessionRepo.GetByIDForUser(dbc, userID, sessionID)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (s *practiceService) trigger(dbc dbctx.Context, userID uuid.UUID, reason string) {
	if s.achievements == nil {
		return
	}
	s.achievements.CheckAsync(dbc.Ctx, userID, reason)
}

func (s *practiceService) List(dbc dbctx.Context, limit, offset int) ([]*types.PracticeSession, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxSessionListLen {
		limit = maxSessionListLen
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessionRepo.ListByUser(dbc, userID, limit, offset)
}

func (s *practiceService) Get(dbc dbctx.Context, sessionID uuid.UUID) (*types.PracticeSession, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByIDForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *practiceService) Delete(dbc dbctx.Context, sessionID uuid.UUID) error {
	userID, err := requireUser(dbc)
	if err != nil {
		return err
	}
	deleted, err := s.sessionRepo.Delete(dbc, userID, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/riffbook-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    "pw",
		DisplayName: "Player",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedInstrument(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string) *types.Instrument {
	tb.Helper()
	inst := &types.Instrument{
		ID:     uuid.New(),
		UserID: userID,
		Type:   kind,
		Name:   kind,
	}
	if err := tx.WithContext(ctx).Create(inst).Error; err != nil {
		tb.Fatalf("seed instrument: %v", err)
	}
	return inst
}

// SessionSeed describes an already-ended session.
type SessionSeed struct {
	InstrumentID    uuid.UUID
	StartedAt       time.Time
	DurationSeconds int64
	FinalBPM        int
	CompletionRate  *float64
	ContentSource   types.ContentSource
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, seed SessionSeed) *types.PracticeSession {
	tb.Helper()
	started := seed.StartedAt.UTC()
	ended := started.Add(time.Duration(seed.DurationSeconds) * time.Second)
	source := seed.ContentSource
	if source == "" {
		source = types.ContentSourceUserSelected
	}
	bpm := seed.FinalBPM
	if bpm == 0 {
		bpm = 120
	}
	s := &types.PracticeSession{
		ID:              uuid.New(),
		UserID:          userID,
		InstrumentID:    seed.InstrumentID,
		StartedAt:       started,
		EndedAt:         &ended,
		DurationSeconds: seed.DurationSeconds,
		ContentType:     "free",
		ContentSource:   source,
		Difficulty:      "intermediate",
		InitialBPM:      bpm,
		FinalBPM:        bpm,
		TimeSignature:   "4/4",
		NotationMode:    "tab",
		CompletionRate:  seed.CompletionRate,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedGoal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, typ types.GoalType, target types.GoalTargetType, value int) *types.PracticeGoal {
	tb.Helper()
	g := &types.PracticeGoal{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        typ,
		TargetType:  target,
		TargetValue: value,
		IsActive:    true,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed goal: %v", err)
	}
	return g
}

func SeedAchievement(tb testing.TB, ctx context.Context, tx *gorm.DB, code, category string, threshold int) *types.Achievement {
	tb.Helper()
	a := &types.Achievement{
		ID:          uuid.New(),
		Code:        code,
		Title:       code,
		Description: code,
		Category:    category,
		Threshold:   threshold,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return a
}

func RatePtr(v float64) *float64 { return &v }

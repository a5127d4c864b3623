package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/riffbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/riffbook-backend/internal/domain"
)

func TestPractice_StartAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	inst := testutil.SeedInstrument(t, context.Background(), env.db, u.ID, "guitar")
	dbc := asUser(u.ID)

	s, err := env.practice.Start(dbc, StartSessionInput{InstrumentID: inst.ID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.ContentType != "free" || s.InitialBPM != 120 || s.TimeSignature != "4/4" ||
		s.NotationMode != "tab" || s.Difficulty != "intermediate" || s.ContentSource != types.ContentSourceCustom {
		t.Fatalf("defaults not applied: %+v", s)
	}
	if !s.StartedAt.Equal(fixedNow) || s.EndedAt != nil {
		t.Fatalf("unexpected timestamps: started=%v ended=%v", s.StartedAt, s.EndedAt)
	}
	var data map[string]any
	if err := json.Unmarshal(s.SessionData, &data); err != nil {
		t.Fatalf("session data: %v", err)
	}
	for _, key := range []string{"metronome", "playback", "notation_switches"} {
		if _, ok := data[key]; !ok {
			t.Fatalf("session data missing %q: %s", key, s.SessionData)
		}
	}
}

func TestPractice_StartValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	other := env.seedUser(t)
	inst := testutil.SeedInstrument(t, context.Background(), env.db, u.ID, "guitar")
	foreign := testutil.SeedInstrument(t, context.Background(), env.db, other.ID, "bass")
	dbc := asUser(u.ID)

	cases := []struct {
		name string
		in   StartSessionInput
		code string
	}{
		{"missing instrument", StartSessionInput{}, "invalid_request"},
		{"foreign instrument", StartSessionInput{InstrumentID: foreign.ID}, "instrument_not_found"},
		{"bpm too low", StartSessionInput{InstrumentID: inst.ID, BPM: 10}, "invalid_bpm"},
		{"bpm too high", StartSessionInput{InstrumentID: inst.ID, BPM: 400}, "invalid_bpm"},
		{"bad source", StartSessionInput{InstrumentID: inst.ID, ContentSource: "radio"}, "invalid_content_source"},
	}
	for _, tc := range cases {
		if _, err := env.practice.Start(dbc, tc.in); apiCode(err) != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
	if _, err := env.practice.Start(asUser(uuid.Nil), StartSessionInput{InstrumentID: inst.ID}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestPractice_EndShorterThanMinimumDiscardsSession(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	inst := testutil.SeedInstrument(t, context.Background(), env.db, u.ID, "guitar")
	dbc := asUser(u.ID)

	s, err := env.practice.Start(dbc, StartSessionInput{InstrumentID: inst.ID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := env.practice.End(dbc, s.ID, EndSessionInput{DurationSeconds: MinSessionSeconds - 1}); !errors.Is(err, ErrDurationTooShort) {
		t.Fatalf("expected ErrDurationTooShort, got %v", err)
	}
	if _, err := env.practice.Get(dbc, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("short session should be deleted, got %v", err)
	}
}

func TestPractice_EndRecordsAndTriggersCheck(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	inst := testutil.SeedInstrument(t, context.Background(), env.db, u.ID, "guitar")
	dbc := asUser(u.ID)

	s, err := env.practice.Start(dbc, StartSessionInput{InstrumentID: inst.ID, BPM: 90})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	rate := 1.0
	ended, err := env.practice.End(dbc, s.ID, EndSessionInput{DurationSeconds: MinSessionSeconds, CompletionRate: &rate})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.EndedAt == nil || ended.DurationSeconds != MinSessionSeconds || ended.FinalBPM != 90 {
		t.Fatalf("unexpected ended session: %+v", ended)
	}
	if _, err := env.practice.End(dbc, s.ID, EndSessionInput{DurationSeconds: 120}); apiCode(err) != "session_already_ended" {
		t.Fatalf("expected session_already_ended, got %v", err)
	}

	env.achievements.Wait()
	rows, err := env.userAchievementRepo.ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("list user achievements: %v", err)
	}
	byID := map[uuid.UUID]*types.UserAchievement{}
	for _, r := range rows {
		byID[r.AchievementID] = r
	}
	stored, err := env.achievementRepo.ListAll(dbc)
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	for _, a := range stored {
		row := byID[a.ID]
		switch a.Code {
		case "complete_first":
			if row == nil || !row.Unlocked() {
				t.Fatalf("complete_first should unlock after a full run-through")
			}
		case "practice_1h":
			if row == nil || row.Unlocked() || row.Progress != 2 {
				t.Fatalf("practice_1h should track 2%% progress, got %+v", row)
			}
		}
	}
}

func TestPractice_CommentAndDelete(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	inst := testutil.SeedInstrument(t, context.Background(), env.db, u.ID, "guitar")
	dbc := asUser(u.ID)

	s, err := env.practice.Start(dbc, StartSessionInput{InstrumentID: inst.ID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	bad := 6
	if _, err := env.practice.Comment(dbc, s.ID, CommentInput{SatisfactionRating: &bad}); apiCode(err) != "invalid_rating" {
		t.Fatalf("expected invalid_rating, got %v", err)
	}
	rating := 4
	got, err := env.practice.Comment(dbc, s.ID, CommentInput{
		Comment:            "  clean alternate picking ",
		QuickTags:          []string{"focus", "", "focus", "tired"},
		SatisfactionRating: &rating,
	})
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if got.UserComment == nil || *got.UserComment != "clean alternate picking" {
		t.Fatalf("unexpected comment: %v", got.UserComment)
	}
	var tags []string
	if err := json.Unmarshal(got.QuickTags, &tags); err != nil || len(tags) != 2 {
		t.Fatalf("unexpected tags %s (%v)", got.QuickTags, err)
	}
	if got.SatisfactionRating == nil || *got.SatisfactionRating != 4 || got.CommentSubmittedAt == nil {
		t.Fatalf("rating not stored: %+v", got)
	}

	other := env.seedUser(t)
	if err := env.practice.Delete(asUser(other.ID), s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("other users must not delete the session, got %v", err)
	}
	if err := env.practice.Delete(dbc, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := env.practice.List(dbc, 0, 0)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty history, got %d (%v)", len(list), err)
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/riffbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/riffbook-backend/internal/domain"
)

func TestGoals_CreateListAndProgress(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	ctx := context.Background()
	guitar := testutil.SeedInstrument(t, ctx, env.db, u.ID, "guitar")
	bass := testutil.SeedInstrument(t, ctx, env.db, u.ID, "bass")
	dbc := asUser(u.ID)

	// fixedNow is Wednesday 2026-05-20; the week began Sunday 05-17.
	seeds := []testutil.SessionSeed{
		{InstrumentID: guitar.ID, StartedAt: fixedNow.Add(-time.Hour), DurationSeconds: 20 * 60, FinalBPM: 110},
		{InstrumentID: bass.ID, StartedAt: fixedNow.Add(-2 * time.Hour), DurationSeconds: 10 * 60, FinalBPM: 140},
		{InstrumentID: guitar.ID, StartedAt: time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC), DurationSeconds: 30 * 60, FinalBPM: 100},
		{InstrumentID: guitar.ID, StartedAt: time.Date(2026, 5, 16, 23, 59, 59, 0, time.UTC), DurationSeconds: 90 * 60, FinalBPM: 200},
	}
	for _, s := range seeds {
		testutil.SeedSession(t, ctx, env.db, u.ID, s)
	}

	daily, err := env.goals.Create(dbc, CreateGoalInput{Type: types.GoalDaily, TargetType: types.GoalTargetTime, TargetValue: 60})
	if err != nil {
		t.Fatalf("create daily: %v", err)
	}
	if daily.Progress.Current != 30 || daily.Progress.Percentage != 50 || daily.Progress.IsAchieved {
		t.Fatalf("daily progress: %+v", daily.Progress)
	}

	weeklyGuitar, err := env.goals.Create(dbc, CreateGoalInput{
		Type:         types.GoalWeekly,
		TargetType:   types.GoalTargetSessions,
		TargetValue:  2,
		InstrumentID: &guitar.ID,
		Description:  "guitar twice a week",
	})
	if err != nil {
		t.Fatalf("create weekly: %v", err)
	}
	if weeklyGuitar.Progress.Current != 2 || weeklyGuitar.Progress.Percentage != 100 || !weeklyGuitar.Progress.IsAchieved {
		t.Fatalf("weekly progress: %+v", weeklyGuitar.Progress)
	}

	monthlyBPM, err := env.goals.Create(dbc, CreateGoalInput{Type: types.GoalMonthly, TargetType: types.GoalTargetBPM, TargetValue: 180})
	if err != nil {
		t.Fatalf("create monthly: %v", err)
	}
	if monthlyBPM.Progress.Current != 200 || monthlyBPM.Progress.Percentage != 100 || !monthlyBPM.Progress.IsAchieved {
		t.Fatalf("monthly progress: %+v", monthlyBPM.Progress)
	}

	list, err := env.goals.List(dbc, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 goals, got %d", len(list))
	}
	for _, g := range list {
		if g.Progress.GoalID != g.ID {
			t.Fatalf("progress attached to the wrong goal: %+v", g)
		}
	}

	p, err := env.goals.Progress(dbc, weeklyGuitar.ID)
	if err != nil || p.Current != 2 {
		t.Fatalf("progress: %+v (%v)", p, err)
	}
}

func TestGoals_Validation(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	other := env.seedUser(t)
	foreign := testutil.SeedInstrument(t, context.Background(), env.db, other.ID, "drums")
	dbc := asUser(u.ID)

	cases := []struct {
		name string
		in   CreateGoalInput
		code string
	}{
		{"bad type", CreateGoalInput{Type: "yearly", TargetType: types.GoalTargetTime, TargetValue: 10}, "invalid_goal_type"},
		{"bad target", CreateGoalInput{Type: types.GoalDaily, TargetType: "notes", TargetValue: 10}, "invalid_target_type"},
		{"zero value", CreateGoalInput{Type: types.GoalDaily, TargetType: types.GoalTargetTime}, "invalid_target_value"},
		{"foreign instrument", CreateGoalInput{Type: types.GoalDaily, TargetType: types.GoalTargetTime, TargetValue: 5, InstrumentID: &foreign.ID}, "instrument_not_found"},
	}
	for _, tc := range cases {
		if _, err := env.goals.Create(dbc, tc.in); apiCode(err) != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestGoals_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	dbc := asUser(u.ID)
	g := testutil.SeedGoal(t, context.Background(), env.db, u.ID, types.GoalDaily, types.GoalTargetTime, 30)

	var patch GoalPatch
	if err := json.Unmarshal([]byte(`{"target_value": 45, "description": "warm up", "is_active": false}`), &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	updated, err := env.goals.Update(dbc, g.ID, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TargetValue != 45 || updated.IsActive || updated.Description == nil || *updated.Description != "warm up" {
		t.Fatalf("unexpected goal: %+v", updated.PracticeGoal)
	}
	if updated.Progress.Target != 45 {
		t.Fatalf("progress should use the new target: %+v", updated.Progress)
	}

	active, err := env.goals.List(dbc, true)
	if err != nil || len(active) != 0 {
		t.Fatalf("inactive goal listed as active: %d (%v)", len(active), err)
	}

	var bad GoalPatch
	if err := json.Unmarshal([]byte(`{"target_value": 0}`), &bad); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	if _, err := env.goals.Update(dbc, g.ID, bad); apiCode(err) != "invalid_target_value" {
		t.Fatalf("expected invalid_target_value, got %v", err)
	}

	if err := env.goals.Delete(asUser(env.seedUser(t).ID), g.ID); !errors.Is(err, ErrGoalNotFound) {
		t.Fatalf("other users must not delete the goal, got %v", err)
	}
	if err := env.goals.Delete(dbc, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.goals.Progress(dbc, g.ID); !errors.Is(err, ErrGoalNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestInstruments_DeleteRules(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t)
	dbc := asUser(u.ID)

	used, err := env.instruments.Create(dbc, CreateInstrumentInput{Type: "Guitar", Name: "Strat"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if used.Type != "guitar" || used.IsCustom {
		t.Fatalf("builtin instrument marked custom: %+v", used)
	}
	spare, err := env.instruments.Create(dbc, CreateInstrumentInput{Type: "theremin", Name: "Moog"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !spare.IsCustom {
		t.Fatalf("theremin should be custom")
	}

	testutil.SeedSession(t, context.Background(), env.db, u.ID, testutil.SessionSeed{InstrumentID: used.ID, StartedAt: fixedNow, DurationSeconds: 600})
	if err := env.instruments.Delete(dbc, used.ID); apiCode(err) != "instrument_in_use" {
		t.Fatalf("expected instrument_in_use, got %v", err)
	}

	g, err := env.goals.Create(dbc, CreateGoalInput{Type: types.GoalDaily, TargetType: types.GoalTargetTime, TargetValue: 10, InstrumentID: &spare.ID})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if err := env.instruments.Delete(dbc, spare.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	stored, err := env.goalRepo.GetByIDForUser(dbc, u.ID, g.ID)
	if err != nil || stored == nil || stored.InstrumentID != nil {
		t.Fatalf("goal should survive unscoped: %+v (%v)", stored, err)
	}
	if err := env.instruments.Delete(dbc, spare.ID); !errors.Is(err, ErrInstrumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

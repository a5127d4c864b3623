package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/riffbook-backend/internal/domain"
)

func ratePtr(v float64) *float64 { return &v }

func evaluationsByCode(t *testing.T, stats Stats) map[string]Evaluation {
	t.Helper()
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	evs, err := Evaluate(c, stats)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	out := make(map[string]Evaluation, len(evs))
	for _, ev := range evs {
		out[ev.Code] = ev
	}
	return out
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)
	guitar, piano := uuid.New(), uuid.New()
	sessions := []SessionRecord{
		{InstrumentID: guitar, StartedAt: now.Add(-1 * time.Hour), DurationSeconds: 1800, FinalBPM: 110, CompletionRate: ratePtr(0.95), ContentSource: types.ContentSourceAIRecommended},
		{InstrumentID: guitar, StartedAt: now.Add(-25 * time.Hour), DurationSeconds: 3600, FinalBPM: 140, CompletionRate: ratePtr(0.5), ContentSource: types.ContentSourceUserSelected},
		{InstrumentID: piano, StartedAt: now.Add(-49 * time.Hour), DurationSeconds: 5400, FinalBPM: 90, ContentSource: types.ContentSourceAIRecommended},
		{InstrumentID: piano, StartedAt: now.Add(-30 * 24 * time.Hour), DurationSeconds: -20, CompletionRate: ratePtr(0.9)},
	}
	st := ComputeStats(sessions, now)

	if st.SessionCount != 4 {
		t.Fatalf("SessionCount = %d", st.SessionCount)
	}
	if st.TotalSeconds != 10800 || st.TotalHours != 3 {
		t.Fatalf("expected 3h total, got %ds / %vh", st.TotalSeconds, st.TotalHours)
	}
	if st.InstrumentCount != 2 {
		t.Fatalf("InstrumentCount = %d", st.InstrumentCount)
	}
	if st.MaxBPM != 140 {
		t.Fatalf("MaxBPM = %d", st.MaxBPM)
	}
	if st.CompletionCount != 2 {
		t.Fatalf("CompletionCount = %d, want 2 (0.95 and 0.9)", st.CompletionCount)
	}
	if st.AIRecommendationCount != 2 {
		t.Fatalf("AIRecommendationCount = %d", st.AIRecommendationCount)
	}
	if st.Streak != 3 {
		t.Fatalf("Streak = %d", st.Streak)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	st := ComputeStats(nil, time.Now())
	if st != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", st)
	}
	for code, ev := range evaluationsByCode(t, st) {
		if ev.Progress != 0 || ev.Reached {
			t.Fatalf("%s should be untouched for an empty history: %+v", code, ev)
		}
	}
}

func TestEvaluate_ScenarioFromHistory(t *testing.T) {
	now := time.Date(2026, 5, 20, 21, 0, 0, 0, time.UTC)
	guitar, bass := uuid.New(), uuid.New()
	sessions := []SessionRecord{
		{InstrumentID: guitar, StartedAt: now.Add(-2 * time.Hour), DurationSeconds: 4 * 3600, FinalBPM: 130},
		{InstrumentID: bass, StartedAt: now.Add(-26 * time.Hour), DurationSeconds: 3 * 3600, FinalBPM: 130},
		{InstrumentID: guitar, StartedAt: now.Add(-50 * time.Hour), DurationSeconds: 2 * 3600, FinalBPM: 130},
		{InstrumentID: guitar, StartedAt: now.Add(-74 * time.Hour), DurationSeconds: 2 * 3600, FinalBPM: 130},
	}
	st := ComputeStats(sessions, now)
	if st.TotalHours != 11 || st.Streak != 4 || st.InstrumentCount != 2 || st.MaxBPM != 130 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	evs := evaluationsByCode(t, st)
	for _, code := range []string{"practice_1h", "practice_10h", "streak_3d", "instruments_2", "bpm_100"} {
		if !evs[code].Reached || evs[code].Progress != 100 {
			t.Fatalf("%s should be reached: %+v", code, evs[code])
		}
	}
	want := map[string]int{
		"practice_50h":  22,
		"practice_100h": 11,
		"streak_7d":     57,
		"instruments_3": 67,
		"bpm_150":       87,
		"bpm_200":       65,
	}
	for code, p := range want {
		if evs[code].Reached || evs[code].Progress != p {
			t.Fatalf("%s: expected progress %d, got %+v", code, p, evs[code])
		}
	}
	if evs["complete_first"].Progress != 0 || evs["complete_first"].Reached {
		t.Fatalf("complete_first should not be reached: %+v", evs["complete_first"])
	}
}

func TestEvaluateRule_ProgressAtAndPastThreshold(t *testing.T) {
	r := Rule{Code: "practice_10h", Metric: MetricHours, Threshold: 10}
	cases := []struct {
		hours    float64
		progress int
		reached  bool
	}{
		{0, 0, false},
		{0.04, 0, false},
		{0.06, 1, false},
		{9.99, 100, false},
		{10, 100, true},
		{250, 100, true},
	}
	for _, tc := range cases {
		ev, err := EvaluateRule(r, Stats{TotalHours: tc.hours})
		if err != nil {
			t.Fatalf("EvaluateRule: %v", err)
		}
		if ev.Progress != tc.progress || ev.Reached != tc.reached {
			t.Fatalf("hours=%v: got progress=%d reached=%v, want %d/%v", tc.hours, ev.Progress, ev.Reached, tc.progress, tc.reached)
		}
	}
}

func TestEvaluateRule_Monotonic(t *testing.T) {
	r := Rule{Code: "bpm_250", Metric: MetricMaxBPM, Threshold: 250}
	prev := -1
	for bpm := 0; bpm <= 400; bpm += 7 {
		ev, err := EvaluateRule(r, Stats{MaxBPM: bpm})
		if err != nil {
			t.Fatalf("EvaluateRule: %v", err)
		}
		if ev.Progress < prev {
			t.Fatalf("progress decreased at bpm=%d: %d < %d", bpm, ev.Progress, prev)
		}
		if ev.Progress < 0 || ev.Progress > 100 {
			t.Fatalf("progress out of range at bpm=%d: %d", bpm, ev.Progress)
		}
		prev = ev.Progress
	}
}

func TestEvaluateRule_BinaryCompleteFirst(t *testing.T) {
	r := Rule{Code: "complete_first", Metric: MetricCompletions, Threshold: 1, Binary: true}
	ev, _ := EvaluateRule(r, Stats{})
	if ev.Progress != 0 || ev.Reached {
		t.Fatalf("expected 0 without completions: %+v", ev)
	}
	ev, _ = EvaluateRule(r, Stats{CompletionCount: 3})
	if ev.Progress != 100 || !ev.Reached {
		t.Fatalf("expected 100 with completions: %+v", ev)
	}
}

func TestEvaluateRule_UnknownMetric(t *testing.T) {
	if _, err := EvaluateRule(Rule{Code: "x", Metric: "minutes", Threshold: 1}, Stats{}); err == nil {
		t.Fatalf("expected error for unknown metric")
	}
}

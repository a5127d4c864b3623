package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/riffbook-backend/internal/domain"
)

// Stats are the aggregates every rule is measured against, computed once
// per evaluation.
type Stats struct {
	SessionCount          int     `json:"session_count"`
	TotalSeconds          int64   `json:"total_seconds"`
	TotalHours            float64 `json:"total_hours"`
	Streak                int     `json:"streak"`
	InstrumentCount       int     `json:"instrument_count"`
	MaxBPM                int     `json:"max_bpm"`
	CompletionCount       int     `json:"completion_count"`
	AIRecommendationCount int     `json:"ai_recommendation_count"`
}

func ComputeStats(sessions []SessionRecord, now time.Time) Stats {
	st := Stats{SessionCount: len(sessions)}
	instruments := make(map[uuid.UUID]struct{})
	started := make([]time.Time, 0, len(sessions))
	for _, s := range sessions {
		st.TotalSeconds += s.duration()
		instruments[s.InstrumentID] = struct{}{}
		if s.FinalBPM > st.MaxBPM {
			st.MaxBPM = s.FinalBPM
		}
		if s.completed() {
			st.CompletionCount++
		}
		if s.ContentSource == types.ContentSourceAIRecommended {
			st.AIRecommendationCount++
		}
		started = append(started, s.StartedAt)
	}
	st.TotalHours = float64(st.TotalSeconds) / 3600
	st.InstrumentCount = len(instruments)
	st.Streak = CalculateStreak(started, now)
	return st
}

func (s Stats) Value(m Metric) (float64, error) {
	switch m {
	case MetricHours:
		return s.TotalHours, nil
	case MetricStreak:
		return float64(s.Streak), nil
	case MetricInstruments:
		return float64(s.InstrumentCount), nil
	case MetricMaxBPM:
		return float64(s.MaxBPM), nil
	case MetricCompletions:
		return float64(s.CompletionCount), nil
	case MetricAIUsage:
		return float64(s.AIRecommendationCount), nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownMetric, m)
	}
}

// Evaluation is the outcome of one rule. Reached means the metric met the
// threshold; whether that unlocks anything depends on the stored state.
type Evaluation struct {
	Code     string  `json:"code"`
	Value    float64 `json:"value"`
	Progress int     `json:"progress"`
	Reached  bool    `json:"reached"`
}

func EvaluateRule(r Rule, stats Stats) (Evaluation, error) {
	v, err := stats.Value(r.Metric)
	if err != nil {
		return Evaluation{}, fmt.Errorf("rule %q: %w", r.Code, err)
	}
	ev := Evaluation{Code: r.Code, Value: v, Reached: v >= r.Threshold}
	if r.Binary {
		if v > 0 {
			ev.Progress = 100
		}
	} else {
		ev.Progress = percent(v, r.Threshold)
	}
	return ev, nil
}

// Evaluate runs every rule of the catalog, in catalog order.
func Evaluate(c Catalog, stats Stats) ([]Evaluation, error) {
	out := make([]Evaluation, 0, c.Len())
	for _, r := range c.rules {
		ev, err := EvaluateRule(r, stats)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func percent(value, threshold float64) int {
	if threshold <= 0 || value <= 0 {
		return 0
	}
	p := math.Round(value / threshold * 100)
	if p > 100 {
		return 100
	}
	return int(p)
}

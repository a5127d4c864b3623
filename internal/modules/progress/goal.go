package progress

import (
	"math"
	"time"

	types "github.com/yungbote/riffbook-backend/internal/domain"
)

// GoalWindow returns the [start, end] range a goal of type t aggregates
// over, in now's location. Weeks start on Sunday. Unknown types cover all
// history.
func GoalWindow(t types.GoalType, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	y, m, d := now.Date()
	switch t {
	case types.GoalDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, loc), now
	case types.GoalWeekly:
		return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc), now
	case types.GoalMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), now
	default:
		return time.Unix(0, 0).In(loc), now
	}
}

// CalculateGoalProgress aggregates the sessions that fall inside the goal's
// current window. Sessions outside the window or on another instrument are
// ignored, so callers may pass a superset.
func CalculateGoalProgress(g *types.PracticeGoal, sessions []SessionRecord, now time.Time) types.GoalProgress {
	out := types.GoalProgress{GoalID: g.ID, Target: g.TargetValue}
	start, end := GoalWindow(g.Type, now)

	var totalSeconds int64
	count, maxBPM := 0, 0
	for _, s := range sessions {
		if s.StartedAt.Before(start) || s.StartedAt.After(end) {
			continue
		}
		if g.InstrumentID != nil && s.InstrumentID != *g.InstrumentID {
			continue
		}
		totalSeconds += s.duration()
		count++
		if s.FinalBPM > maxBPM {
			maxBPM = s.FinalBPM
		}
	}

	switch g.TargetType {
	case types.GoalTargetTime:
		out.Current = int(math.Round(float64(totalSeconds) / 60))
	case types.GoalTargetSessions:
		out.Current = count
	case types.GoalTargetBPM:
		out.Current = maxBPM
	}

	if g.TargetValue > 0 {
		out.Percentage = math.Min(100, math.Max(0, float64(out.Current)/float64(g.TargetValue)*100))
	}
	out.IsAchieved = out.Current >= g.TargetValue
	return out
}

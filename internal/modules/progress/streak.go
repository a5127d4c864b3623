package progress

import "time"

// maxStreakLookback bounds the backwards walk over calendar days.
const maxStreakLookback = 365

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{year: y, month: m, day: d}
}

func (c civilDate) prev(loc *time.Location) civilDate {
	return dateOf(time.Date(c.year, c.month, c.day-1, 12, 0, 0, 0, loc), loc)
}

// CalculateStreak returns the number of consecutive calendar days, ending
// today or yesterday in now's location, with at least one session.
// A streak still counts if the user has not practiced yet today.
func CalculateStreak(startedAt []time.Time, now time.Time) int {
	if len(startedAt) == 0 {
		return 0
	}
	loc := now.Location()
	practiced := make(map[civilDate]struct{}, len(startedAt))
	for _, t := range startedAt {
		practiced[dateOf(t, loc)] = struct{}{}
	}

	day := dateOf(now, loc)
	if _, ok := practiced[day]; !ok {
		day = day.prev(loc)
	}
	streak := 0
	for streak < maxStreakLookback {
		if _, ok := practiced[day]; !ok {
			break
		}
		streak++
		day = day.prev(loc)
	}
	return streak
}

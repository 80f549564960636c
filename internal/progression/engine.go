package progression

import "time"

// CompletionEvent is one reported workout completion.
type CompletionEvent struct {
	CompletedAt      time.Time
	LoggedSets       int
	WorkoutsThisWeek int
}

// Advance applies a completion event to the user's stats and returns the new
// stats together with the XP awarded. It is a pure function; the caller
// persists the result in a single conditional write.
//
// Streak rules: no prior workout starts a streak of 1; a workout on the next
// calendar day extends it; a gap of more than one day resets it to 1; a
// second completion on the same calendar day leaves it unchanged (duplicates
// per workout day are rejected upstream). The 7-day bonus is granted exactly
// once, when the streak first reaches 7.
func Advance(stats UserStats, event CompletionEvent) (UserStats, int) {
	awarded := XPWorkoutCompleted
	if event.LoggedSets > 0 {
		awarded += XPWorkoutWithSets
	}

	previousStreak := stats.CurrentStreak
	today := startOfDay(event.CompletedAt)

	if stats.LastWorkoutDate == nil {
		stats.CurrentStreak = 1
	} else {
		daysDiff := daysBetween(*stats.LastWorkoutDate, event.CompletedAt)
		switch {
		case daysDiff == 1:
			stats.CurrentStreak++
		case daysDiff > 1:
			stats.CurrentStreak = 1
		}
	}

	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}

	if stats.CurrentStreak == 7 && previousStreak < 7 {
		awarded += XPStreak7Days
	}

	stats.TotalXP += awarded
	stats.Level = LevelForXP(stats.TotalXP)
	stats.LastWorkoutDate = &today
	stats.WorkoutsThisWeek = event.WorkoutsThisWeek

	return stats, awarded
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b. The calendar dates are
// compared in UTC so that DST transitions and mixed locations cannot shrink
// or stretch a day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

// startOfWeek returns the most recent Sunday midnight at or before t.
func startOfWeek(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

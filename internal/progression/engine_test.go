package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	testCases := []struct {
		totalXP       int
		expectedLevel int
	}{
		{totalXP: 0, expectedLevel: 1},
		{totalXP: 499, expectedLevel: 1},
		{totalXP: 500, expectedLevel: 2},
		{totalXP: 1199, expectedLevel: 2},
		{totalXP: 1200, expectedLevel: 3},
		{totalXP: 2400, expectedLevel: 4},
		{totalXP: 4000, expectedLevel: 5},
		{totalXP: 6000, expectedLevel: 6},
		{totalXP: 8500, expectedLevel: 7},
		{totalXP: 11500, expectedLevel: 8},
		{totalXP: 15000, expectedLevel: 9},
		{totalXP: 20000, expectedLevel: 10},
		{totalXP: 1000000, expectedLevel: 10},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expectedLevel, LevelForXP(tc.totalXP), "xp %d", tc.totalXP)
	}

	// monotonic in xp
	prevLevel := 0
	for xp := 0; xp <= 25000; xp += 100 {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prevLevel)
		assert.LessOrEqual(t, level, 10)
		prevLevel = level
	}
}

func TestXPForNextLevel(t *testing.T) {
	assert.Equal(t, 500, XPForNextLevel(0))
	assert.Equal(t, 1, XPForNextLevel(499))
	assert.Equal(t, 700, XPForNextLevel(500))
	// at the cap there is nothing left to earn
	assert.Equal(t, 0, XPForNextLevel(20000))
	assert.Equal(t, 0, XPForNextLevel(99999))
}

func TestAdvance_FirstWorkout(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	newStats, awarded := Advance(NewUserStats(1), CompletionEvent{
		CompletedAt:      now,
		LoggedSets:       0,
		WorkoutsThisWeek: 1,
	})

	assert.Equal(t, XPWorkoutCompleted, awarded)
	assert.Equal(t, XPWorkoutCompleted, newStats.TotalXP)
	assert.Equal(t, 1, newStats.Level)
	assert.Equal(t, 1, newStats.CurrentStreak)
	assert.Equal(t, 1, newStats.LongestStreak)
	assert.Equal(t, 1, newStats.WorkoutsThisWeek)
	require.NotNil(t, newStats.LastWorkoutDate)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *newStats.LastWorkoutDate)
}

func TestAdvance_LoggedSetsBonus(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	_, awarded := Advance(NewUserStats(1), CompletionEvent{
		CompletedAt: now,
		LoggedSets:  12,
	})
	assert.Equal(t, XPWorkoutCompleted+XPWorkoutWithSets, awarded)
}

func TestAdvance_StreakTransitions(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 8, 0, 0, 0, time.UTC)
	}
	dayPtr := func(d int) *time.Time {
		t := startOfDay(day(d))
		return &t
	}

	testCases := []struct {
		name            string
		lastWorkoutDate *time.Time
		currentStreak   int
		completedAt     time.Time
		expectedStreak  int
	}{
		{
			name:           "no prior workout",
			completedAt:    day(10),
			expectedStreak: 1,
		},
		{
			name:            "next day extends",
			lastWorkoutDate: dayPtr(9),
			currentStreak:   3,
			completedAt:     day(10),
			expectedStreak:  4,
		},
		{
			name:            "gap resets",
			lastWorkoutDate: dayPtr(7),
			currentStreak:   5,
			completedAt:     day(10),
			expectedStreak:  1,
		},
		{
			name:            "same day unchanged",
			lastWorkoutDate: dayPtr(10),
			currentStreak:   3,
			completedAt:     day(10),
			expectedStreak:  3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stats := NewUserStats(1)
			stats.LastWorkoutDate = tc.lastWorkoutDate
			stats.CurrentStreak = tc.currentStreak
			stats.LongestStreak = tc.currentStreak

			newStats, _ := Advance(stats, CompletionEvent{CompletedAt: tc.completedAt})
			assert.Equal(t, tc.expectedStreak, newStats.CurrentStreak)
			assert.GreaterOrEqual(t, newStats.LongestStreak, newStats.CurrentStreak)
		})
	}
}

func TestAdvance_StreakAcrossDSTAndLocations(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	edt := time.FixedZone("EDT", -4*3600)

	t.Run("spring forward still counts one day", func(t *testing.T) {
		stats := NewUserStats(1)
		last := startOfDay(time.Date(2025, 3, 8, 22, 0, 0, 0, est))
		stats.LastWorkoutDate = &last
		stats.CurrentStreak = 3
		stats.LongestStreak = 3

		// the night of the transition is only 23 wall-clock hours long
		newStats, _ := Advance(stats, CompletionEvent{
			CompletedAt: time.Date(2025, 3, 9, 8, 0, 0, 0, edt),
		})
		assert.Equal(t, 4, newStats.CurrentStreak)
	})

	t.Run("mixed locations compare by calendar date", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*3600)

		stats := NewUserStats(1)
		last := startOfDay(time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC))
		stats.LastWorkoutDate = &last
		stats.CurrentStreak = 2
		stats.LongestStreak = 2

		newStats, _ := Advance(stats, CompletionEvent{
			CompletedAt: time.Date(2025, 3, 9, 23, 0, 0, 0, jst),
		})
		assert.Equal(t, 3, newStats.CurrentStreak)
	})
}

func TestAdvance_SevenDayBonusOnce(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 8, 0, 0, 0, time.UTC)
	}

	stats := NewUserStats(1)
	lastDate := startOfDay(day(1))
	stats.LastWorkoutDate = &lastDate
	stats.CurrentStreak = 6
	stats.LongestStreak = 6
	stats.TotalXP = 300
	stats.Level = LevelForXP(300)

	// streak reaches 7: base + bonus
	newStats, awarded := Advance(stats, CompletionEvent{CompletedAt: day(2)})
	assert.Equal(t, 7, newStats.CurrentStreak)
	assert.Equal(t, XPWorkoutCompleted+XPStreak7Days, awarded)
	assert.Equal(t, 300+XPWorkoutCompleted+XPStreak7Days, newStats.TotalXP)
	assert.Equal(t, 2, newStats.Level)

	// day 8 extends past 7: no second bonus
	newStats2, awarded2 := Advance(newStats, CompletionEvent{CompletedAt: day(3)})
	assert.Equal(t, 8, newStats2.CurrentStreak)
	assert.Equal(t, XPWorkoutCompleted, awarded2)

	// a broken streak that climbs back to 7 earns the bonus again
	broken := newStats2
	broken.CurrentStreak = 6
	lastDate2 := startOfDay(day(20))
	broken.LastWorkoutDate = &lastDate2
	newStats3, awarded3 := Advance(broken, CompletionEvent{CompletedAt: day(21)})
	assert.Equal(t, 7, newStats3.CurrentStreak)
	assert.Equal(t, XPWorkoutCompleted+XPStreak7Days, awarded3)
}

func TestAdvance_LongestStreakNeverDecreases(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 8, 0, 0, 0, time.UTC)
	}

	stats := NewUserStats(1)
	lastDate := startOfDay(day(1))
	stats.LastWorkoutDate = &lastDate
	stats.CurrentStreak = 9
	stats.LongestStreak = 9

	// gap of three days resets current but keeps longest
	newStats, _ := Advance(stats, CompletionEvent{CompletedAt: day(4)})
	assert.Equal(t, 1, newStats.CurrentStreak)
	assert.Equal(t, 9, newStats.LongestStreak)
}

func TestEligibleUnlocks(t *testing.T) {
	level5 := 5
	streak7 := 7
	rewards := []Reward{
		{ID: 1, Name: "Novice Avatar", Type: RewardTypeAvatar, RequiredLevel: intPtr(1)},
		{ID: 2, Name: "Level 5 Badge", Type: RewardTypeBadge, RequiredLevel: &level5},
		{ID: 3, Name: "Week Warrior", Type: RewardTypeMedal, RequiredStreak: &streak7},
		{ID: 4, Name: "Elite", Type: RewardTypeBadge, RequiredLevel: &level5, RequiredStreak: &streak7},
		{ID: 5, Name: "Secret", Type: RewardTypeBadge}, // no requirements, never auto-unlocks
	}

	t.Run("fresh user unlocks level 1 rewards only", func(t *testing.T) {
		stats := NewUserStats(1)
		eligible := EligibleUnlocks(stats, rewards, nil)
		require.Len(t, eligible, 1)
		assert.Equal(t, 1, eligible[0].ID)
	})

	t.Run("all declared requirements must hold", func(t *testing.T) {
		stats := UserStats{Level: 5, CurrentStreak: 3}
		eligible := EligibleUnlocks(stats, rewards, map[int]bool{1: true})
		require.Len(t, eligible, 1)
		assert.Equal(t, 2, eligible[0].ID, "combined reward needs the streak too")
	})

	t.Run("level and streak together", func(t *testing.T) {
		stats := UserStats{Level: 5, CurrentStreak: 7}
		eligible := EligibleUnlocks(stats, rewards, map[int]bool{1: true, 2: true})
		require.Len(t, eligible, 2)
		assert.Equal(t, 3, eligible[0].ID)
		assert.Equal(t, 4, eligible[1].ID)
	})

	t.Run("owned rewards are skipped", func(t *testing.T) {
		stats := UserStats{Level: 10, CurrentStreak: 10}
		owned := map[int]bool{1: true, 2: true, 3: true, 4: true}
		assert.Empty(t, EligibleUnlocks(stats, rewards, owned))
	})
}

func intPtr(i int) *int {
	return &i
}

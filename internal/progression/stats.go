package progression

import "time"

// XP awards per completion event.
const (
	XPWorkoutCompleted = 50
	XPWorkoutWithSets  = 20
	XPStreak7Days      = 150
)

// levelThresholds is the cumulative XP needed for each level. The level for
// a given XP total is the highest 1-based index whose threshold is reached,
// capped at len(levelThresholds).
var levelThresholds = [...]int{
	0,     // level 1
	500,   // level 2
	1200,  // level 3
	2400,  // level 4
	4000,  // level 5
	6000,  // level 6
	8500,  // level 7
	11500, // level 8
	15000, // level 9
	20000, // level 10
}

func LevelForXP(totalXP int) int {
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if totalXP >= levelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// XPForNextLevel returns the XP still missing to the next level, or 0 at
// the level cap.
func XPForNextLevel(totalXP int) int {
	level := LevelForXP(totalXP)
	if level >= len(levelThresholds) {
		return 0
	}
	return levelThresholds[level] - totalXP
}

// UserStats is the per-user gamification state. Version guards concurrent
// writes: updates only apply if the version read is still current.
type UserStats struct {
	UserID           int        `json:"userId"`
	TotalXP          int        `json:"totalXp"`
	Level            int        `json:"level"`
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	WorkoutsThisWeek int        `json:"workoutsThisWeek"`
	LastWorkoutDate  *time.Time `json:"lastWorkoutDate,omitempty"`

	Version int `json:"-"`
}

func NewUserStats(userID int) UserStats {
	return UserStats{
		UserID: userID,
		Level:  1,
	}
}

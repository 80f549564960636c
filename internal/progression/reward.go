package progression

import "time"

// RewardType is a closed set of cosmetic reward kinds.
type RewardType string

const (
	RewardTypeAvatar RewardType = "avatar"
	RewardTypeBadge  RewardType = "badge"
	RewardTypeMedal  RewardType = "medal"
)

func (rt RewardType) Valid() bool {
	switch rt {
	case RewardTypeAvatar, RewardTypeBadge, RewardTypeMedal:
		return true
	}
	return false
}

// Reward is a catalog entry. Requirements are optional: a nil requirement
// does not constrain the unlock.
type Reward struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Type           RewardType `json:"type"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	RequiredLevel  *int       `json:"requiredLevel,omitempty"`
	RequiredStreak *int       `json:"requiredStreak,omitempty"`
}

// UserReward is an ownership row: the user unlocked the reward, possibly
// equipping it.
type UserReward struct {
	UserID     int       `json:"userId"`
	RewardID   int       `json:"rewardId"`
	Equipped   bool      `json:"equipped"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// RewardStatus decorates a catalog entry with the user's unlock state.
type RewardStatus struct {
	Reward
	Unlocked   bool       `json:"unlocked"`
	Equipped   bool       `json:"equipped"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// EligibleUnlocks returns the rewards the given stats newly unlock: every
// declared requirement must be satisfied, already owned rewards are skipped,
// and rewards declaring no requirement at all never unlock automatically.
func EligibleUnlocks(stats UserStats, rewards []Reward, owned map[int]bool) []Reward {
	var eligible []Reward
	for _, reward := range rewards {
		if owned[reward.ID] {
			continue
		}
		if reward.RequiredLevel == nil && reward.RequiredStreak == nil {
			continue
		}
		if reward.RequiredLevel != nil && stats.Level < *reward.RequiredLevel {
			continue
		}
		if reward.RequiredStreak != nil && stats.CurrentStreak < *reward.RequiredStreak {
			continue
		}
		eligible = append(eligible, reward)
	}
	return eligible
}

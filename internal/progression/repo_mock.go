package progression

import (
	"context"
	"sort"
	"sync"
	"time"
)

// StatsRepoMock is an in-memory stats repo with the same optimistic
// versioning semantics as the real one.
type StatsRepoMock struct {
	mutex sync.RWMutex
	Stats map[int]UserStats
}

func NewStatsRepoMock() *StatsRepoMock {
	return &StatsRepoMock{
		Stats: make(map[int]UserStats),
	}
}

func (m *StatsRepoMock) CreateStats(_ context.Context, userID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.Stats[userID]; ok {
		return nil
	}
	m.Stats[userID] = NewUserStats(userID)
	return nil
}

func (m *StatsRepoMock) GetStats(_ context.Context, userID int) (*UserStats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	stats, ok := m.Stats[userID]
	if !ok {
		return nil, ErrStatsNotFound
	}
	return &stats, nil
}

func (m *StatsRepoMock) UpdateChecked(_ context.Context, stats UserStats) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	current, ok := m.Stats[stats.UserID]
	if !ok || current.Version != stats.Version {
		return ErrStatsConflict
	}
	stats.Version++
	m.Stats[stats.UserID] = stats
	return nil
}

// LogsRepoMock is an in-memory workout log repo enforcing one completed
// log per (user, workout day, calendar day).
type LogsRepoMock struct {
	mutex        sync.RWMutex
	Logs         []WorkoutLog
	ExerciseLogs map[int][]ExerciseLog
	nextLogID    int
}

func NewLogsRepoMock() *LogsRepoMock {
	return &LogsRepoMock{
		ExerciseLogs: make(map[int][]ExerciseLog),
		nextLogID:    1,
	}
}

func (m *LogsRepoMock) CreateCompleted(_ context.Context, userID, workoutDayID int, at time.Time) (*WorkoutLog, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	day := startOfDay(at)
	for _, l := range m.Logs {
		if l.UserID == userID && l.WorkoutDayID == workoutDayID && l.Date.Equal(day) {
			return nil, ErrWorkoutAlreadyCompleted
		}
	}

	workoutLog := WorkoutLog{
		ID:           m.nextLogID,
		UserID:       userID,
		WorkoutDayID: workoutDayID,
		Date:         day,
		Completed:    true,
	}
	m.nextLogID++
	m.Logs = append(m.Logs, workoutLog)
	return &workoutLog, nil
}

func (m *LogsRepoMock) AddExerciseLogs(_ context.Context, workoutLogID int, logs []ExerciseLog) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.ExerciseLogs[workoutLogID] = append(m.ExerciseLogs[workoutLogID], logs...)
	return nil
}

func (m *LogsRepoMock) CountCompletedSince(_ context.Context, userID int, since time.Time) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	count := 0
	for _, l := range m.Logs {
		if l.UserID == userID && l.Completed && !l.Date.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *LogsRepoMock) CompletedOn(_ context.Context, userID, workoutDayID int, day time.Time) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	target := startOfDay(day)
	for _, l := range m.Logs {
		if l.UserID == userID && l.WorkoutDayID == workoutDayID && l.Completed && l.Date.Equal(target) {
			return true, nil
		}
	}
	return false, nil
}

// RewardsRepoMock is an in-memory reward catalog and ownership repo.
type RewardsRepoMock struct {
	mutex       sync.RWMutex
	Rewards     map[int]Reward
	UserRewards map[int]map[int]*UserReward // userID -> rewardID -> ownership
}

func NewRewardsRepoMock(rewards ...Reward) *RewardsRepoMock {
	mock := &RewardsRepoMock{
		Rewards:     make(map[int]Reward),
		UserRewards: make(map[int]map[int]*UserReward),
	}
	for _, r := range rewards {
		mock.Rewards[r.ID] = r
	}
	return mock
}

func (m *RewardsRepoMock) ListRewards(_ context.Context) ([]Reward, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ids := make([]int, 0, len(m.Rewards))
	for id := range m.Rewards {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rewards := make([]Reward, 0, len(ids))
	for _, id := range ids {
		rewards = append(rewards, m.Rewards[id])
	}
	return rewards, nil
}

func (m *RewardsRepoMock) GetReward(_ context.Context, id int) (*Reward, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, ok := m.Rewards[id]
	if !ok {
		return nil, ErrRewardNotFound
	}
	return &r, nil
}

func (m *RewardsRepoMock) ListUserRewards(_ context.Context, userID int) ([]UserReward, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	userRewards := make([]UserReward, 0)
	for _, ur := range m.UserRewards[userID] {
		userRewards = append(userRewards, *ur)
	}
	return userRewards, nil
}

func (m *RewardsRepoMock) AddUserRewards(_ context.Context, userID int, rewardIDs []int, unlockedAt time.Time) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.UserRewards[userID] == nil {
		m.UserRewards[userID] = make(map[int]*UserReward)
	}
	for _, rewardID := range rewardIDs {
		if _, ok := m.UserRewards[userID][rewardID]; ok {
			continue
		}
		m.UserRewards[userID][rewardID] = &UserReward{
			UserID:     userID,
			RewardID:   rewardID,
			Equipped:   false,
			UnlockedAt: unlockedAt,
		}
	}
	return nil
}

func (m *RewardsRepoMock) Equip(_ context.Context, userID, rewardID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	target, ok := m.UserRewards[userID][rewardID]
	if !ok {
		return ErrRewardNotOwned
	}
	if m.Rewards[rewardID].Type == RewardTypeAvatar {
		for id, ur := range m.UserRewards[userID] {
			if m.Rewards[id].Type == RewardTypeAvatar {
				ur.Equipped = false
			}
		}
	}
	target.Equipped = true
	return nil
}

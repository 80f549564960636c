package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NateM03/gym/internal/telemetry/metrics"
	"github.com/NateM03/gym/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type statsRepo interface {
	CreateStats(ctx context.Context, userID int) error
	GetStats(ctx context.Context, userID int) (*UserStats, error)
	UpdateChecked(ctx context.Context, stats UserStats) error
}

type logsRepo interface {
	CreateCompleted(ctx context.Context, userID, workoutDayID int, at time.Time) (*WorkoutLog, error)
	AddExerciseLogs(ctx context.Context, workoutLogID int, logs []ExerciseLog) error
	CountCompletedSince(ctx context.Context, userID int, since time.Time) (int, error)
	CompletedOn(ctx context.Context, userID, workoutDayID int, day time.Time) (bool, error)
}

type rewardsRepo interface {
	ListRewards(ctx context.Context) ([]Reward, error)
	GetReward(ctx context.Context, id int) (*Reward, error)
	ListUserRewards(ctx context.Context, userID int) ([]UserReward, error)
	AddUserRewards(ctx context.Context, userID int, rewardIDs []int, unlockedAt time.Time) error
	Equip(ctx context.Context, userID, rewardID int) error
}

type Service struct {
	stats   statsRepo
	logs    logsRepo
	rewards rewardsRepo
	metrics *metrics.Manager
}

func NewService(
	stats statsRepo,
	logs logsRepo,
	rewards rewardsRepo,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		stats:   stats,
		logs:    logs,
		rewards: rewards,
		metrics: metricsManager,
	}
}

// CompletionResult is what a recorded completion produced: the log row, the
// stats after the transition, the XP awarded by it, and any rewards it
// unlocked.
type CompletionResult struct {
	Log        WorkoutLog `json:"workoutLog"`
	Stats      UserStats  `json:"stats"`
	AwardedXP  int        `json:"awardedXp"`
	NewRewards []Reward   `json:"newRewards"`
}

// RecordCompletion logs a completed workout day and advances the user's
// stats in exactly one conditional write. A concurrent stats write surfaces
// as ErrStatsConflict; a duplicate completion of the same day as
// ErrWorkoutAlreadyCompleted. The unlock scan runs after the stats write and
// is idempotent.
func (s *Service) RecordCompletion(
	ctx context.Context,
	userID, workoutDayID int,
	setLogs []ExerciseLog,
	now time.Time,
) (_ *CompletionResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progression.recordcompletion")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("day.id", workoutDayID))

	workoutLog, err := s.logs.CreateCompleted(ctx, userID, workoutDayID, now)
	if err != nil {
		return nil, err
	}

	if len(setLogs) > 0 {
		if err := s.logs.AddExerciseLogs(ctx, workoutLog.ID, setLogs); err != nil {
			return nil, fmt.Errorf("add exercise logs: %w", err)
		}
	}

	workoutsThisWeek, err := s.logs.CountCompletedSince(ctx, userID, startOfWeek(now))
	if err != nil {
		return nil, fmt.Errorf("count workouts this week: %w", err)
	}

	oldStats, err := s.getOrCreateStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	newStats, awardedXP := Advance(*oldStats, CompletionEvent{
		CompletedAt:      now,
		LoggedSets:       len(setLogs),
		WorkoutsThisWeek: workoutsThisWeek,
	})

	if err := s.stats.UpdateChecked(ctx, newStats); err != nil {
		return nil, err
	}

	newRewards, err := s.unlockEligible(ctx, userID, newStats, now)
	if err != nil {
		// the completion and stats are already committed, losing the
		// unlock scan here only delays the unlock to the next scan
		log.Errorf("record completion for user %d: unlock scan: %s", userID, err)
		newRewards = []Reward{}
	}

	s.metrics.CounterWorkoutsCompleted.Inc()

	span.SetAttributes(attribute.Int("awarded.xp", awardedXP))
	return &CompletionResult{
		Log:        *workoutLog,
		Stats:      newStats,
		AwardedXP:  awardedXP,
		NewRewards: newRewards,
	}, nil
}

func (s *Service) unlockEligible(ctx context.Context, userID int, stats UserStats, now time.Time) ([]Reward, error) {
	rewards, err := s.rewards.ListRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}

	userRewards, err := s.rewards.ListUserRewards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user rewards: %w", err)
	}
	owned := make(map[int]bool, len(userRewards))
	for _, ur := range userRewards {
		owned[ur.RewardID] = true
	}

	eligible := EligibleUnlocks(stats, rewards, owned)
	if len(eligible) == 0 {
		return []Reward{}, nil
	}

	rewardIDs := make([]int, 0, len(eligible))
	for _, reward := range eligible {
		rewardIDs = append(rewardIDs, reward.ID)
	}
	if err := s.rewards.AddUserRewards(ctx, userID, rewardIDs, now); err != nil {
		return nil, fmt.Errorf("add user rewards: %w", err)
	}

	s.metrics.CounterRewardsUnlocked.Add(float64(len(eligible)))
	return eligible, nil
}

func (s *Service) Stats(ctx context.Context, userID int) (_ *UserStats, xpForNextLevel int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progression.stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	stats, err := s.getOrCreateStats(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return stats, XPForNextLevel(stats.TotalXP), nil
}

// getOrCreateStats reads the user's stats, seeding the initial row if the
// one from registration is missing.
func (s *Service) getOrCreateStats(ctx context.Context, userID int) (*UserStats, error) {
	stats, err := s.stats.GetStats(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, ErrStatsNotFound) {
		return nil, err
	}

	log.Warnf("stats for user %d missing, seeding now", userID)
	if err := s.stats.CreateStats(ctx, userID); err != nil {
		return nil, fmt.Errorf("create stats: %w", err)
	}
	return s.stats.GetStats(ctx, userID)
}

// RewardsOverview returns the whole reward catalog decorated with the
// user's unlock and equip state.
func (s *Service) RewardsOverview(ctx context.Context, userID int) (_ []RewardStatus, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progression.rewardsoverview")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rewards, err := s.rewards.ListRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}

	userRewards, err := s.rewards.ListUserRewards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user rewards: %w", err)
	}
	ownedByID := make(map[int]UserReward, len(userRewards))
	for _, ur := range userRewards {
		ownedByID[ur.RewardID] = ur
	}

	overview := make([]RewardStatus, 0, len(rewards))
	for _, reward := range rewards {
		status := RewardStatus{Reward: reward}
		if ur, ok := ownedByID[reward.ID]; ok {
			status.Unlocked = true
			status.Equipped = ur.Equipped
			unlockedAt := ur.UnlockedAt
			status.UnlockedAt = &unlockedAt
		}
		overview = append(overview, status)
	}
	return overview, nil
}

func (s *Service) EquipReward(ctx context.Context, userID, rewardID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progression.equipreward")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("reward.id", rewardID))

	if _, err := s.rewards.GetReward(ctx, rewardID); err != nil {
		return err
	}
	return s.rewards.Equip(ctx, userID, rewardID)
}

// CreateStats seeds the initial stats for a fresh user.
func (s *Service) CreateStats(ctx context.Context, userID int) error {
	return s.stats.CreateStats(ctx, userID)
}

// CompletedOn reports whether the user completed the given workout day on
// the given calendar day.
func (s *Service) CompletedOn(ctx context.Context, userID, workoutDayID int, day time.Time) (bool, error) {
	return s.logs.CompletedOn(ctx, userID, workoutDayID, day)
}

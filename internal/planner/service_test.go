package planner

import (
	"context"
	"testing"
	"time"

	"github.com/NateM03/gym/internal/catalog"
	"github.com/NateM03/gym/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completedCheckerMock struct {
	completed bool
}

func (c *completedCheckerMock) CompletedOn(_ context.Context, _, _ int, _ time.Time) (bool, error) {
	return c.completed, nil
}

func newTestService(t *testing.T) (*Service, *RepoMock) {
	t.Helper()
	repo := NewRepoMock()
	exercises := make([]catalog.Exercise, 0)
	exercises = append(exercises, testCatalog()...)
	catalogRepo := catalog.NewRepoMock(exercises...)
	service := NewService(
		repo,
		catalogRepo,
		&completedCheckerMock{},
		freecache.NewCache(1024*1024),
		metrics.NewTestManager(),
	)
	return service, repo
}

func TestService_CreatePlan(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	params := GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutineFullBody,
	}

	plan, err := service.CreatePlan(ctx, 1, params)
	require.NoError(t, err)
	assert.Equal(t, "Full Body (3-Day)", plan.Name)
	assert.False(t, plan.IsActive, "new plans start inactive")
	require.Len(t, plan.Days, 3)

	// second generation with the same params is served from the cache
	// and must persist an identical plan structure
	plan2, err := service.CreatePlan(ctx, 1, params)
	require.NoError(t, err)
	require.Len(t, plan2.Days, 3)
	for i := range plan.Days {
		assert.Equal(t, plan.Days[i].Title, plan2.Days[i].Title)
		assert.Len(t, plan2.Days[i].Exercises, len(plan.Days[i].Exercises))
	}
}

func TestService_CreatePlan_LimitReached(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	params := GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutineFullBody,
	}

	for i := 0; i < maxPlansPerUser; i++ {
		_, err := service.CreatePlan(ctx, 1, params)
		require.NoError(t, err)
	}

	_, err := service.CreatePlan(ctx, 1, params)
	assert.ErrorIs(t, err, ErrPlanLimitReached)

	// other users are not affected by the limit
	_, err = service.CreatePlan(ctx, 2, params)
	assert.NoError(t, err)
}

func TestService_ActivatePlan(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	params := GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutineFullBody,
	}

	plan1, err := service.CreatePlan(ctx, 1, params)
	require.NoError(t, err)
	plan2, err := service.CreatePlan(ctx, 1, params)
	require.NoError(t, err)

	_, err = service.ActivePlan(ctx, 1)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	require.NoError(t, service.ActivatePlan(ctx, 1, plan1.ID))
	active, err := service.ActivePlan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, plan1.ID, active.ID)

	// activating another plan deactivates the first
	require.NoError(t, service.ActivatePlan(ctx, 1, plan2.ID))
	active, err = service.ActivePlan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, plan2.ID, active.ID)
	assert.False(t, repo.Plans[plan1.ID].IsActive)

	assert.ErrorIs(t, service.ActivatePlan(ctx, 1, 999), ErrPlanNotFound)
	assert.ErrorIs(t, service.ActivatePlan(ctx, 2, plan1.ID), ErrPlanNotFound)
}

func TestService_DeletePlan(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	plan, err := service.CreatePlan(ctx, 1, GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutineFullBody,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, service.DeletePlan(ctx, 2, plan.ID), ErrPlanNotFound)
	require.NoError(t, service.DeletePlan(ctx, 1, plan.ID))
	assert.ErrorIs(t, service.DeletePlan(ctx, 1, plan.ID), ErrPlanNotFound)
}

func TestService_TodaysWorkout(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	plan, err := service.CreatePlan(ctx, 1, GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutineFullBody,
	})
	require.NoError(t, err)
	require.NoError(t, service.ActivatePlan(ctx, 1, plan.ID))

	now := time.Now()

	today, err := service.TodaysWorkout(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, today.PlanID)
	assert.Equal(t, 0, today.Day.DayIndex)
	assert.False(t, today.Completed)

	// the day rotates with the calendar, wrapping around the cycle
	today, err = service.TodaysWorkout(ctx, 1, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, today.Day.DayIndex)

	today, err = service.TodaysWorkout(ctx, 1, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 0, today.Day.DayIndex)

	// without an active plan there is no workout for today
	require.NoError(t, service.DeletePlan(ctx, 1, plan.ID))
	_, err = service.TodaysWorkout(ctx, 1, now)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestService_TodaysWorkout_AcrossDSTAndLocations(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	plan, err := service.CreatePlan(ctx, 1, GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutineFullBody,
	})
	require.NoError(t, err)
	require.NoError(t, service.ActivatePlan(ctx, 1, plan.ID))

	// plan created the evening before a spring-forward transition
	est := time.FixedZone("EST", -5*3600)
	edt := time.FixedZone("EDT", -4*3600)
	repo.Plans[plan.ID].CreatedAt = time.Date(2025, 3, 8, 21, 0, 0, 0, est)

	// the next morning is one calendar day later even though the night
	// was an hour short
	today, err := service.TodaysWorkout(ctx, 1, time.Date(2025, 3, 9, 7, 0, 0, 0, edt))
	require.NoError(t, err)
	assert.Equal(t, 1, today.Day.DayIndex)

	// a clock in a far-away zone still rotates by calendar date
	jst := time.FixedZone("JST", 9*3600)
	today, err = service.TodaysWorkout(ctx, 1, time.Date(2025, 3, 9, 23, 0, 0, 0, jst))
	require.NoError(t, err)
	assert.Equal(t, 1, today.Day.DayIndex)
}

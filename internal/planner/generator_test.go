package planner

import (
	"testing"

	"github.com/NateM03/gym/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []catalog.Exercise {
	return []catalog.Exercise{
		{ID: 1, Name: "Barbell Bench Press", MuscleGroup: "chest", Equipment: "barbell"},
		{ID: 2, Name: "Incline Dumbbell Press", MuscleGroup: "chest", Equipment: "dumbbell"},
		{ID: 3, Name: "Push-Up", MuscleGroup: "chest", Equipment: "bodyweight"},
		{ID: 4, Name: "Barbell Row", MuscleGroup: "back", Equipment: "barbell"},
		{ID: 5, Name: "Lat Pulldown", MuscleGroup: "back", Equipment: "machine"},
		{ID: 6, Name: "Pull-Up", MuscleGroup: "back", Equipment: "bodyweight"},
		{ID: 7, Name: "Overhead Press", MuscleGroup: "shoulders", Equipment: "barbell"},
		{ID: 8, Name: "Lateral Raise", MuscleGroup: "shoulders", Equipment: "dumbbell"},
		{ID: 9, Name: "Face Pull", MuscleGroup: "shoulders", Equipment: "cable"},
		{ID: 10, Name: "Barbell Curl", MuscleGroup: "biceps", Equipment: "barbell"},
		{ID: 11, Name: "Hammer Curl", MuscleGroup: "biceps", Equipment: "dumbbell"},
		{ID: 12, Name: "Triceps Pushdown", MuscleGroup: "triceps", Equipment: "cable"},
		{ID: 13, Name: "Close-Grip Bench Press", MuscleGroup: "triceps", Equipment: "barbell"},
		{ID: 14, Name: "Barbell Squat", MuscleGroup: "legs", Equipment: "barbell"},
		{ID: 15, Name: "Romanian Deadlift", MuscleGroup: "hamstrings", Equipment: "barbell"},
		{ID: 16, Name: "Leg Press", MuscleGroup: "quadriceps", Equipment: "machine"},
		{ID: 17, Name: "Walking Lunge", MuscleGroup: "legs", Equipment: "dumbbell"},
		{ID: 18, Name: "Calf Raise", MuscleGroup: "calves", Equipment: "machine"},
		{ID: 19, Name: "Plank", MuscleGroup: "core", Equipment: "bodyweight"},
		{ID: 20, Name: "Hanging Leg Raise", MuscleGroup: "abs", Equipment: "bodyweight"},
	}
}

func allEquipment() []string {
	return []string{"barbell", "dumbbell", "bodyweight", "machine", "cable"}
}

func exercisesByID(t *testing.T) map[int]catalog.Exercise {
	t.Helper()
	byID := make(map[int]catalog.Exercise)
	for _, e := range testCatalog() {
		byID[e.ID] = e
	}
	return byID
}

func TestGenerate_FullBodyStrength(t *testing.T) {
	plan, err := Generate(GenerateParams{
		Goal:      GoalStrength,
		Equipment: allEquipment(),
		Routine:   RoutineFullBody,
	}, testCatalog())
	require.NoError(t, err)

	assert.Equal(t, "Full Body (3-Day)", plan.Name)
	require.Len(t, plan.Days, 3)

	byID := exercisesByID(t)
	for _, day := range plan.Days {
		require.NotEmpty(t, day.Exercises)
		for i, e := range day.Exercises {
			assert.Equal(t, i+1, e.Order)
			if coreMuscleGroups[byID[e.ExerciseID].MuscleGroup] {
				assert.Equal(t, 3, e.Sets)
				assert.Equal(t, "10-15", e.Reps)
				assert.Equal(t, 45, e.RestSeconds)
			} else {
				assert.Equal(t, 4, e.Sets)
				assert.Equal(t, "4-6", e.Reps)
			}
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	params := GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutinePPL,
	}
	plan1, err := Generate(params, testCatalog())
	require.NoError(t, err)
	plan2, err := Generate(params, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, plan1, plan2)
}

func TestGenerate_EquipmentFilter(t *testing.T) {
	plan, err := Generate(GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: []string{"public_gym", "barbell"},
		Routine:   RoutineFullBody,
	}, testCatalog())
	require.NoError(t, err)

	byID := exercisesByID(t)
	for _, day := range plan.Days {
		for _, e := range day.Exercises {
			assert.Equal(t, "barbell", byID[e.ExerciseID].Equipment,
				"exercise %d must match profile equipment", e.ExerciseID)
		}
	}
}

func TestGenerate_NoExercisesAvailable(t *testing.T) {
	_, err := Generate(GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: []string{"public_gym", "home_gym_limited"},
		Routine:   RoutineFullBody,
	}, testCatalog())
	assert.ErrorIs(t, err, ErrNoExercisesAvailable)
}

func TestGenerate_AutoRoutineResolution(t *testing.T) {
	testCases := []struct {
		daysPerWeek    int
		expectedName   string
		expectedDays   int
		expectedTitles []string
	}{
		{
			daysPerWeek:  3,
			expectedName: "Full Body (3-Day)",
			expectedDays: 3,
		},
		{
			daysPerWeek:  4,
			expectedName: "Upper/Lower Split (4-Day)",
			expectedDays: 4,
			expectedTitles: []string{
				"Upper Body A", "Lower Body A", "Upper Body B", "Lower Body B",
			},
		},
		{
			daysPerWeek:    5,
			expectedName:   "Push/Pull/Legs (5-6 Day)",
			expectedDays:   5,
			expectedTitles: []string{"Push", "Pull", "Legs", "Push", "Pull"},
		},
		{
			daysPerWeek:    6,
			expectedName:   "Push/Pull/Legs (5-6 Day)",
			expectedDays:   6,
			expectedTitles: []string{"Push", "Pull", "Legs", "Push", "Pull", "Legs"},
		},
		{
			daysPerWeek:  2,
			expectedName: "Full Body",
			expectedDays: 2,
		},
	}

	for _, tc := range testCases {
		plan, err := Generate(GenerateParams{
			Goal:        GoalBuildMuscle,
			DaysPerWeek: tc.daysPerWeek,
			Equipment:   allEquipment(),
		}, testCatalog())
		require.NoError(t, err, "days per week %d", tc.daysPerWeek)
		assert.Equal(t, tc.expectedName, plan.Name)
		require.Len(t, plan.Days, tc.expectedDays)
		for i, day := range plan.Days {
			assert.Equal(t, i, day.DayIndex)
			if tc.expectedTitles != nil {
				assert.Equal(t, tc.expectedTitles[i], day.Title)
			}
		}
	}
}

func TestGenerate_ArnoldSplit(t *testing.T) {
	plan, err := Generate(GenerateParams{
		Goal:      GoalBuildMuscle,
		Equipment: allEquipment(),
		Routine:   RoutineArnold,
	}, testCatalog())
	require.NoError(t, err)

	assert.Equal(t, "Arnold Split (6-Day)", plan.Name)
	require.Len(t, plan.Days, 6)
	expectedTitles := []string{
		"Chest & Back", "Shoulders & Arms", "Legs",
		"Chest & Back", "Shoulders & Arms", "Legs",
	}
	for i, day := range plan.Days {
		assert.Equal(t, expectedTitles[i], day.Title)
		require.NotEmpty(t, day.Exercises)
		for j, e := range day.Exercises {
			assert.Equal(t, j+1, e.Order)
		}
	}
	// first cycle and second cycle prescribe the same work
	assert.Equal(t, plan.Days[0].Exercises, plan.Days[3].Exercises)
}

func TestGenerate_BucketFallback(t *testing.T) {
	// a catalog with no leg, pull or core exercises must still yield a
	// usable full body plan, drawing from the catalog by position
	chestOnly := []catalog.Exercise{
		{ID: 1, Name: "Barbell Bench Press", MuscleGroup: "chest", Equipment: "barbell"},
		{ID: 2, Name: "Incline Bench Press", MuscleGroup: "chest", Equipment: "barbell"},
		{ID: 3, Name: "Decline Bench Press", MuscleGroup: "chest", Equipment: "barbell"},
	}

	plan, err := Generate(GenerateParams{
		Goal:      GoalEndurance,
		Equipment: []string{"barbell"},
		Routine:   RoutineFullBody,
	}, chestOnly)
	require.NoError(t, err)

	require.Len(t, plan.Days, 3)
	for _, day := range plan.Days {
		require.NotEmpty(t, day.Exercises)
		for i, e := range day.Exercises {
			assert.Equal(t, i+1, e.Order)
		}
	}
}

func TestGenerate_CustomDays(t *testing.T) {
	customDays := []WorkoutDayData{
		{
			Title: "My Day",
			Exercises: []PlannedExercise{
				{ExerciseID: 1, Order: 1, Sets: 5, Reps: "5", RestSeconds: 120},
				{ExerciseID: 4, Order: 2, Sets: 5, Reps: "5", RestSeconds: 120},
			},
		},
	}

	plan, err := Generate(GenerateParams{
		Name:       "5x5",
		Goal:       GoalStrength,
		CustomDays: customDays,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "5x5", plan.Name)
	require.Len(t, plan.Days, 1)
	assert.Equal(t, 0, plan.Days[0].DayIndex)
	require.Len(t, plan.Days[0].Exercises, 2)
	assert.Equal(t, 1, plan.Days[0].Exercises[0].Order)
	assert.Equal(t, 2, plan.Days[0].Exercises[1].Order)
}

func TestGenerate_CustomDaysInvalid(t *testing.T) {
	testCases := []struct {
		name string
		days []WorkoutDayData
	}{
		{
			name: "empty day",
			days: []WorkoutDayData{{Title: "Empty"}},
		},
		{
			name: "missing exercise id",
			days: []WorkoutDayData{{
				Title:     "Day",
				Exercises: []PlannedExercise{{Sets: 3, Reps: "8-12"}},
			}},
		},
		{
			name: "missing reps",
			days: []WorkoutDayData{{
				Title:     "Day",
				Exercises: []PlannedExercise{{ExerciseID: 1, Sets: 3}},
			}},
		},
		{
			name: "no sets",
			days: []WorkoutDayData{{
				Title:     "Day",
				Exercises: []PlannedExercise{{ExerciseID: 1, Reps: "8-12"}},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(GenerateParams{CustomDays: tc.days}, nil)
			assert.ErrorIs(t, err, ErrInvalidCustomDays)
		})
	}
}

func TestGenerate_GoalPrescriptions(t *testing.T) {
	testCases := []struct {
		goal         string
		expectedSets int
		expectedReps string
	}{
		{goal: GoalBuildMuscle, expectedSets: 3, expectedReps: "8-12"},
		{goal: GoalStrength, expectedSets: 4, expectedReps: "4-6"},
		{goal: GoalEndurance, expectedSets: 3, expectedReps: "15-20"},
		{goal: "lose_weight", expectedSets: 3, expectedReps: "10-15"},
		{goal: "general_fitness", expectedSets: 3, expectedReps: "10-15"},
	}

	byID := exercisesByID(t)
	for _, tc := range testCases {
		t.Run(tc.goal, func(t *testing.T) {
			plan, err := Generate(GenerateParams{
				Goal:      tc.goal,
				Equipment: allEquipment(),
				Routine:   RoutinePPL,
			}, testCatalog())
			require.NoError(t, err)
			for _, day := range plan.Days {
				for _, e := range day.Exercises {
					if coreMuscleGroups[byID[e.ExerciseID].MuscleGroup] {
						continue
					}
					assert.Equal(t, tc.expectedSets, e.Sets)
					assert.Equal(t, tc.expectedReps, e.Reps)
				}
			}
		})
	}
}

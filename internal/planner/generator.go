package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NateM03/gym/internal/catalog"
)

var (
	ErrNoExercisesAvailable = errors.New("no exercises available for selected equipment")
	ErrInvalidCustomDays    = errors.New("invalid custom day list")
	ErrInvalidDaysPerWeek   = errors.New("invalid days per week")
	ErrInvalidRoutineType   = errors.New("invalid routine type")
)

// GenerateParams carries the profile fields and the routine selection the
// generator needs. CustomDays, when set, switches to bypass mode: the given
// days are used verbatim (structure still validated) and no allocation runs.
type GenerateParams struct {
	Name        string
	Goal        string
	DaysPerWeek int
	Equipment   []string
	Routine     RoutineType
	CustomDays  []WorkoutDayData
}

// Generate allocates the exercise catalog into a multi-day split. It is a
// pure function: same params and same catalog order always produce the same
// plan.
func Generate(params GenerateParams, exercises []catalog.Exercise) (*WorkoutPlanData, error) {
	if len(params.CustomDays) > 0 {
		return generateFromCustomDays(params)
	}

	available := filterByEquipment(exercises, params.Equipment)
	if len(available) == 0 {
		return nil, ErrNoExercisesAvailable
	}

	if params.Routine != "" {
		if !params.Routine.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRoutineType, params.Routine)
		}
		var name string
		var days []WorkoutDayData
		switch params.Routine {
		case RoutineFullBody:
			name = "Full Body (3-Day)"
			days = generateFullBodyDays(available, params.Goal)
		case RoutineUpperLower:
			name = "Upper/Lower Split (4-Day)"
			days = generateUpperLowerDays(available, params.Goal)
		case RoutinePPL:
			name = "Push/Pull/Legs (6-Day)"
			days = generatePPLDays(available, params.Goal, 6)
		case RoutineArnold:
			name = "Arnold Split (6-Day)"
			days = generateArnoldDays(available, params.Goal)
		}
		return &WorkoutPlanData{Name: name, Goal: params.Goal, Days: days}, nil
	}

	// no explicit routine: resolve by days per week
	switch {
	case params.DaysPerWeek == 3:
		return &WorkoutPlanData{
			Name: "Full Body (3-Day)",
			Goal: params.Goal,
			Days: generateFullBodyDays(available, params.Goal),
		}, nil
	case params.DaysPerWeek == 4:
		return &WorkoutPlanData{
			Name: "Upper/Lower Split (4-Day)",
			Goal: params.Goal,
			Days: generateUpperLowerDays(available, params.Goal),
		}, nil
	case params.DaysPerWeek >= 5:
		return &WorkoutPlanData{
			Name: "Push/Pull/Legs (5-6 Day)",
			Goal: params.Goal,
			Days: generatePPLDays(available, params.Goal, params.DaysPerWeek),
		}, nil
	case params.DaysPerWeek >= 1:
		days := generateFullBodyDays(available, params.Goal)
		return &WorkoutPlanData{
			Name: "Full Body",
			Goal: params.Goal,
			Days: reindexDays(days[:params.DaysPerWeek]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidDaysPerWeek, params.DaysPerWeek)
	}
}

func generateFromCustomDays(params GenerateParams) (*WorkoutPlanData, error) {
	for i, day := range params.CustomDays {
		if len(day.Exercises) == 0 {
			return nil, fmt.Errorf("%w: day %d has no exercises", ErrInvalidCustomDays, i)
		}
		for j, e := range day.Exercises {
			if e.ExerciseID <= 0 {
				return nil, fmt.Errorf("%w: day %d exercise %d has no exercise id", ErrInvalidCustomDays, i, j)
			}
			if e.Sets <= 0 {
				return nil, fmt.Errorf("%w: day %d exercise %d has no sets", ErrInvalidCustomDays, i, j)
			}
			if strings.TrimSpace(e.Reps) == "" {
				return nil, fmt.Errorf("%w: day %d exercise %d has no reps", ErrInvalidCustomDays, i, j)
			}
		}
	}

	name := params.Name
	if name == "" {
		name = "Custom Plan"
	}

	return &WorkoutPlanData{
		Name: name,
		Goal: params.Goal,
		Days: reindexDays(params.CustomDays),
	}, nil
}

func filterByEquipment(exercises []catalog.Exercise, equipment []string) []catalog.Exercise {
	allowed := make(map[string]bool, len(equipment))
	for _, eq := range equipment {
		if equipmentMetaTokens[eq] {
			continue
		}
		allowed[eq] = true
	}

	var filtered []catalog.Exercise
	for _, e := range exercises {
		if allowed[e.Equipment] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func filterByMuscleGroups(exercises []catalog.Exercise, groups map[string]bool) []catalog.Exercise {
	var filtered []catalog.Exercise
	for _, e := range exercises {
		if groups[strings.ToLower(e.MuscleGroup)] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// slot is one planned position in a day, before empty slots are dropped
// and orders are reassigned.
type slot struct {
	exercise    *catalog.Exercise
	sets        int
	reps        string
	restSeconds int
}

// pick returns the i-th exercise of the bucket, falling back to the
// fallback position in the full filtered catalog when the bucket runs dry.
func pick(bucket []catalog.Exercise, i int, all []catalog.Exercise, fallback int) *catalog.Exercise {
	if i < len(bucket) {
		return &bucket[i]
	}
	if fallback < len(all) {
		return &all[fallback]
	}
	return nil
}

func buildDay(dayIndex int, title string, slots []slot) WorkoutDayData {
	day := WorkoutDayData{
		DayIndex:  dayIndex,
		Title:     title,
		Exercises: make([]PlannedExercise, 0, len(slots)),
	}
	for _, s := range slots {
		if s.exercise == nil {
			continue
		}
		day.Exercises = append(day.Exercises, PlannedExercise{
			ExerciseID:  s.exercise.ID,
			Order:       len(day.Exercises) + 1,
			Sets:        s.sets,
			Reps:        s.reps,
			RestSeconds: s.restSeconds,
		})
	}
	return day
}

// take returns list[from:to], clamped to the list length.
func take(list []catalog.Exercise, from, to int) []catalog.Exercise {
	if from >= len(list) {
		return nil
	}
	if to > len(list) {
		to = len(list)
	}
	return list[from:to]
}

func exercisesToSlots(exercises []catalog.Exercise, p prescription, restSeconds int) []slot {
	slots := make([]slot, 0, len(exercises))
	for i := range exercises {
		slots = append(slots, slot{
			exercise:    &exercises[i],
			sets:        p.Sets,
			reps:        p.Reps,
			restSeconds: restSeconds,
		})
	}
	return slots
}

func generateFullBodyDays(all []catalog.Exercise, goal string) []WorkoutDayData {
	push := filterByMuscleGroups(all, pushMuscleGroups)
	pull := filterByMuscleGroups(all, pullMuscleGroups)
	legs := filterByMuscleGroups(all, legMuscleGroups)
	core := filterByMuscleGroups(all, coreMuscleGroups)

	p := prescriptionFor(goal)

	coreSlot := func() slot {
		return slot{
			exercise:    pick(core, 0, all, 4),
			sets:        corePrescription.Sets,
			reps:        corePrescription.Reps,
			restSeconds: coreRestSeconds,
		}
	}

	dayA := buildDay(0, "Full Body A", []slot{
		{pick(legs, 0, all, 0), p.Sets, p.Reps, defaultRestSeconds},
		{pick(push, 0, all, 1), p.Sets, p.Reps, defaultRestSeconds},
		{pick(pull, 0, all, 2), p.Sets, p.Reps, defaultRestSeconds},
		{pick(legs, 1, all, 3), p.Sets, p.Reps, shortRestSeconds},
		coreSlot(),
	})
	dayB := buildDay(1, "Full Body B", []slot{
		{pick(pull, 0, all, 0), p.Sets, p.Reps, defaultRestSeconds},
		{pick(push, 1, all, 1), p.Sets, p.Reps, defaultRestSeconds},
		{pick(legs, 0, all, 2), p.Sets, p.Reps, defaultRestSeconds},
		{pick(pull, 1, all, 3), p.Sets, p.Reps, shortRestSeconds},
		coreSlot(),
	})
	dayC := buildDay(2, "Full Body C", []slot{
		{pick(push, 0, all, 0), p.Sets, p.Reps, defaultRestSeconds},
		{pick(legs, 1, all, 1), p.Sets, p.Reps, defaultRestSeconds},
		{pick(pull, 1, all, 2), p.Sets, p.Reps, defaultRestSeconds},
		{pick(push, 1, all, 3), p.Sets, p.Reps, shortRestSeconds},
		coreSlot(),
	})

	return []WorkoutDayData{dayA, dayB, dayC}
}

func generateUpperLowerDays(all []catalog.Exercise, goal string) []WorkoutDayData {
	upper := filterByMuscleGroups(all, upperMuscleGroups)
	lower := filterByMuscleGroups(all, legMuscleGroups)
	core := filterByMuscleGroups(all, coreMuscleGroups)

	p := prescriptionFor(goal)

	upperA := take(upper, 0, 4)
	upperB := take(upper, 4, 8)
	if len(upperB) == 0 {
		upperB = upperA
	}
	lowerA := take(lower, 0, 4)
	lowerB := take(lower, 4, 8)
	if len(lowerB) == 0 {
		lowerB = lowerA
	}

	withCore := func(slots []slot) []slot {
		if len(core) == 0 {
			return slots
		}
		return append(slots, slot{
			exercise:    &core[0],
			sets:        corePrescription.Sets,
			reps:        corePrescription.Reps,
			restSeconds: coreRestSeconds,
		})
	}

	return []WorkoutDayData{
		buildDay(0, "Upper Body A", withCore(exercisesToSlots(upperA, p, defaultRestSeconds))),
		buildDay(1, "Lower Body A", exercisesToSlots(lowerA, p, defaultRestSeconds)),
		buildDay(2, "Upper Body B", withCore(exercisesToSlots(upperB, p, defaultRestSeconds))),
		buildDay(3, "Lower Body B", exercisesToSlots(lowerB, p, defaultRestSeconds)),
	}
}

func generatePPLDays(all []catalog.Exercise, goal string, daysPerWeek int) []WorkoutDayData {
	push := take(filterByMuscleGroups(all, pushMuscleGroups), 0, 5)
	pull := take(filterByMuscleGroups(all, pullMuscleGroups), 0, 5)
	legs := take(filterByMuscleGroups(all, legMuscleGroups), 0, 5)

	p := prescriptionFor(goal)

	pushSlots := exercisesToSlots(push, p, defaultRestSeconds)
	pullSlots := exercisesToSlots(pull, p, defaultRestSeconds)
	legsSlots := exercisesToSlots(legs, p, defaultRestSeconds)

	titles := []string{"Push", "Pull", "Legs"}
	slotsByTitle := [][]slot{pushSlots, pullSlots, legsSlots}

	dayCount := 6
	if daysPerWeek == 5 {
		dayCount = 5
	}

	days := make([]WorkoutDayData, 0, dayCount)
	for i := 0; i < dayCount; i++ {
		days = append(days, buildDay(i, titles[i%3], slotsByTitle[i%3]))
	}
	return days
}

func generateArnoldDays(all []catalog.Exercise, goal string) []WorkoutDayData {
	chest := take(filterByMuscleGroups(all, chestMuscleGroups), 0, 3)
	back := take(filterByMuscleGroups(all, backMuscleGroups), 0, 3)
	shoulders := take(filterByMuscleGroups(all, shoulderMuscleGroups), 0, 3)
	arms := take(filterByMuscleGroups(all, armMuscleGroups), 0, 3)
	legs := take(filterByMuscleGroups(all, legMuscleGroups), 0, 5)

	p := prescriptionFor(goal)

	chestBackSlots := append(
		exercisesToSlots(chest, p, defaultRestSeconds),
		exercisesToSlots(back, p, defaultRestSeconds)...,
	)
	shouldersArmsSlots := append(
		exercisesToSlots(shoulders, p, defaultRestSeconds),
		exercisesToSlots(arms, p, defaultRestSeconds)...,
	)
	legsSlots := exercisesToSlots(legs, p, defaultRestSeconds)

	titles := []string{"Chest & Back", "Shoulders & Arms", "Legs"}
	slotsByTitle := [][]slot{chestBackSlots, shouldersArmsSlots, legsSlots}

	// the arnold split is always six days, the three-day cycle twice
	days := make([]WorkoutDayData, 0, 6)
	for i := 0; i < 6; i++ {
		days = append(days, buildDay(i, titles[i%3], slotsByTitle[i%3]))
	}
	return days
}

func reindexDays(days []WorkoutDayData) []WorkoutDayData {
	reindexed := make([]WorkoutDayData, 0, len(days))
	for i, day := range days {
		day.DayIndex = i
		exercises := make([]PlannedExercise, len(day.Exercises))
		copy(exercises, day.Exercises)
		for j := range exercises {
			exercises[j].Order = j + 1
		}
		day.Exercises = exercises
		reindexed = append(reindexed, day)
	}
	return reindexed
}

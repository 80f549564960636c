package planner

import "time"

// WorkoutPlanData is the generator output: a plan not yet persisted.
type WorkoutPlanData struct {
	Name string           `json:"name"`
	Goal string           `json:"goal"`
	Days []WorkoutDayData `json:"days"`
}

type WorkoutDayData struct {
	DayIndex  int               `json:"dayIndex"`
	Title     string            `json:"title"`
	Exercises []PlannedExercise `json:"exercises"`
}

type PlannedExercise struct {
	ExerciseID  int    `json:"exerciseId"`
	Order       int    `json:"order"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"restSeconds,omitempty"`
}

// Plan is a persisted workout plan.
type Plan struct {
	ID        int          `json:"id"`
	UserID    int          `json:"-"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	Routine   RoutineType  `json:"routineType"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	Days      []WorkoutDay `json:"days,omitempty"`
}

type WorkoutDay struct {
	ID        int           `json:"id"`
	PlanID    int           `json:"planId"`
	DayIndex  int           `json:"dayIndex"`
	Title     string        `json:"title"`
	Exercises []DayExercise `json:"exercises,omitempty"`
}

type DayExercise struct {
	ID          int    `json:"id"`
	DayID       int    `json:"dayId"`
	ExerciseID  int    `json:"exerciseId"`
	Order       int    `json:"order"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"restSeconds,omitempty"`
}

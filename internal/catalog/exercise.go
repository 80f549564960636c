package catalog

import "time"

// Exercise is a single catalog entry. The catalog is reference data,
// seeded once and listed in creation order, so the plan generator
// produces the same plan for the same inputs.
type Exercise struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscleGroup"`
	Equipment   string    `json:"equipment"`
	CreatedAt   time.Time `json:"createdAt"`
}

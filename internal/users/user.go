package users

import "time"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`

	PasswordHash string `json:"-"`
}

// Profile holds the onboarding answers that drive plan generation.
type Profile struct {
	UserID          int       `json:"userId"`
	Age             int       `json:"age"`
	HeightCm        float64   `json:"heightCm"`
	WeightKg        float64   `json:"weightKg"`
	Sex             string    `json:"sex"`
	DaysPerWeek     int       `json:"daysPerWeek"`
	ExperienceLevel string    `json:"experienceLevel"`
	Goal            string    `json:"goal"`
	Equipment       []string  `json:"equipment"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

package planner

// RoutineType is one of the four fixed split patterns.
type RoutineType string

const (
	RoutineFullBody   RoutineType = "fullbody"
	RoutineUpperLower RoutineType = "upperlower"
	RoutinePPL        RoutineType = "ppl"
	RoutineArnold     RoutineType = "arnold"
)

func (rt RoutineType) Valid() bool {
	switch rt {
	case RoutineFullBody, RoutineUpperLower, RoutinePPL, RoutineArnold:
		return true
	}
	return false
}

// training goals, as stored on the user profile
const (
	GoalBuildMuscle = "build_muscle"
	GoalStrength    = "strength"
	GoalEndurance   = "endurance"
)

// equipment meta tokens denote a package choice on the onboarding screen,
// not an actual piece of equipment, and are stripped before filtering
var equipmentMetaTokens = map[string]bool{
	"public_gym":       true,
	"home_gym_limited": true,
}

// muscle group buckets used by the split patterns
var (
	pushMuscleGroups = map[string]bool{"chest": true, "shoulders": true, "triceps": true}
	pullMuscleGroups = map[string]bool{"back": true, "biceps": true}
	legMuscleGroups  = map[string]bool{
		"legs": true, "quadriceps": true, "hamstrings": true, "glutes": true, "calves": true,
	}
	coreMuscleGroups = map[string]bool{"core": true, "abs": true}
	upperMuscleGroups = map[string]bool{
		"chest": true, "shoulders": true, "triceps": true, "back": true, "biceps": true,
	}
	chestMuscleGroups    = map[string]bool{"chest": true}
	backMuscleGroups     = map[string]bool{"back": true}
	shoulderMuscleGroups = map[string]bool{"shoulders": true}
	armMuscleGroups      = map[string]bool{"biceps": true, "triceps": true}
)

type prescription struct {
	Sets int
	Reps string
}

// prescriptionFor maps the profile goal to sets and a rep range. Core work
// is always prescribed separately (3 x 10-15, short rest).
func prescriptionFor(goal string) prescription {
	switch goal {
	case GoalBuildMuscle:
		return prescription{Sets: 3, Reps: "8-12"}
	case GoalStrength:
		return prescription{Sets: 4, Reps: "4-6"}
	case GoalEndurance:
		return prescription{Sets: 3, Reps: "15-20"}
	default:
		return prescription{Sets: 3, Reps: "10-15"}
	}
}

var corePrescription = prescription{Sets: 3, Reps: "10-15"}

const (
	defaultRestSeconds = 90
	shortRestSeconds   = 60
	coreRestSeconds    = 45
)

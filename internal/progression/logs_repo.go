package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NateM03/gym/internal/telemetry/tracing"
	"github.com/NateM03/gym/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWorkoutAlreadyCompleted = errors.New("workout already completed today")

type WorkoutLog struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	WorkoutDayID int       `json:"workoutDayId"`
	Date         time.Time `json:"date"`
	Completed    bool      `json:"completed"`
}

type ExerciseLog struct {
	ID           int      `json:"id"`
	WorkoutLogID int      `json:"workoutLogId"`
	ExerciseID   int      `json:"exerciseId"`
	SetNumber    int      `json:"setNumber"`
	Weight       *float64 `json:"weight,omitempty"`
	Reps         int      `json:"reps"`
}

type LogsRepo struct {
	db *pgxpool.Pool
}

func NewLogsRepo(db *pgxpool.Pool) *LogsRepo {
	return &LogsRepo{
		db: db,
	}
}

// CreateCompleted inserts a completed log for the given workout day and
// calendar day. A unique index on (user_id, workout_day_id, log_date)
// rejects a second completion of the same day.
func (r *LogsRepo) CreateCompleted(ctx context.Context, userID, workoutDayID int, at time.Time) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.createcompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("day.id", workoutDayID))

	workoutLog := &WorkoutLog{
		UserID:       userID,
		WorkoutDayID: workoutDayID,
		Date:         startOfDay(at),
		Completed:    true,
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO workout_log (user_id, workout_day_id, log_date, completed)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		workoutLog.UserID, workoutLog.WorkoutDayID, workoutLog.Date, workoutLog.Completed,
	).Scan(&workoutLog.ID); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrWorkoutAlreadyCompleted
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("log.id", workoutLog.ID))
	return workoutLog, nil
}

func (r *LogsRepo) AddExerciseLogs(ctx context.Context, workoutLogID int, logs []ExerciseLog) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.addexerciselogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", workoutLogID))
	span.SetAttributes(attribute.Int("logs.count", len(logs)))

	for _, l := range logs {
		if _, err := r.db.Exec(
			ctx,
			`INSERT INTO exercise_log (workout_log_id, exercise_id, set_number, weight, reps)
				VALUES ($1, $2, $3, $4, $5);`,
			workoutLogID, l.ExerciseID, l.SetNumber, l.Weight, l.Reps,
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return fmt.Errorf("insert exercise log: unknown exercise %d: %w", l.ExerciseID, err)
			}
			return fmt.Errorf("insert exercise log: %w", err)
		}
	}
	return nil
}

// CountCompletedSince counts the user's completed workouts on or after the
// given moment. Used for the workouts-this-week figure.
func (r *LogsRepo) CountCompletedSince(ctx context.Context, userID int, since time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.countcompletedsince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_log
			WHERE user_id = $1 AND log_date >= $2 AND completed IS TRUE;`,
		userID, since,
	).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

// CompletedOn reports whether the user completed the given workout day on
// the given calendar day.
func (r *LogsRepo) CompletedOn(ctx context.Context, userID, workoutDayID int, day time.Time) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.completedon")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("day.id", workoutDayID))

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_log
			WHERE user_id = $1 AND workout_day_id = $2 AND log_date = $3 AND completed IS TRUE;`,
		userID, workoutDayID, startOfDay(day),
	).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

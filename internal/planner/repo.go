package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NateM03/gym/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrPlanNotFound       = errors.New("workout plan not found")
	ErrWorkoutDayNotFound = errors.New("workout day not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Create persists a generated plan with all its days and exercises in one
// transaction. New plans are stored inactive.
func (r *Repo) Create(ctx context.Context, userID int, routine RoutineType, data WorkoutPlanData) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	plan := &Plan{
		UserID:    userID,
		Name:      data.Name,
		Goal:      data.Goal,
		Routine:   routine,
		IsActive:  false,
		CreatedAt: time.Now(),
	}

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workout_plan (user_id, name, goal, routine_type, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		plan.UserID, plan.Name, plan.Goal, plan.Routine, plan.IsActive, plan.CreatedAt,
	).Scan(&plan.ID); err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}

	for _, dayData := range data.Days {
		day := WorkoutDay{
			PlanID:   plan.ID,
			DayIndex: dayData.DayIndex,
			Title:    dayData.Title,
		}
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO workout_day (plan_id, day_index, title)
				VALUES ($1, $2, $3)
			RETURNING id;`,
			day.PlanID, day.DayIndex, day.Title,
		).Scan(&day.ID); err != nil {
			return nil, fmt.Errorf("insert day %d: %w", dayData.DayIndex, err)
		}

		for _, e := range dayData.Exercises {
			dayExercise := DayExercise{
				DayID:       day.ID,
				ExerciseID:  e.ExerciseID,
				Order:       e.Order,
				Sets:        e.Sets,
				Reps:        e.Reps,
				RestSeconds: e.RestSeconds,
			}
			if err := tx.QueryRow(
				ctx,
				`INSERT INTO workout_day_exercise (day_id, exercise_id, exercise_order, sets, reps, rest_seconds)
					VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id;`,
				dayExercise.DayID, dayExercise.ExerciseID, dayExercise.Order,
				dayExercise.Sets, dayExercise.Reps, dayExercise.RestSeconds,
			).Scan(&dayExercise.ID); err != nil {
				return nil, fmt.Errorf("insert day exercise: %w", err)
			}
			day.Exercises = append(day.Exercises, dayExercise)
		}

		plan.Days = append(plan.Days, day)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("plan.id", plan.ID))
	return plan, nil
}

func (r *Repo) CountForUser(ctx context.Context, userID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.countforuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_plan WHERE user_id = $1;`,
		userID,
	).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

// ListForUser returns the user's plans, newest first, without days.
func (r *Repo) ListForUser(ctx context.Context, userID int) (_ []Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.listforuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, goal, routine_type, is_active, created_at
			FROM workout_plan
			WHERE user_id = $1
		ORDER BY created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return r.rows2plans(rows)
}

// Get returns a plan with all its days and exercises. The userID guards
// against reading another user's plan.
func (r *Repo) Get(ctx context.Context, userID, planID int) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("plan.id", planID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, goal, routine_type, is_active, created_at
			FROM workout_plan
			WHERE id = $1 AND user_id = $2;`,
		planID, userID,
	)
	if err != nil {
		return nil, err
	}

	plans, err := r.rows2plans(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(plans) != 1 {
		return nil, ErrPlanNotFound
	}

	plan := &plans[0]
	plan.Days, err = r.daysForPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GetActive returns the user's active plan with days, or ErrPlanNotFound.
func (r *Repo) GetActive(ctx context.Context, userID int) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.getactive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, goal, routine_type, is_active, created_at
			FROM workout_plan
			WHERE user_id = $1 AND is_active IS TRUE;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	plans, err := r.rows2plans(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(plans) != 1 {
		return nil, ErrPlanNotFound
	}

	plan := &plans[0]
	plan.Days, err = r.daysForPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Activate marks the given plan active and deactivates all the user's other
// plans, in one transaction.
func (r *Repo) Activate(ctx context.Context, userID, planID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.activate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("plan.id", planID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(
		ctx,
		`UPDATE workout_plan SET is_active = FALSE WHERE user_id = $1;`,
		userID,
	); err != nil {
		return fmt.Errorf("deactivate plans: %w", err)
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE workout_plan SET is_active = TRUE WHERE id = $1 AND user_id = $2;`,
		planID, userID,
	)
	if err != nil {
		return fmt.Errorf("activate plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}

	return tx.Commit(ctx)
}

// Delete removes a plan with its days and exercises.
func (r *Repo) Delete(ctx context.Context, userID, planID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("plan.id", planID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(
		ctx,
		`DELETE FROM workout_day_exercise
			WHERE day_id IN (SELECT id FROM workout_day WHERE plan_id = $1);`,
		planID,
	); err != nil {
		return fmt.Errorf("delete day exercises: %w", err)
	}
	if _, err := tx.Exec(
		ctx,
		`DELETE FROM workout_day WHERE plan_id = $1;`,
		planID,
	); err != nil {
		return fmt.Errorf("delete days: %w", err)
	}

	tag, err := tx.Exec(
		ctx,
		`DELETE FROM workout_plan WHERE id = $1 AND user_id = $2;`,
		planID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}

	return tx.Commit(ctx)
}

// GetDay returns a workout day with its exercises, checking it belongs to
// one of the user's plans.
func (r *Repo) GetDay(ctx context.Context, userID, dayID int) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.getday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("day.id", dayID))

	var day WorkoutDay
	if err := r.db.QueryRow(
		ctx,
		`SELECT d.id, d.plan_id, d.day_index, d.title
			FROM workout_day d
			JOIN workout_plan p ON d.plan_id = p.id
			WHERE d.id = $1 AND p.user_id = $2;`,
		dayID, userID,
	).Scan(&day.ID, &day.PlanID, &day.DayIndex, &day.Title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutDayNotFound
		}
		return nil, err
	}

	day.Exercises, err = r.exercisesForDay(ctx, day.ID)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// UpdateDayExercise overrides the prescription of one exercise in a day.
func (r *Repo) UpdateDayExercise(ctx context.Context, dayID, exerciseID, sets int, reps string, restSeconds int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.planner.updatedayexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("day.id", dayID))
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_day_exercise SET sets = $1, reps = $2, rest_seconds = $3
			WHERE day_id = $4 AND exercise_id = $5;`,
		sets, reps, restSeconds, dayID, exerciseID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutDayNotFound
	}
	return nil
}

func (r *Repo) daysForPlan(ctx context.Context, planID int) ([]WorkoutDay, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, plan_id, day_index, title
			FROM workout_day
			WHERE plan_id = $1
		ORDER BY day_index ASC;`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}

	days := make([]WorkoutDay, 0)
	for rows.Next() {
		var day WorkoutDay
		if err := rows.Scan(&day.ID, &day.PlanID, &day.DayIndex, &day.Title); err != nil {
			rows.Close()
			return nil, err
		}
		days = append(days, day)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range days {
		days[i].Exercises, err = r.exercisesForDay(ctx, days[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return days, nil
}

func (r *Repo) exercisesForDay(ctx context.Context, dayID int) ([]DayExercise, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, day_id, exercise_id, exercise_order, sets, reps, rest_seconds
			FROM workout_day_exercise
			WHERE day_id = $1
		ORDER BY exercise_order ASC;`,
		dayID,
	)
	if err != nil {
		return nil, fmt.Errorf("query day exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]DayExercise, 0)
	for rows.Next() {
		var e DayExercise
		if err := rows.Scan(&e.ID, &e.DayID, &e.ExerciseID, &e.Order, &e.Sets, &e.Reps, &e.RestSeconds); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *Repo) rows2plans(rows pgx.Rows) ([]Plan, error) {
	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Goal, &p.Routine, &p.IsActive, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	if plans == nil {
		plans = make([]Plan, 0)
	}

	return plans, nil
}

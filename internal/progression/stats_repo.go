package progression

import (
	"context"
	"errors"

	"github.com/NateM03/gym/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrStatsNotFound = errors.New("user stats not found")
	ErrStatsConflict = errors.New("user stats changed concurrently")
)

type StatsRepo struct {
	db *pgxpool.Pool
}

func NewStatsRepo(db *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{
		db: db,
	}
}

// CreateStats seeds the initial stats row for a new user. Idempotent.
func (r *StatsRepo) CreateStats(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.createstats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	stats := NewUserStats(userID)
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO user_stats
				(user_id, total_xp, level, current_streak, longest_streak, workouts_this_week, last_workout_date, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING;`,
		stats.UserID, stats.TotalXP, stats.Level, stats.CurrentStreak,
		stats.LongestStreak, stats.WorkoutsThisWeek, stats.LastWorkoutDate, stats.Version,
	); err != nil {
		return err
	}
	return nil
}

func (r *StatsRepo) GetStats(ctx context.Context, userID int) (_ *UserStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.getstats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var stats UserStats
	if err := r.db.QueryRow(
		ctx,
		`SELECT user_id, total_xp, level, current_streak, longest_streak, workouts_this_week, last_workout_date, version
			FROM user_stats WHERE user_id = $1;`,
		userID,
	).Scan(
		&stats.UserID, &stats.TotalXP, &stats.Level, &stats.CurrentStreak,
		&stats.LongestStreak, &stats.WorkoutsThisWeek, &stats.LastWorkoutDate, &stats.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// UpdateChecked writes the new stats only if the row still carries the
// version the stats were read at. A lost race returns ErrStatsConflict and
// the caller decides whether to retry the whole transition.
func (r *StatsRepo) UpdateChecked(ctx context.Context, stats UserStats) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.updatechecked")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", stats.UserID))
	span.SetAttributes(attribute.Int("stats.version", stats.Version))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE user_stats SET
				total_xp = $1,
				level = $2,
				current_streak = $3,
				longest_streak = $4,
				workouts_this_week = $5,
				last_workout_date = $6,
				version = version + 1
			WHERE user_id = $7 AND version = $8;`,
		stats.TotalXP, stats.Level, stats.CurrentStreak, stats.LongestStreak,
		stats.WorkoutsThisWeek, stats.LastWorkoutDate,
		stats.UserID, stats.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatsConflict
	}
	return nil
}

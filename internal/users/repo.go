package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NateM03/gym/internal/telemetry/tracing"
	"github.com/NateM03/gym/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("user profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) CreateUser(ctx context.Context, username, email, passwordHash string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.createuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO gym_user (username, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	return user, nil
}

func (r *Repo) GetUser(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	var user User
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at
			FROM gym_user WHERE id = $1;`,
		id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repo) GetUserByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getuserbyusername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var user User
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at
			FROM gym_user WHERE username = $1;`,
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertProfile creates or replaces the user's onboarding profile.
func (r *Repo) UpsertProfile(ctx context.Context, profile Profile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.upsertprofile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", profile.UserID))

	equipmentJson, err := json.Marshal(profile.Equipment)
	if err != nil {
		return fmt.Errorf("marshal equipment: %w", err)
	}

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO user_profile (user_id, age, height_cm, weight_kg, sex, days_per_week, experience_level, goal, equipment, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			sex = EXCLUDED.sex,
			days_per_week = EXCLUDED.days_per_week,
			experience_level = EXCLUDED.experience_level,
			goal = EXCLUDED.goal,
			equipment = EXCLUDED.equipment,
			updated_at = EXCLUDED.updated_at;`,
		profile.UserID, profile.Age, profile.HeightCm, profile.WeightKg, profile.Sex,
		profile.DaysPerWeek, profile.ExperienceLevel,
		profile.Goal, equipmentJson, time.Now(),
	); err != nil {
		return err
	}
	return nil
}

func (r *Repo) GetProfile(ctx context.Context, userID int) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getprofile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var profile Profile
	var equipmentBytes []byte
	if err := r.db.QueryRow(
		ctx,
		`SELECT user_id, age, height_cm, weight_kg, sex, days_per_week, experience_level, goal, equipment, updated_at
			FROM user_profile WHERE user_id = $1;`,
		userID,
	).Scan(
		&profile.UserID, &profile.Age, &profile.HeightCm, &profile.WeightKg, &profile.Sex,
		&profile.DaysPerWeek, &profile.ExperienceLevel,
		&profile.Goal, &equipmentBytes, &profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if len(equipmentBytes) > 0 {
		if err := json.Unmarshal(equipmentBytes, &profile.Equipment); err != nil {
			return nil, fmt.Errorf("unmarshal equipment: %w", err)
		}
	}
	return &profile, nil
}

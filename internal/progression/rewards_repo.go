package progression

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
	ErrRewardNotFound = errors.New("reward not found")
	ErrRewardNotOwned = errors.New("reward not unlocked")
)

type RewardsRepo struct {
	db *pgxpool.Pool
}

func NewRewardsRepo(db *pgxpool.Pool) *RewardsRepo {
	return &RewardsRepo{
		db: db,
	}
}

func (r *RewardsRepo) ListRewards(ctx context.Context) (_ []Reward, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.listrewards")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, description, type, image_url, required_level, required_streak
			FROM reward
		ORDER BY required_level ASC NULLS LAST, required_streak ASC NULLS LAST;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2rewards(rows)
}

func (r *RewardsRepo) GetReward(ctx context.Context, id int) (_ *Reward, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.getreward")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("reward.id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, description, type, image_url, required_level, required_streak
			FROM reward WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rewards, err := rows2rewards(rows)
	if err != nil {
		return nil, err
	}
	if len(rewards) != 1 {
		return nil, ErrRewardNotFound
	}
	return &rewards[0], nil
}

func (r *RewardsRepo) ListUserRewards(ctx context.Context, userID int) (_ []UserReward, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.listuserrewards")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT user_id, reward_id, equipped, unlocked_at
			FROM user_reward WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	userRewards := make([]UserReward, 0)
	for rows.Next() {
		var ur UserReward
		if err := rows.Scan(&ur.UserID, &ur.RewardID, &ur.Equipped, &ur.UnlockedAt); err != nil {
			return nil, err
		}
		userRewards = append(userRewards, ur)
	}
	return userRewards, nil
}

// AddUserRewards creates ownership rows for newly unlocked rewards, not
// equipped. Re-unlocking an owned reward is a no-op.
func (r *RewardsRepo) AddUserRewards(ctx context.Context, userID int, rewardIDs []int, unlockedAt time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.adduserrewards")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("rewards.count", len(rewardIDs)))

	for _, rewardID := range rewardIDs {
		if _, err := r.db.Exec(
			ctx,
			`INSERT INTO user_reward (user_id, reward_id, equipped, unlocked_at)
				VALUES ($1, $2, FALSE, $3)
			ON CONFLICT (user_id, reward_id) DO NOTHING;`,
			userID, rewardID, unlockedAt,
		); err != nil {
			return fmt.Errorf("insert user reward %d: %w", rewardID, err)
		}
	}
	return nil
}

// Equip marks an owned reward equipped. Avatars are mutually exclusive, so
// equipping one unequips the user's other avatars in the same transaction.
func (r *RewardsRepo) Equip(ctx context.Context, userID, rewardID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.equip")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("reward.id", rewardID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var rewardType RewardType
	if err := tx.QueryRow(
		ctx,
		`SELECT r.type
			FROM user_reward ur
			JOIN reward r ON ur.reward_id = r.id
			WHERE ur.user_id = $1 AND ur.reward_id = $2;`,
		userID, rewardID,
	).Scan(&rewardType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRewardNotOwned
		}
		return err
	}

	if rewardType == RewardTypeAvatar {
		if _, err := tx.Exec(
			ctx,
			`UPDATE user_reward SET equipped = FALSE
				WHERE user_id = $1 AND equipped IS TRUE
				AND reward_id IN (SELECT id FROM reward WHERE type = $2);`,
			userID, RewardTypeAvatar,
		); err != nil {
			return fmt.Errorf("unequip avatars: %w", err)
		}
	}

	if _, err := tx.Exec(
		ctx,
		`UPDATE user_reward SET equipped = TRUE
			WHERE user_id = $1 AND reward_id = $2;`,
		userID, rewardID,
	); err != nil {
		return fmt.Errorf("equip reward: %w", err)
	}

	return tx.Commit(ctx)
}

func rows2rewards(rows pgx.Rows) ([]Reward, error) {
	rewards := make([]Reward, 0)
	for rows.Next() {
		var reward Reward
		var imageURL *string
		if err := rows.Scan(
			&reward.ID, &reward.Name, &reward.Description, &reward.Type,
			&imageURL, &reward.RequiredLevel, &reward.RequiredStreak,
		); err != nil {
			return nil, err
		}
		if imageURL != nil {
			reward.ImageURL = *imageURL
		}
		rewards = append(rewards, reward)
	}
	return rewards, nil
}

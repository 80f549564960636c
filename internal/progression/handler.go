package progression

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NateM03/gym/internal/auth"
	"github.com/NateM03/gym/internal/planner"
	"github.com/NateM03/gym/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// workoutDays gives access to the plan side: ownership checks and
// prescription overrides.
type workoutDays interface {
	GetDay(ctx context.Context, userID, dayID int) (*planner.WorkoutDay, error)
	UpdateDayExercise(ctx context.Context, dayID, exerciseID, sets int, reps string, restSeconds int) error
}

type Handler struct {
	service *Service
	days    workoutDays
}

func NewHandler(service *Service, days workoutDays) *Handler {
	return &Handler{
		service: service,
		days:    days,
	}
}

type exercisePlanOverride struct {
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"restSeconds"`
}

type logWorkoutRequest struct {
	ExerciseLogs  []ExerciseLog                   `json:"exerciseLogs"`
	ExercisePlans map[string]exercisePlanOverride `json:"exercisePlans"`
}

func (handler *Handler) HandleLogWorkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	dayID, err := strconv.Atoi(mux.Vars(r)["dayId"])
	if err != nil {
		http.Error(w, "error, day id invalid", http.StatusBadRequest)
		return
	}

	var req logWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	day, err := handler.days.GetDay(r.Context(), userID, dayID)
	if err != nil {
		if errors.Is(err, planner.ErrWorkoutDayNotFound) {
			http.Error(w, "workout day not found", http.StatusNotFound)
			return
		}
		log.Errorf("log workout, get day %d for user %d: %s", dayID, userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// prescription overrides are applied before the completion is recorded,
	// so the stored plan reflects what was actually performed
	for exerciseIDStr, plan := range req.ExercisePlans {
		exerciseID, err := strconv.Atoi(exerciseIDStr)
		if err != nil {
			http.Error(w, "error, exercise plan key invalid", http.StatusBadRequest)
			return
		}
		if err := handler.days.UpdateDayExercise(
			r.Context(), day.ID, exerciseID, plan.Sets, plan.Reps, plan.RestSeconds,
		); err != nil {
			log.Warnf("log workout, override exercise %d plan in day %d: %s", exerciseID, day.ID, err)
		}
	}

	result, err := handler.service.RecordCompletion(r.Context(), userID, day.ID, req.ExerciseLogs, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkoutAlreadyCompleted):
			http.Error(w, "workout already completed today", http.StatusConflict)
		case errors.Is(err, ErrStatsConflict):
			http.Error(w, "stats changed concurrently, retry", http.StatusConflict)
		case errors.Is(err, ErrStatsNotFound):
			http.Error(w, "user stats not found", http.StatusNotFound)
		default:
			log.Errorf("log workout day %d for user %d: %s", day.ID, userID, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	log.Printf(
		"workout day %d completed by user %d: +%d xp, level %d, streak %d",
		day.ID, userID, result.AwardedXP, result.Stats.Level, result.Stats.CurrentStreak,
	)

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("marshal completion result: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusCreated)
}

func (handler *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	stats, xpForNextLevel, err := handler.service.Stats(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrStatsNotFound) {
			http.Error(w, "user stats not found", http.StatusNotFound)
			return
		}
		log.Errorf("get stats for user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("marshal stats: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resJson := fmt.Sprintf(`{"stats": %s, "xpForNextLevel": %d}`, statsJson, xpForNextLevel)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}

func (handler *Handler) HandleListRewards(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	overview, err := handler.service.RewardsOverview(r.Context(), userID)
	if err != nil {
		log.Errorf("list rewards for user %d: %s", userID, err)
		http.Error(w, "failed to get rewards", http.StatusInternalServerError)
		return
	}

	rewardsJson, err := json.Marshal(overview)
	if err != nil {
		log.Errorf("marshal rewards: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resJson := fmt.Sprintf(`{"rewards": %s, "total": %d}`, rewardsJson, len(overview))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}

func (handler *Handler) HandleEquipReward(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	rewardID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, reward id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.service.EquipReward(r.Context(), userID, rewardID); err != nil {
		switch {
		case errors.Is(err, ErrRewardNotFound):
			http.Error(w, "reward not found", http.StatusNotFound)
		case errors.Is(err, ErrRewardNotOwned):
			http.Error(w, "reward not unlocked", http.StatusConflict)
		default:
			log.Errorf("equip reward %d for user %d: %s", rewardID, userID, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteTextResponseOK(w, fmt.Sprintf("equipped:%d", rewardID))
}

package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NateM03/gym/internal/auth"
	"github.com/NateM03/gym/internal/users"
	"github.com/NateM03/gym/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type profileProvider interface {
	GetProfile(ctx context.Context, userID int) (*users.Profile, error)
}

type Handler struct {
	service  *Service
	profiles profileProvider
}

func NewHandler(service *Service, profiles profileProvider) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
	}
}

type generateRequest struct {
	RoutineType RoutineType      `json:"routineType"`
	Name        string           `json:"name"`
	Days        []WorkoutDayData `json:"days"`
}

func (handler *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := handler.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrProfileNotFound) {
			http.Error(w, "profile not found, complete onboarding first", http.StatusBadRequest)
			return
		}
		log.Errorf("generate plan, get profile for user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	plan, err := handler.service.CreatePlan(r.Context(), userID, GenerateParams{
		Name:        req.Name,
		Goal:        profile.Goal,
		DaysPerWeek: profile.DaysPerWeek,
		Equipment:   profile.Equipment,
		Routine:     req.RoutineType,
		CustomDays:  req.Days,
	})
	if err != nil {
		handler.writeError(w, err, "generate plan for user %d", userID)
		return
	}

	log.Printf("new workout plan generated: [%s] %d for user %d", plan.Name, plan.ID, userID)

	planJson, err := json.Marshal(plan)
	if err != nil {
		log.Errorf("marshal plan: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, planJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	plans, err := handler.service.ListPlans(r.Context(), userID)
	if err != nil {
		log.Errorf("list plans for user %d: %s", userID, err)
		http.Error(w, "failed to get plans", http.StatusInternalServerError)
		return
	}

	plansJson, err := json.Marshal(plans)
	if err != nil {
		log.Errorf("marshal plans: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resJson := fmt.Sprintf(`{"plans": %s, "total": %d}`, plansJson, len(plans))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}

func (handler *Handler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	plan, err := handler.service.ActivePlan(r.Context(), userID)
	if err != nil {
		handler.writeError(w, err, "get active plan for user %d", userID)
		return
	}

	planJson, err := json.Marshal(plan)
	if err != nil {
		log.Errorf("marshal plan: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, planJson)
}

func (handler *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	planID, err := planIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.service.ActivatePlan(r.Context(), userID, planID); err != nil {
		handler.writeError(w, err, "activate plan %d for user %d", planID, userID)
		return
	}

	pkg.WriteTextResponseOK(w, fmt.Sprintf("activated:%d", planID))
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	planID, err := planIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.service.DeletePlan(r.Context(), userID, planID); err != nil {
		handler.writeError(w, err, "delete plan %d for user %d", planID, userID)
		return
	}

	pkg.WriteTextResponseOK(w, fmt.Sprintf("deleted:%d", planID))
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	today, err := handler.service.TodaysWorkout(r.Context(), userID, time.Now())
	if err != nil {
		handler.writeError(w, err, "todays workout for user %d", userID)
		return
	}

	todayJson, err := json.Marshal(today)
	if err != nil {
		log.Errorf("marshal todays workout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, todayJson)
}

func (handler *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	dayIDStr := mux.Vars(r)["dayId"]
	dayID, err := strconv.Atoi(dayIDStr)
	if err != nil {
		http.Error(w, "error, day id invalid", http.StatusBadRequest)
		return
	}

	day, err := handler.service.GetDay(r.Context(), userID, dayID)
	if err != nil {
		handler.writeError(w, err, "get day %d for user %d", dayID, userID)
		return
	}

	dayJson, err := json.Marshal(day)
	if err != nil {
		log.Errorf("marshal day: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, dayJson)
}

func (handler *Handler) writeError(w http.ResponseWriter, err error, logFormat string, logArgs ...any) {
	switch {
	case errors.Is(err, ErrPlanLimitReached):
		http.Error(w, "workout plan limit reached", http.StatusConflict)
	case errors.Is(err, ErrPlanNotFound):
		http.Error(w, "plan not found", http.StatusNotFound)
	case errors.Is(err, ErrWorkoutDayNotFound):
		http.Error(w, "workout day not found", http.StatusNotFound)
	case errors.Is(err, ErrNoExercisesAvailable),
		errors.Is(err, ErrInvalidCustomDays),
		errors.Is(err, ErrInvalidDaysPerWeek),
		errors.Is(err, ErrInvalidRoutineType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf(logFormat+": %s", append(logArgs, err)...)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func planIDFromRequest(r *http.Request) (int, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("error, plan id empty")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.New("error, plan id invalid")
	}
	return id, nil
}

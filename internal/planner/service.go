package planner

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NateM03/gym/internal/catalog"
	"github.com/NateM03/gym/internal/telemetry/metrics"
	"github.com/NateM03/gym/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxPlansPerUser       = 4
	generatedPlanCacheTTL = 10 * 60 // seconds
)

var ErrPlanLimitReached = errors.New("workout plan limit reached")

type plansRepo interface {
	Create(ctx context.Context, userID int, routine RoutineType, data WorkoutPlanData) (*Plan, error)
	CountForUser(ctx context.Context, userID int) (int, error)
	ListForUser(ctx context.Context, userID int) ([]Plan, error)
	Get(ctx context.Context, userID, planID int) (*Plan, error)
	GetActive(ctx context.Context, userID int) (*Plan, error)
	Activate(ctx context.Context, userID, planID int) error
	Delete(ctx context.Context, userID, planID int) error
	GetDay(ctx context.Context, userID, dayID int) (*WorkoutDay, error)
}

type exercisesLister interface {
	List(ctx context.Context, params catalog.ListParams) ([]catalog.Exercise, error)
}

// completedChecker reports whether the user already logged the given
// workout day on the given calendar day.
type completedChecker interface {
	CompletedOn(ctx context.Context, userID, dayID int, day time.Time) (bool, error)
}

type Service struct {
	repo             plansRepo
	exercises        exercisesLister
	completedChecker completedChecker
	cache            *freecache.Cache
	metrics          *metrics.Manager
}

func NewService(
	repo plansRepo,
	exercises exercisesLister,
	completedChecker completedChecker,
	cache *freecache.Cache,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:             repo,
		exercises:        exercises,
		completedChecker: completedChecker,
		cache:            cache,
		metrics:          metricsManager,
	}
}

// CreatePlan generates a plan from the given params and persists it. At most
// four plans per user; the new plan is stored inactive.
func (s *Service) CreatePlan(ctx context.Context, userID int, params GenerateParams) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.createplan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("routine", string(params.Routine)))

	count, err := s.repo.CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count plans: %w", err)
	}
	if count >= maxPlansPerUser {
		return nil, ErrPlanLimitReached
	}

	exercises, err := s.exercises.List(ctx, catalog.ListParams{})
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	data, err := s.generateCached(params, exercises)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.Create(ctx, userID, params.Routine, *data)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.metrics.CounterPlansGenerated.Inc()
	return plan, nil
}

// generateCached runs the generator, caching its output by a fingerprint of
// the params and the catalog. Generation is deterministic, so a cache hit is
// always exact.
func (s *Service) generateCached(params GenerateParams, exercises []catalog.Exercise) (*WorkoutPlanData, error) {
	// bypass mode is never cached, the caller supplied the days
	if len(params.CustomDays) > 0 || s.cache == nil {
		return Generate(params, exercises)
	}

	key := generateFingerprint(params, exercises)
	if cached, err := s.cache.Get(key); err == nil {
		var data WorkoutPlanData
		if err := json.Unmarshal(cached, &data); err == nil {
			return &data, nil
		}
		log.Warnf("planner cache: unmarshal cached plan: will regenerate")
	}

	data, err := Generate(params, exercises)
	if err != nil {
		return nil, err
	}

	if dataJson, err := json.Marshal(data); err == nil {
		if err := s.cache.Set(key, dataJson, generatedPlanCacheTTL); err != nil {
			log.Warnf("planner cache: set: %s", err)
		}
	}

	return data, nil
}

func generateFingerprint(params GenerateParams, exercises []catalog.Exercise) []byte {
	equipment := make([]string, len(params.Equipment))
	copy(equipment, params.Equipment)
	sort.Strings(equipment)

	catalogVersion := 0
	if len(exercises) > 0 {
		catalogVersion = exercises[len(exercises)-1].ID
	}

	fingerprint := fmt.Sprintf(
		"%s|%d|%s|%s|%d|%d",
		params.Goal, params.DaysPerWeek, strings.Join(equipment, ","),
		params.Routine, len(exercises), catalogVersion,
	)
	sum := sha256.Sum256([]byte(fingerprint))
	return sum[:]
}

func (s *Service) ListPlans(ctx context.Context, userID int) (_ []Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.listplans")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) GetPlan(ctx context.Context, userID, planID int) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.getplan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return s.repo.Get(ctx, userID, planID)
}

func (s *Service) ActivePlan(ctx context.Context, userID int) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.activeplan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return s.repo.GetActive(ctx, userID)
}

func (s *Service) ActivatePlan(ctx context.Context, userID, planID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.activateplan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return s.repo.Activate(ctx, userID, planID)
}

func (s *Service) DeletePlan(ctx context.Context, userID, planID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.deleteplan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return s.repo.Delete(ctx, userID, planID)
}

func (s *Service) GetDay(ctx context.Context, userID, dayID int) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.getday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return s.repo.GetDay(ctx, userID, dayID)
}

// TodayWorkout is the resolved workout for the current calendar day.
type TodayWorkout struct {
	PlanID    int        `json:"planId"`
	PlanName  string     `json:"planName"`
	Day       WorkoutDay `json:"day"`
	Completed bool       `json:"completed"`
}

// TodaysWorkout resolves which day of the active plan is due today: days
// rotate from the plan's creation date, day index = days since creation
// modulo the day count.
func (s *Service) TodaysWorkout(ctx context.Context, userID int, now time.Time) (_ *TodayWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.todaysworkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	plan, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(plan.Days) == 0 {
		return nil, ErrWorkoutDayNotFound
	}

	daysSinceCreation := daysBetween(plan.CreatedAt, now)
	if daysSinceCreation < 0 {
		daysSinceCreation = 0
	}
	dayIndex := daysSinceCreation % len(plan.Days)

	var day *WorkoutDay
	for i := range plan.Days {
		if plan.Days[i].DayIndex == dayIndex {
			day = &plan.Days[i]
			break
		}
	}
	if day == nil {
		return nil, ErrWorkoutDayNotFound
	}

	completed, err := s.completedChecker.CompletedOn(ctx, userID, day.ID, now)
	if err != nil {
		return nil, fmt.Errorf("check completed: %w", err)
	}

	return &TodayWorkout{
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		Day:       *day,
		Completed: completed,
	}, nil
}

// daysBetween counts whole calendar days from a to b. The calendar dates are
// compared in UTC so that DST transitions and mixed locations cannot shrink
// or stretch a day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

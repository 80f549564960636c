package planner

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RepoMock is an in-memory plans repo used in tests.
type RepoMock struct {
	mutex      sync.RWMutex
	Plans      map[int]*Plan
	nextPlanID int
	nextDayID  int
	nextExID   int
}

func NewRepoMock() *RepoMock {
	return &RepoMock{
		Plans:      make(map[int]*Plan),
		nextPlanID: 1,
		nextDayID:  1,
		nextExID:   1,
	}
}

func (m *RepoMock) Create(_ context.Context, userID int, routine RoutineType, data WorkoutPlanData) (*Plan, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	plan := &Plan{
		ID:        m.nextPlanID,
		UserID:    userID,
		Name:      data.Name,
		Goal:      data.Goal,
		Routine:   routine,
		CreatedAt: time.Now(),
	}
	m.nextPlanID++

	for _, dayData := range data.Days {
		day := WorkoutDay{
			ID:       m.nextDayID,
			PlanID:   plan.ID,
			DayIndex: dayData.DayIndex,
			Title:    dayData.Title,
		}
		m.nextDayID++
		for _, e := range dayData.Exercises {
			day.Exercises = append(day.Exercises, DayExercise{
				ID:          m.nextExID,
				DayID:       day.ID,
				ExerciseID:  e.ExerciseID,
				Order:       e.Order,
				Sets:        e.Sets,
				Reps:        e.Reps,
				RestSeconds: e.RestSeconds,
			})
			m.nextExID++
		}
		plan.Days = append(plan.Days, day)
	}

	m.Plans[plan.ID] = plan
	stored := *plan
	return &stored, nil
}

func (m *RepoMock) CountForUser(_ context.Context, userID int) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	count := 0
	for _, p := range m.Plans {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *RepoMock) ListForUser(_ context.Context, userID int) ([]Plan, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	plans := make([]Plan, 0)
	for _, p := range m.Plans {
		if p.UserID == userID {
			plan := *p
			plan.Days = nil
			plans = append(plans, plan)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].ID > plans[j].ID
	})
	return plans, nil
}

func (m *RepoMock) Get(_ context.Context, userID, planID int) (*Plan, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	p, ok := m.Plans[planID]
	if !ok || p.UserID != userID {
		return nil, ErrPlanNotFound
	}
	plan := *p
	return &plan, nil
}

func (m *RepoMock) GetActive(_ context.Context, userID int) (*Plan, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, p := range m.Plans {
		if p.UserID == userID && p.IsActive {
			plan := *p
			return &plan, nil
		}
	}
	return nil, ErrPlanNotFound
}

func (m *RepoMock) Activate(_ context.Context, userID, planID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	target, ok := m.Plans[planID]
	if !ok || target.UserID != userID {
		return ErrPlanNotFound
	}
	for _, p := range m.Plans {
		if p.UserID == userID {
			p.IsActive = false
		}
	}
	target.IsActive = true
	return nil
}

func (m *RepoMock) Delete(_ context.Context, userID, planID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	p, ok := m.Plans[planID]
	if !ok || p.UserID != userID {
		return ErrPlanNotFound
	}
	delete(m.Plans, planID)
	return nil
}

func (m *RepoMock) GetDay(_ context.Context, userID, dayID int) (*WorkoutDay, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, p := range m.Plans {
		if p.UserID != userID {
			continue
		}
		for i := range p.Days {
			if p.Days[i].ID == dayID {
				day := p.Days[i]
				return &day, nil
			}
		}
	}
	return nil, ErrWorkoutDayNotFound
}

func (m *RepoMock) UpdateDayExercise(_ context.Context, dayID, exerciseID, sets int, reps string, restSeconds int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, p := range m.Plans {
		for i := range p.Days {
			if p.Days[i].ID != dayID {
				continue
			}
			for j := range p.Days[i].Exercises {
				if p.Days[i].Exercises[j].ExerciseID == exerciseID {
					p.Days[i].Exercises[j].Sets = sets
					p.Days[i].Exercises[j].Reps = reps
					p.Days[i].Exercises[j].RestSeconds = restSeconds
					return nil
				}
			}
		}
	}
	return ErrWorkoutDayNotFound
}

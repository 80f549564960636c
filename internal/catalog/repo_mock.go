package catalog

import (
	"context"
	"sync"
)

// RepoMock is an in-memory exercise repo used in tests.
type RepoMock struct {
	mutex     sync.RWMutex
	Exercises map[int]Exercise
	nextID    int
}

func NewRepoMock(exercises ...Exercise) *RepoMock {
	mock := &RepoMock{
		Exercises: make(map[int]Exercise),
		nextID:    1,
	}
	for _, e := range exercises {
		mock.Exercises[e.ID] = e
		if e.ID >= mock.nextID {
			mock.nextID = e.ID + 1
		}
	}
	return mock
}

func (m *RepoMock) Add(_ context.Context, exercise Exercise) (*Exercise, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	exercise.ID = m.nextID
	m.nextID++
	m.Exercises[exercise.ID] = exercise
	return &exercise, nil
}

func (m *RepoMock) Get(_ context.Context, id int) (*Exercise, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	e, ok := m.Exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	return &e, nil
}

func (m *RepoMock) List(_ context.Context, params ListParams) ([]Exercise, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	exercises := make([]Exercise, 0, len(m.Exercises))
	for id := 1; id < m.nextID; id++ {
		e, ok := m.Exercises[id]
		if !ok {
			continue
		}
		if params.MuscleGroup != "" && e.MuscleGroup != params.MuscleGroup {
			continue
		}
		if params.Equipment != "" && e.Equipment != params.Equipment {
			continue
		}
		exercises = append(exercises, e)
	}
	return exercises, nil
}

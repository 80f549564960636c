package users

import (
	"context"
	"sync"
	"time"
)

// RepoMock is an in-memory users repo used in tests.
type RepoMock struct {
	mutex    sync.RWMutex
	Users    map[int]*User
	Profiles map[int]Profile
	nextID   int
}

func NewRepoMock() *RepoMock {
	return &RepoMock{
		Users:    make(map[int]*User),
		Profiles: make(map[int]Profile),
		nextID:   1,
	}
}

func (m *RepoMock) CreateUser(_ context.Context, username, email, passwordHash string) (*User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, u := range m.Users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}
	user := &User{
		ID:           m.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.nextID++
	m.Users[user.ID] = user
	stored := *user
	return &stored, nil
}

func (m *RepoMock) GetUser(_ context.Context, id int) (*User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := *u
	return &user, nil
}

func (m *RepoMock) GetUserByUsername(_ context.Context, username string) (*User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, u := range m.Users {
		if u.Username == username {
			user := *u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *RepoMock) UpsertProfile(_ context.Context, profile Profile) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	profile.UpdatedAt = time.Now()
	m.Profiles[profile.UserID] = profile
	return nil
}

func (m *RepoMock) GetProfile(_ context.Context, userID int) (*Profile, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	p, ok := m.Profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	profile := p
	return &profile, nil
}

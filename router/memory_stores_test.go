// file: router/memory_stores_test.go

package router_test

import (
	"context"
	"database/sql"
	"go-auth-api/model"
	"go-auth-api/repository"
	"sync"
	"time"
)

// In-memory stand-ins for the Postgres repositories, honouring the same
// not-found and uniqueness contracts.

type memoryUsers struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[int]*model.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	stored := *user
	m.byID[user.ID] = &stored
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUsers) GetUserByID(_ context.Context, id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *u
	return &found, nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[user.ID]
	if !ok {
		return sql.ErrNoRows
	}
	for id, other := range m.byID {
		if id != user.ID && other.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	u.Username = user.Username
	u.Email = user.Email
	return nil
}

func (m *memoryUsers) UpdateLastLogin(_ context.Context, userID int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.LastLogin = &at
	return nil
}

func (m *memoryUsers) setActive(id int, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].IsActive = active
}

type memoryTokens struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*model.RefreshToken
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{rows: make(map[string]*model.RefreshToken)}
}

func (m *memoryTokens) Create(_ context.Context, token *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[token.Token]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	token.ID = m.nextID
	stored := *token
	m.rows[token.Token] = &stored
	return nil
}

func (m *memoryTokens) GetByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *row
	return &found, nil
}

func (m *memoryTokens) DeleteByToken(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[token]; !ok {
		return 0, nil
	}
	delete(m.rows, token)
	return 1, nil
}

func (m *memoryTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, row := range m.rows {
		if row.Expired(now) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryTokens) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memoryBlacklist struct {
	mu   sync.Mutex
	jtis map[string]model.BlacklistedToken
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{jtis: make(map[string]model.BlacklistedToken)}
}

func (m *memoryBlacklist) Add(_ context.Context, entry *model.BlacklistedToken) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jtis[entry.JTI]; ok {
		return false, nil
	}
	m.jtis[entry.JTI] = *entry
	return true, nil
}

func (m *memoryBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

func (m *memoryBlacklist) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for jti, entry := range m.jtis {
		if entry.ExpiresAt.Before(now) {
			delete(m.jtis, jti)
			n++
		}
	}
	return n, nil
}

func (m *memoryBlacklist) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jtis)
}

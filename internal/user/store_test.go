package user

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/user/entity"
)

type memStore struct {
	mu     sync.Mutex
	byID   map[int64]*entity.User
	nextID int64
}

func newMemStore() *memStore { return &memStore{byID: map[int64]*entity.User{}} }

func (m *memStore) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) SetFlags(ctx context.Context, id int64, isAdmin, isLoyaltyMember bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.IsAdmin = isAdmin
		u.IsLoyaltyMember = isLoyaltyMember
	}
	return nil
}

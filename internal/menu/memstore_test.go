package menu

import (
	"context"
	"sort"
	"sync"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/menu/entity"
)

// memStore mimics the menu_items table: serial ids, active filter, id desc.
type memStore struct {
	mu      sync.Mutex
	rows    []entity.MenuItem
	nextID  int64
	creates int
	err     error
}

func (m *memStore) ListActive(ctx context.Context) ([]*entity.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*entity.MenuItem{}
	for i := range m.rows {
		if m.rows[i].Active {
			row := m.rows[i]
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) Create(ctx context.Context, in *entity.MenuItem) (*entity.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.creates++
	m.nextID++
	row := *in
	row.ID = m.nextID
	m.rows = append(m.rows, row)
	return &row, nil
}

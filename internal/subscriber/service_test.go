package subscriber

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/subscriber/entity"
)

type memStore struct {
	mu   sync.Mutex
	subs []*entity.Subscriber
	err  error
}

func (m *memStore) Create(ctx context.Context, s *entity.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.subs {
		if existing.URL == s.URL {
			return &pq.Error{Code: "23505"}
		}
	}
	s.CreatedAt = time.Now().UTC()
	m.subs = append(m.subs, s)
	return nil
}

func (m *memStore) List(ctx context.Context) ([]*entity.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entity.Subscriber{}, m.subs...), m.err
}

func acceptAll(string) error { return nil }

func TestService_Subscribe(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, acceptAll)

	sub, err := svc.Subscribe(context.Background(), "  ntfy://ntfy.sh/stefano ", " kitchen ")
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "ntfy://ntfy.sh/stefano", sub.URL)
	assert.Equal(t, "kitchen", sub.Label)

	_, err = svc.Subscribe(context.Background(), "ntfy://ntfy.sh/stefano", "")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_SubscribeRejectsBadURL(t *testing.T) {
	store := &memStore{}

	for _, raw := range []string{"", "   ", "no-scheme", "%zz"} {
		_, err := NewService(store, acceptAll).Subscribe(context.Background(), raw, "")
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}

	_, err := NewService(store, nil).Subscribe(context.Background(), "nosuchservice://token", "")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Empty(t, store.subs)
}

func TestService_SubscribeLabelLength(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, acceptAll)

	_, err := svc.Subscribe(context.Background(), "generic://a.example", strings.Repeat("x", 65))
	assert.ErrorIs(t, err, ErrLabelTooLong)
	assert.Empty(t, store.subs)

	// varchar counts characters, not bytes
	sub, err := svc.Subscribe(context.Background(), "generic://b.example", strings.Repeat("è", 64))
	require.NoError(t, err)
	assert.Equal(t, 64, utf8.RuneCountInString(sub.Label))
}

func TestService_SubscribeStoreError(t *testing.T) {
	svc := NewService(&memStore{err: errors.New("db down")}, acceptAll)

	_, err := svc.Subscribe(context.Background(), "generic://example.com", "")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadySubscribed)
}

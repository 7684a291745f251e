package offline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingTargets struct{}

func (failingTargets) Targets(context.Context) ([]string, error) {
	return nil, errors.New("db down")
}

func TestMultiTargets(t *testing.T) {
	src := MultiTargets{
		StaticTargets{"generic://a.example", ""},
		StaticTargets{"generic://b.example"},
	}

	got, err := src.Targets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"generic://a.example", "generic://b.example"}, got)

	_, err = MultiTargets{StaticTargets{"x"}, failingTargets{}}.Targets(context.Background())
	assert.Error(t, err)
}

func TestShoutrrrNotifier_NoTargets(t *testing.T) {
	n := NewShoutrrrNotifier(StaticTargets(nil), zap.NewNop().Sugar())

	assert.NoError(t, n.Notify(context.Background(), Notification{Body: "hi"}))
}

func TestShoutrrrNotifier_Errors(t *testing.T) {
	n := NewShoutrrrNotifier(failingTargets{}, zap.NewNop().Sugar())
	assert.ErrorContains(t, n.Notify(context.Background(), Notification{}), "load push targets")

	n = NewShoutrrrNotifier(StaticTargets{"nosuchservice://token"}, zap.NewNop().Sugar())
	assert.ErrorContains(t, n.Notify(context.Background(), Notification{}), "create sender")
}

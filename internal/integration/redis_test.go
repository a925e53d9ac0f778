package integration

import (
	"context"
	"testing"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/aliuyar1234/okrlaunch/internal/wizard"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *cache.RedisStore {
	t.Helper()
	requireRedis(t)

	c, err := cache.OpenRedis(context.Background(), redisURL, "okrlaunch_test_"+randomHex(t, 4)+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedis_SetGetTake(t *testing.T) {
	c := newRedisStore(t)
	ctx := context.Background()

	type state struct {
		Verifier string `json:"verifier"`
	}

	require.NoError(t, c.Set(ctx, "oauth:abc", state{Verifier: "v1"}, time.Minute))

	var got state
	ok, err := c.Get(ctx, "oauth:abc", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", got.Verifier)

	ok, err = c.Take(ctx, "oauth:abc", &got)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Take(ctx, "oauth:abc", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedis_WizardStateSurvivesRepositoryInstances(t *testing.T) {
	c := newRedisStore(t)
	ctx := context.Background()

	first := wizard.NewRepository(c, time.Hour)
	_, err := first.Apply(ctx, "leader-1", wizard.Action{Type: wizard.ActionSetScreen, Payload: []byte(`"dashboard"`)})
	require.NoError(t, err)

	second := wizard.NewRepository(c, time.Hour)
	s, err := second.Load(ctx, "leader-1")
	require.NoError(t, err)
	require.Equal(t, wizard.ScreenDashboard, s.Screen)
}

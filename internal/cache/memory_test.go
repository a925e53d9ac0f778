package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Next  string `json:"next"`
	Count int    `json:"count"`
}

func TestMemoryStore_SetGetTake(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", payload{Next: "/dashboard", Count: 2}, time.Minute))

	var got payload
	ok, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload{Next: "/dashboard", Count: 2}, got)

	var taken payload
	ok, err = s.Take(ctx, "k", &taken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, got, taken)

	ok, err = s.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", payload{Count: 1}, time.Minute))
	require.NoError(t, s.Set(ctx, "forever", payload{Count: 2}, 0))

	now = now.Add(2 * time.Minute)

	var got payload
	ok, err := s.Get(ctx, "short", &got)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Get(ctx, "forever", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, got.Count)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", payload{}, 0))
	require.NoError(t, s.Delete(ctx, "k"))

	var got payload
	ok, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

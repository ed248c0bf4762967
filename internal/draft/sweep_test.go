package draft

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSweepRemovesExpiredSnapshots(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	// TTL disabled so only the sweep can reclaim the keys.
	store := New(NewRedisKV(client, 0), nil)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Save(ctx, "old-form", json.RawMessage(`{"a":1}`)))

	store.now = func() time.Time { return base.Add(11 * time.Hour) }
	require.NoError(t, store.Save(ctx, "fresh-form", json.RawMessage(`{"b":2}`)))

	sweeper := NewSweeper(client, 12*time.Hour)
	sweeper.now = func() time.Time { return base.Add(23 * time.Hour) }

	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, ok, err := store.Load(ctx, "old-form")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.Load(ctx, "fresh-form")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSweepDropsUndecodableEnvelopes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, KeyPrefix+"bad:snapshot", "not-json", 0).Err())

	sweeper := NewSweeper(client, 12*time.Hour)
	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
}

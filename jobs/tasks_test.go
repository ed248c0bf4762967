package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/draft"
)

func TestDraftSweepHandlerRemovesStaleSnapshots(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	stale, err := json.Marshal(map[string]any{
		"saved_at": time.Now().Add(-48 * time.Hour),
		"snapshot": map[string]int{"quantity": 2},
	})
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, draft.KeyPrefix+"old:snapshot", stale, 0).Err())

	fresh, err := json.Marshal(map[string]any{
		"saved_at": time.Now(),
		"snapshot": map[string]int{"quantity": 1},
	})
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, draft.KeyPrefix+"new:snapshot", fresh, 0).Err())

	sweeper := draft.NewSweeper(client, 12*time.Hour)
	handler := NewDraftSweepHandler(sweeper, slog.Default())

	task, err := NewDraftSweepTask(time.Now())
	require.NoError(t, err)
	require.NoError(t, handler(ctx, task))

	require.False(t, mr.Exists(draft.KeyPrefix+"old:snapshot"))
	require.True(t, mr.Exists(draft.KeyPrefix+"new:snapshot"))
}

func TestDraftSweepHandlerSkipsBadPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sweeper := draft.NewSweeper(client, time.Hour)
	handler := NewDraftSweepHandler(sweeper, slog.Default())

	err := handler(context.Background(), asynq.NewTask(TaskDraftSweep, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

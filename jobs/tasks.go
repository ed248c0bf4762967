// Package jobs runs background maintenance over Asynq: the periodic draft
// expiry sweep and queue observability endpoints.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/draft"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDraftSweep removes expired sale-draft snapshots.
	TaskDraftSweep = "draft:sweep"
)

// DraftSweepPayload carries scheduling metadata.
type DraftSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewDraftSweepTask constructs an Asynq task for the draft expiry sweep.
func NewDraftSweepTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(DraftSweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDraftSweep, body, asynq.Queue(QueueDefault)), nil
}

// NewDraftSweepHandler binds the sweep task to a configured sweeper.
func NewDraftSweepHandler(sweeper *draft.Sweeper, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload DraftSweepPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		removed, err := sweeper.Sweep(ctx)
		if err != nil {
			logger.Error("draft sweep", slog.Any("error", err))
			return err
		}
		logger.Info("draft sweep done", slog.Int("removed", removed))
		return nil
	}
}

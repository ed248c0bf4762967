package draft

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sweeper removes draft snapshots whose envelopes have outlived maxAge.
// Redis TTLs already expire healthy entries; the sweep is the backstop for
// entries written with expiry disabled or carried over from older deploys.
type Sweeper struct {
	client *redis.Client
	maxAge time.Duration
	now    func() time.Time
}

// NewSweeper builds a Sweeper.
func NewSweeper(client *redis.Client, maxAge time.Duration) *Sweeper {
	return &Sweeper{client: client, maxAge: maxAge, now: time.Now}
}

// Sweep scans the draft keyspace and deletes expired or undecodable
// snapshot envelopes. It returns the number of keys removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.maxAge)
	removed := 0

	iter := s.client.Scan(ctx, 0, KeyPrefix+"*:snapshot", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Result()
		if err != nil {
			// Expired or deleted between SCAN and GET.
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil || env.SavedAt.Before(cutoff) {
			if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
				return removed, delErr
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}

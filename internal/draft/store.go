// Package draft persists in-progress form state across in-app navigations
// while discarding it on full page reload and on successful submission.
//
// Each logical form key owns a snapshot envelope and a companion "submitted"
// marker. Saving overwrites the snapshot and clears the marker; a confirmed
// submit sets the marker and erases the snapshot immediately, so a read
// returns nothing even before the next remount.
package draft

import (
	"context"
	"encoding/json"
	"time"
)

// KV is the string-keyed storage capability the store runs on. The Redis
// implementation in this package satisfies it; tests may supply anything.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// ReloadDetector classifies the surrounding page load: true means a full
// reload rather than an in-app navigation. The classification is an
// environment capability, injected so the state machine stays testable.
type ReloadDetector func() bool

type envelope struct {
	SavedAt  time.Time       `json:"saved_at"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Store implements the draft lifecycle over a KV capability.
type Store struct {
	kv       KV
	reloaded ReloadDetector
	now      func() time.Time
}

// New builds a Store. reloaded may be nil, in which case every load is
// treated as an in-app navigation.
func New(kv KV, reloaded ReloadDetector) *Store {
	return &Store{kv: kv, reloaded: reloaded, now: time.Now}
}

func snapshotKey(key string) string  { return key + ":snapshot" }
func submittedKey(key string) string { return key + ":submitted" }

// Save overwrites the stored snapshot for key and clears any submitted
// marker. snapshot should contain user-entered fields only; derived values
// go stale and are recomputed on restore instead.
func (s *Store) Save(ctx context.Context, key string, snapshot json.RawMessage) error {
	data, err := json.Marshal(envelope{SavedAt: s.now(), Snapshot: snapshot})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, snapshotKey(key), string(data)); err != nil {
		return err
	}
	return s.kv.Delete(ctx, submittedKey(key))
}

// MarkSubmitted records a confirmed successful submit: the marker is set and
// the snapshot erased immediately.
func (s *Store) MarkSubmitted(ctx context.Context, key string) error {
	if err := s.kv.Set(ctx, submittedKey(key), "1"); err != nil {
		return err
	}
	return s.kv.Delete(ctx, snapshotKey(key))
}

// Load returns the stored snapshot for key, applying the lifecycle rules:
// a full page reload or a set submitted marker erases everything and yields
// nothing; a corrupt envelope is dropped silently. ok reports whether a
// snapshot was restored.
func (s *Store) Load(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if s.reloaded != nil && s.reloaded() {
		if err := s.Discard(ctx, key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	_, submitted, err := s.kv.Get(ctx, submittedKey(key))
	if err != nil {
		return nil, false, err
	}
	if submitted {
		if err := s.Discard(ctx, key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	raw, ok, err := s.kv.Get(ctx, snapshotKey(key))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || len(env.Snapshot) == 0 {
		// Corrupt snapshots are dropped, not surfaced.
		_ = s.kv.Delete(ctx, snapshotKey(key))
		return nil, false, nil
	}
	return env.Snapshot, true, nil
}

// Discard erases both the snapshot and the submitted marker, as on explicit
// cancel.
func (s *Store) Discard(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, snapshotKey(key), submittedKey(key))
}

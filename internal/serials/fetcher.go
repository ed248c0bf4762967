package serials

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PoolSource yields the available serial pool for a product. The catalog
// repository satisfies this.
type PoolSource interface {
	AvailableSerials(ctx context.Context, productID int64) ([]string, error)
}

// Fetcher loads available pools, coalescing concurrent requests for the same
// product and discarding responses that arrive after a newer product has been
// selected.
type Fetcher struct {
	source PoolSource
	group  singleflight.Group

	mu     sync.Mutex
	latest int64
}

// NewFetcher wraps a pool source.
func NewFetcher(source PoolSource) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch returns the pool for productID. ok is false when the result was
// superseded by a newer product selection before it resolved; callers must
// ignore such results rather than apply a stale pool.
func (f *Fetcher) Fetch(ctx context.Context, productID int64) (pool []string, ok bool, err error) {
	f.mu.Lock()
	f.latest = productID
	f.mu.Unlock()

	ch := f.group.DoChan(fmt.Sprintf("pool:%d", productID), func() (interface{}, error) {
		return f.source.AvailableSerials(ctx, productID)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		f.mu.Lock()
		stale := f.latest != productID
		f.mu.Unlock()
		if stale {
			return nil, false, nil
		}
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]string), true, nil
	}
}

package customers

import (
	"context"
	"sync"
	"time"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// DefaultSearchDelay is the quiet interval before a keystroke burst triggers
// a refetch.
const DefaultSearchDelay = 300 * time.Millisecond

// Lister is the listing capability the feed runs on. Service satisfies it.
type Lister interface {
	List(ctx context.Context, req ListRequest) ([]Customer, shared.Pagination, error)
}

// SearchFeed drives the debounced search-as-you-type customer listing.
// Keystrokes arrive via Input; after the quiet interval the latest term is
// fetched and the results retained. Only the last term's results ever land:
// earlier pending fetches are cancelled before they fire.
type SearchFeed struct {
	svc      Lister
	debounce *shared.Debouncer
	perPage  int

	mu      sync.Mutex
	term    string
	results []Customer
	err     error
}

// NewSearchFeed builds a feed over the customer service. delay <= 0 uses
// DefaultSearchDelay.
func NewSearchFeed(svc Lister, delay time.Duration, perPage int) *SearchFeed {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchFeed{
		svc:      svc,
		debounce: shared.NewDebouncer(delay),
		perPage:  perPage,
	}
}

// Input records a keystroke's worth of search term and schedules the
// debounced refetch.
func (f *SearchFeed) Input(ctx context.Context, term string) {
	f.mu.Lock()
	f.term = term
	f.mu.Unlock()

	f.debounce.Trigger(func() {
		items, _, err := f.svc.List(ctx, ListRequest{Search: term, PerPage: f.perPage})

		f.mu.Lock()
		defer f.mu.Unlock()
		// A newer keystroke may have landed while the fetch ran.
		if f.term != term {
			return
		}
		f.results = items
		f.err = err
	})
}

// Results returns the latest fetched customer list and any fetch error. An
// errored fetch leaves an empty-but-usable result; the caller may retry by
// calling Input again.
func (f *SearchFeed) Results() ([]Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Customer, len(f.results))
	copy(out, f.results)
	return out, f.err
}

// Stop cancels any pending refetch.
func (f *SearchFeed) Stop() {
	f.debounce.Stop()
}

package customers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

type memoryRepo struct {
	mu        sync.Mutex
	customers []Customer
	err       error
	calls     int
}

func (r *memoryRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	r.mu.Lock()
	r.calls++
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	var matched []Customer
	for _, c := range r.customers {
		if search == "" ||
			strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) ||
			strings.Contains(c.Phone, search) {
			matched = append(matched, c)
		}
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func seededRepo() *memoryRepo {
	return &memoryRepo{customers: []Customer{
		{ID: 1, Name: "Asha Verma", Phone: "9870001111"},
		{ID: 2, Name: "Bilal Khan", Phone: "9870002222"},
		{ID: 3, Name: "Chandra Rao", Phone: "8880003333"},
	}}
}

func TestListSearchAndPagination(t *testing.T) {
	svc := NewService(seededRepo())
	ctx := context.Background()

	items, page, err := svc.List(ctx, ListRequest{Search: "987", PerPage: 1, Page: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Bilal Khan", items[0].Name)
	require.Equal(t, 2, page.Total)
	require.Equal(t, 2, page.TotalPages)

	// An empty term lists everyone.
	all, page, err := svc.List(ctx, ListRequest{PerPage: 10, Page: 1})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 3, page.Total)
}

func TestListDegradesToUnavailable(t *testing.T) {
	repo := seededRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo)

	items, _, err := svc.List(context.Background(), ListRequest{})
	require.ErrorIs(t, err, shared.ErrUnavailable)
	require.Empty(t, items)
}

func TestSearchFeedLastKeystrokeWins(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo)
	feed := NewSearchFeed(svc, 20*time.Millisecond, 10)
	defer feed.Stop()
	ctx := context.Background()

	// A typing burst; only the final term should reach the repository.
	for _, term := range []string{"a", "as", "ash", "asha"} {
		feed.Input(ctx, term)
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		results, err := feed.Results()
		return err == nil && len(results) == 1 && results[0].Name == "Asha Verma"
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, repo.callCount())
}

func TestSearchFeedKeepsUsableOnError(t *testing.T) {
	repo := seededRepo()
	repo.err = errors.New("down")
	svc := NewService(repo)
	feed := NewSearchFeed(svc, 5*time.Millisecond, 10)
	defer feed.Stop()

	feed.Input(context.Background(), "asha")
	require.Eventually(t, func() bool {
		_, err := feed.Results()
		return err != nil
	}, time.Second, 5*time.Millisecond)

	results, err := feed.Results()
	require.ErrorIs(t, err, shared.ErrUnavailable)
	require.Empty(t, results)
}

package sale

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/catalog"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/customers"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/draft"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

type stubCatalog struct {
	mu         sync.Mutex
	categories map[int64]*catalog.Category
	products   map[int64]*catalog.Product
	pools      map[int64][]string
	sold       [][]string
	reduced    map[int64]int
}

func (c *stubCatalog) GetCategory(_ context.Context, id int64) (*catalog.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cat, ok := c.categories[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	return cat, nil
}

func (c *stubCatalog) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (c *stubCatalog) AvailableSerials(_ context.Context, productID int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.pools[productID]...), nil
}

func (c *stubCatalog) MarkUnitsSold(_ context.Context, serialNos []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sold = append(c.sold, append([]string(nil), serialNos...))
	return nil
}

func (c *stubCatalog) ReduceBulkStock(_ context.Context, productID int64, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reduced[productID] += qty
	return nil
}

type stubCustomers struct {
	byID map[int64]*customers.Customer
}

func (s *stubCustomers) Get(_ context.Context, id int64) (*customers.Customer, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (s *stubCustomers) List(_ context.Context, req customers.ListRequest) ([]customers.Customer, shared.Pagination, error) {
	var out []customers.Customer
	for _, c := range s.byID {
		if req.Search == "" || strings.Contains(c.Name, req.Search) || strings.Contains(c.Phone, req.Search) {
			out = append(out, *c)
		}
	}
	return out, shared.NewPagination(1, len(out), len(out)), nil
}

type stubSubmitter struct {
	mu     sync.Mutex
	err    error
	reject bool
	got    []Transaction
}

func (s *stubSubmitter) Submit(_ context.Context, tx Transaction) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, tx)
	if s.err != nil {
		return SubmitResult{}, s.err
	}
	if s.reject {
		return SubmitResult{Success: false}, nil
	}
	return SubmitResult{Success: true, InvoiceNumber: "INV-0042"}, nil
}

type fixture struct {
	svc       *Service
	catalog   *stubCatalog
	custs     *stubCustomers
	submitter *stubSubmitter
	drafts    *draft.Store
	reloaded  bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		catalog: &stubCatalog{
			categories: map[int64]*catalog.Category{
				1: {ID: 1, Name: "Batteries", Serialized: true},
				2: {ID: 2, Name: "Lubricants", Serialized: false},
			},
			products: map[int64]*catalog.Product{
				10: {
					ID: 10, SKU: "BAT-150", Name: "Exide 150Ah", CategoryID: 1, Series: "EX",
					MRP: 1000,
					B2C: pricing.ClassState{DiscountPercent: 12, DiscountAmount: 120, SellingPrice: 880},
					B2B: pricing.ClassState{DiscountPercent: 20, DiscountAmount: 200, SellingPrice: 800},
				},
				20: {
					ID: 20, SKU: "OIL-1L", Name: "Coolant 1L", CategoryID: 2, Series: "CL",
					MRP: 250, OnHand: 8,
					B2C: pricing.ClassState{SellingPrice: 250},
					B2B: pricing.ClassState{SellingPrice: 250},
				},
			},
			pools:   map[int64][]string{10: {"S1", "S2", "S3", "S4"}},
			reduced: map[int64]int{},
		},
		custs: &stubCustomers{byID: map[int64]*customers.Customer{
			7: {ID: 7, Name: "Asha Traders", Phone: "9800000001"},
		}},
		submitter: &stubSubmitter{},
	}

	kv := draft.NewRedisKV(client, time.Hour)
	f.drafts = draft.New(kv, func() bool { return f.reloaded })
	f.svc = NewService(f.drafts, f.catalog, f.custs, f.catalog, f.submitter)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	f.svc.searchDelay = 10 * time.Millisecond
	return f
}

// rebuild simulates a new interaction session over the same draft store.
func (f *fixture) rebuild() *Service {
	svc := NewService(f.drafts, f.catalog, f.custs, f.catalog, f.submitter)
	svc.now = f.svc.now
	svc.searchDelay = f.svc.searchDelay
	return svc
}

func beginDraft(t *testing.T, svc *Service, key string) *BuilderState {
	t.Helper()
	st, err := svc.Begin(context.Background(), key, BeginDraftRequest{Class: pricing.ClassB2C})
	require.NoError(t, err)
	return st
}

func TestBeginFreshDraft(t *testing.T) {
	f := newFixture(t)
	st := beginDraft(t, f.svc, "form-1")

	assert.Equal(t, pricing.ClassB2C, st.Class)
	assert.Empty(t, st.Items)
	assert.Nil(t, st.Current)
	assert.Zero(t, st.Totals.GrandTotal)
}

func TestSerializedItemFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	beginDraft(t, f.svc, "form-1")

	st, err := f.svc.SelectProduct(ctx, "form-1", SelectProductRequest{CategoryID: 1, ProductID: 10})
	require.NoError(t, err)
	require.NotNil(t, st.Current)
	assert.Equal(t, 4, st.Current.PoolSize)
	assert.InDelta(t, 880, st.Current.Price.SellingPrice, 1e-9)

	st, err = f.svc.EditPrice(ctx, "form-1", EditPriceRequest{Class: pricing.ClassB2C, Field: pricing.FieldSellingPrice, Value: 850})
	require.NoError(t, err)
	assert.InDelta(t, 150, st.Current.Price.DiscountAmount, 1e-9)
	assert.InDelta(t, 15, st.Current.Price.DiscountPercent, 1e-9)

	_, err = f.svc.SetQuantity(ctx, "form-1", SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, "form-1", ToggleSerialRequest{Serial: "S1"})
	require.NoError(t, err)
	st, err = f.svc.ToggleSerial(ctx, "form-1", ToggleSerialRequest{Serial: "S3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S3"}, st.Current.Chosen)

	st, err = f.svc.AddItem(ctx, "form-1")
	require.NoError(t, err)
	require.Len(t, st.Items, 1)
	assert.Nil(t, st.Current)

	line := st.Items[0]
	assert.Equal(t, int64(10), line.ProductID)
	assert.Equal(t, []string{"S1", "S3"}, line.Serials)
	assert.InDelta(t, 1700, line.FinalAmount, 1e-9)
	assert.InDelta(t, 300, line.DiscountAmount, 1e-9)
	assert.Equal(t, 2, st.Totals.Units)
	assert.InDelta(t, 1700, st.Totals.GrandTotal, 1e-9)
}

func TestAddItemCountMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	beginDraft(t, f.svc, "form-1")

	_, err := f.svc.SelectProduct(ctx, "form-1", SelectProductRequest{CategoryID: 1, ProductID: 10})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, "form-1", SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, "form-1", ToggleSerialRequest{Serial: "S1"})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, "form-1")
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBulkItemFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	beginDraft(t, f.svc, "form-1")

	st, err := f.svc.SelectProduct(ctx, "form-1", SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	assert.True(t, st.Current.BulkCategory)
	assert.Equal(t, 8, st.Current.BulkOnHand)

	_, err = f.svc.SetQuantity(ctx, "form-1", SetQuantityRequest{Quantity: 3})
	require.NoError(t, err)
	st, err = f.svc.AddItem(ctx, "form-1")
	require.NoError(t, err)
	require.Len(t, st.Items, 1)
	assert.Empty(t, st.Items[0].Serials)
	assert.InDelta(t, 750, st.Totals.GrandTotal, 1e-9)
}

func TestBulkQuantityOverStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	beginDraft(t, f.svc, "form-1")

	_, err := f.svc.SelectProduct(ctx, "form-1", SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, "form-1", SetQuantityRequest{Quantity: 9})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, "form-1")
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestProductCategoryMismatch(t *testing.T) {
	f := newFixture(t)
	beginDraft(t, f.svc, "form-1")

	_, err := f.svc.SelectProduct(context.Background(), "form-1", SelectProductRequest{CategoryID: 2, ProductID: 10})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSubmitHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 1, ProductID: 10})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, key, ToggleSerialRequest{Serial: "S2"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)
	_, err = f.svc.SetCustomer(ctx, key, SetCustomerRequest{CustomerID: 7})
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, key, SetPaymentRequest{Method: PaymentUPI})
	require.NoError(t, err)

	result, err := f.svc.Submit(ctx, key)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "INV-0042", result.InvoiceNumber)

	require.Len(t, f.submitter.got, 1)
	tx := f.submitter.got[0]
	assert.Equal(t, int64(7), tx.CustomerID)
	assert.Equal(t, PaymentUPI, tx.PaymentMethod)
	require.Len(t, tx.Items, 1)
	assert.Equal(t, []string{"S2"}, tx.Items[0].Serials)

	require.Len(t, f.catalog.sold, 1)
	assert.Equal(t, []string{"S2"}, f.catalog.sold[0])

	// The builder is gone and the draft can never be restored.
	_, err = f.svc.State(ctx, key)
	require.ErrorIs(t, err, ErrNoDraft)
	st := beginDraft(t, f.rebuild(), key)
	assert.Empty(t, st.Items)
}

func TestSubmitReducesBulkStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 4})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)
	_, err = f.svc.SetCustomer(ctx, key, SetCustomerRequest{CustomerID: 7})
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, key, SetPaymentRequest{Method: PaymentCash})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 4, f.catalog.reduced[20])
	assert.Empty(t, f.catalog.sold)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	f.submitter.err = errors.New("upstream 500")
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)
	_, err = f.svc.SetCustomer(ctx, key, SetCustomerRequest{CustomerID: 7})
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, key, SetPaymentRequest{Method: PaymentCash})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, key)
	var serr *shared.SubmissionError
	require.ErrorAs(t, err, &serr)

	// Everything entered survives for a retry.
	st, err := f.svc.State(ctx, key)
	require.NoError(t, err)
	require.Len(t, st.Items, 1)
	require.NotNil(t, st.Customer)
	assert.Empty(t, f.catalog.sold)
	assert.Zero(t, f.catalog.reduced[20])

	// And the persisted draft restores in a later session too.
	st = beginDraft(t, f.rebuild(), key)
	require.Len(t, st.Items, 1)
}

func TestSubmitRejectedByRemote(t *testing.T) {
	f := newFixture(t)
	f.submitter.reject = true
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)
	_, err = f.svc.SetCustomer(ctx, key, SetCustomerRequest{CustomerID: 7})
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, key, SetPaymentRequest{Method: PaymentCard})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, key)
	var serr *shared.SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, f.catalog.sold)
}

func TestSubmitPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.Submit(ctx, key)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, key)
	require.ErrorIs(t, err, ErrNoCustomer)

	_, err = f.svc.SetCustomer(ctx, key, SetCustomerRequest{CustomerID: 7})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, key)
	require.ErrorIs(t, err, ErrNoPayment)
}

func TestDraftRestoresAcrossSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 1, ProductID: 10})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, key, ToggleSerialRequest{Serial: "S2"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)
	_, err = f.svc.SetCustomer(ctx, key, SetCustomerRequest{CustomerID: 7})
	require.NoError(t, err)

	// Half-configured second item.
	_, err = f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 1, ProductID: 10})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, key, ToggleSerialRequest{Serial: "S1"})
	require.NoError(t, err)

	st := beginDraft(t, f.rebuild(), key)
	require.Len(t, st.Items, 1)
	assert.Equal(t, []string{"S2"}, st.Items[0].Serials)
	require.NotNil(t, st.Customer)
	assert.Equal(t, int64(7), st.Customer.ID)
	require.NotNil(t, st.Current)
	assert.Equal(t, 2, st.Current.Quantity)
	assert.Equal(t, []string{"S1"}, st.Current.Chosen)
}

func TestRestoreDropsChosenUnitsNoLongerAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 1, ProductID: 10})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, key, ToggleSerialRequest{Serial: "S1"})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, key, ToggleSerialRequest{Serial: "S2"})
	require.NoError(t, err)

	// S2 was sold from another terminal while the draft slept.
	f.catalog.mu.Lock()
	f.catalog.pools[10] = []string{"S1", "S3", "S4"}
	f.catalog.mu.Unlock()

	st := beginDraft(t, f.rebuild(), key)
	require.NotNil(t, st.Current)
	assert.Equal(t, []string{"S1"}, st.Current.Chosen)
	assert.Equal(t, 3, st.Current.PoolSize)
}

func TestFullReloadStartsClean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)

	f.reloaded = true
	st := beginDraft(t, f.rebuild(), key)
	assert.Empty(t, st.Items)
	assert.Nil(t, st.Current)
}

func TestReloadFlagErasesDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)

	st, err := f.rebuild().Begin(ctx, key, BeginDraftRequest{Class: pricing.ClassB2C, Reload: true})
	require.NoError(t, err)
	assert.Empty(t, st.Items)

	// Erasure is permanent even for a later in-app begin.
	st = beginDraft(t, f.rebuild(), key)
	assert.Empty(t, st.Items)
}

func TestReloadFlagErasesLiveBuilder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)

	// Same service instance: the builder is still live when the reload
	// begin arrives. It must not shadow the erasure.
	st, err := f.svc.Begin(ctx, key, BeginDraftRequest{Class: pricing.ClassB2C, Reload: true})
	require.NoError(t, err)
	assert.Empty(t, st.Items)
	assert.Nil(t, st.Current)

	st = beginDraft(t, f.rebuild(), key)
	assert.Empty(t, st.Items)
}

func TestDetectedReloadErasesLiveBuilder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)

	f.reloaded = true
	st := beginDraft(t, f.svc, key)
	assert.Empty(t, st.Items)
	assert.Nil(t, st.Current)
}

func TestCancelDiscardsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, key)
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, key))

	_, err = f.svc.State(ctx, key)
	require.ErrorIs(t, err, ErrNoDraft)
	st := beginDraft(t, f.rebuild(), key)
	assert.Empty(t, st.Items)
}

func TestRemoveAndClearItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 2, ProductID: 20})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	st, err := f.svc.AddItem(ctx, key)
	require.NoError(t, err)
	require.Len(t, st.Items, 1)

	st, err = f.svc.RemoveItem(ctx, key, st.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, st.Items)
	assert.Zero(t, st.Totals.Units)

	_, err = f.svc.RemoveItem(ctx, key, "nope")
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestEditPriceRequiresProduct(t *testing.T) {
	f := newFixture(t)
	beginDraft(t, f.svc, "form-1")

	_, err := f.svc.EditPrice(context.Background(), "form-1", EditPriceRequest{
		Class: pricing.ClassB2C, Field: pricing.FieldSellingPrice, Value: 100,
	})
	require.ErrorIs(t, err, ErrNoProduct)
}

func TestCustomerPickerSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	require.NoError(t, f.svc.SearchCustomers(ctx, key, CustomerSearchRequest{Term: "Asha"}))
	require.Eventually(t, func() bool {
		items, err := f.svc.CustomerSearchResults(key)
		return err == nil && len(items) == 1
	}, time.Second, 5*time.Millisecond)

	items, err := f.svc.CustomerSearchResults(key)
	require.NoError(t, err)
	assert.Equal(t, "Asha Traders", items[0].Name)

	// Search on an unknown draft is rejected.
	err = f.svc.SearchCustomers(ctx, "missing", CustomerSearchRequest{Term: "x"})
	require.ErrorIs(t, err, ErrNoDraft)
}

func TestVehicleInfoTravelsWithLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := "form-1"
	beginDraft(t, f.svc, key)

	_, err := f.svc.SelectProduct(ctx, key, SelectProductRequest{CategoryID: 1, ProductID: 10})
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, key, SetQuantityRequest{Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.ToggleSerial(ctx, key, ToggleSerialRequest{Serial: "S4"})
	require.NoError(t, err)
	_, err = f.svc.SetVehicle(ctx, key, VehicleInfoRequest{Number: "KA01AB1234", Model: "Swift"})
	require.NoError(t, err)

	st, err := f.svc.AddItem(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, st.Items[0].VehicleInfo)
	assert.Equal(t, "KA01AB1234", st.Items[0].VehicleInfo.Number)
}

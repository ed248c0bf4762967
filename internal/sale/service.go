package sale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/cart"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/catalog"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/customers"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/draft"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/serials"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// CatalogPort is the slice of the catalog service the sale flow needs.
type CatalogPort interface {
	GetCategory(ctx context.Context, id int64) (*catalog.Category, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	MarkUnitsSold(ctx context.Context, serialNos []string) error
	ReduceBulkStock(ctx context.Context, productID int64, qty int) error
}

// CustomerPort resolves buyers by id and backs the debounced picker search.
type CustomerPort interface {
	Get(ctx context.Context, id int64) (*customers.Customer, error)
	List(ctx context.Context, req customers.ListRequest) ([]customers.Customer, shared.Pagination, error)
}

// Submitter hands a finished transaction to the external submission API.
type Submitter interface {
	Submit(ctx context.Context, tx Transaction) (SubmitResult, error)
}

// Service owns the live sale builders, one per draft key, and coordinates
// them with the catalog, customer directory, serial-pool fetcher and draft
// store.
type Service struct {
	mu       sync.Mutex
	builders map[string]*Builder
	feeds    map[string]*customers.SearchFeed

	drafts    *draft.Store
	catalog   CatalogPort
	customers CustomerPort
	pools     *serials.Fetcher
	submitter Submitter
	validate  *validator.Validate
	now       func() time.Time

	searchDelay   time.Duration
	searchPerPage int
}

// NewService wires the sale flow.
func NewService(drafts *draft.Store, cat CatalogPort, cust CustomerPort, source serials.PoolSource, submitter Submitter) *Service {
	return &Service{
		builders:      make(map[string]*Builder),
		feeds:         make(map[string]*customers.SearchFeed),
		drafts:        drafts,
		catalog:       cat,
		customers:     cust,
		pools:         serials.NewFetcher(source),
		submitter:     submitter,
		validate:      validator.New(),
		now:           time.Now,
		searchDelay:   customers.DefaultSearchDelay,
		searchPerPage: 20,
	}
}

// BuilderState is the rendered view of one draft.
type BuilderState struct {
	Key        string              `json:"key"`
	Class      pricing.Class       `json:"class"`
	Items      []cart.Line         `json:"items"`
	Totals     cart.Totals         `json:"totals"`
	Customer   *customers.Customer `json:"customer,omitempty"`
	Payment    PaymentMethod       `json:"payment,omitempty"`
	Current    *CurrentItemState   `json:"current,omitempty"`
	GST        *GSTInfo            `json:"gst,omitempty"`
	Commission *CommissionInfo     `json:"commission,omitempty"`
}

// CurrentItemState describes the item under configuration.
type CurrentItemState struct {
	ProductID    int64             `json:"product_id"`
	SKU          string            `json:"sku"`
	Name         string            `json:"name"`
	Serialized   bool              `json:"serialized"`
	Quantity     int               `json:"quantity"`
	Chosen       []string          `json:"chosen,omitempty"`
	Price        pricing.State     `json:"price"`
	VehicleInfo  *cart.VehicleInfo `json:"vehicle_info,omitempty"`
	PoolSize     int               `json:"pool_size"`
	BulkOnHand   int               `json:"bulk_on_hand,omitempty"`
	BulkCategory bool              `json:"bulk_category"`
}

// ============================================================================
// DRAFT LIFECYCLE
// ============================================================================

// Begin opens the sale form under key. If a draft snapshot survives in the
// store it is restored against current catalog data; otherwise a fresh
// builder starts. Restoring after a submit or a full reload finds nothing,
// by the draft store's contract.
func (s *Service) Begin(ctx context.Context, key string, req BeginDraftRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A reload wins over any live builder: the stored draft is erased and
	// the form opens empty.
	if req.Reload {
		s.dropBuilderLocked(key)
		if err := s.drafts.Discard(ctx, key); err != nil {
			return nil, fmt.Errorf("discard draft: %w", err)
		}
	}

	raw, ok, err := s.drafts.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	if b, live := s.builders[key]; live {
		if ok {
			return s.stateLocked(b), nil
		}
		// The store has nothing underneath a live builder: the store's
		// reload detector fired, or the draft was submitted through
		// another instance sharing the store. The builder is stale.
		s.dropBuilderLocked(key)
	}

	b := NewBuilder(key, req.Class, s.drafts)
	if ok {
		if err := s.restoreLocked(ctx, b, raw); err != nil {
			return nil, err
		}
	}

	s.builders[key] = b
	return s.stateLocked(b), nil
}

func (s *Service) dropBuilderLocked(key string) {
	delete(s.builders, key)
	s.dropFeedLocked(key)
}

func (s *Service) restoreLocked(ctx context.Context, b *Builder, raw json.RawMessage) error {
	var snap draftSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// The store drops corrupt snapshots before handing them out; a
		// decode failure here means the schema moved underneath a live
		// draft. Start clean.
		return s.drafts.Discard(ctx, b.key)
	}

	var cust *customers.Customer
	if snap.CustomerID != 0 {
		c, err := s.customers.Get(ctx, snap.CustomerID)
		if err == nil {
			cust = c
		}
	}

	var (
		product  *catalog.Product
		category *catalog.Category
		pool     []string
	)
	if cur := snap.Current; cur != nil {
		p, err := s.catalog.GetProduct(ctx, cur.ProductID)
		if err == nil {
			c, cerr := s.catalog.GetCategory(ctx, p.CategoryID)
			if cerr == nil {
				product, category = p, c
				if c.Serialized {
					if fresh, ok, ferr := s.pools.Fetch(ctx, p.ID); ferr == nil && ok {
						pool = fresh
					}
				}
			}
		}
	}

	b.restore(snap, cust, product, category, pool)
	return nil
}

// Cancel abandons the draft: the builder is dropped and the persisted
// snapshot discarded.
func (s *Service) Cancel(ctx context.Context, key string) error {
	s.mu.Lock()
	s.dropBuilderLocked(key)
	s.mu.Unlock()
	return s.drafts.Discard(ctx, key)
}

// State renders the current form state.
func (s *Service) State(ctx context.Context, key string) (*BuilderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.builderLocked(key)
	if err != nil {
		return nil, err
	}
	return s.stateLocked(b), nil
}

// ============================================================================
// ITEM CONFIGURATION
// ============================================================================

// SelectProduct resolves the product, fetches its serial pool and makes it
// the item under configuration. A pool response superseded by a newer
// selection is dropped and the state of the newer selection is returned.
func (s *Service) SelectProduct(ctx context.Context, key string, req SelectProductRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	category, err := s.catalog.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.CategoryID != category.ID {
		return nil, &shared.ValidationError{Field: "product_id", Message: "product does not belong to category"}
	}

	var pool []string
	if category.Serialized {
		fresh, ok, err := s.pools.Fetch(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch serial pool: %w", err)
		}
		if !ok {
			// A newer selection raced ahead of this one; its own call
			// installed the builder state, so just render.
			return s.State(ctx, key)
		}
		pool = fresh
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.builderLocked(key)
	if err != nil {
		return nil, err
	}
	if err := b.SelectProduct(ctx, product, category, pool); err != nil {
		return nil, err
	}
	return s.stateLocked(b), nil
}

// EditPrice applies one pricing-field edit and returns the re-derived state.
func (s *Service) EditPrice(ctx context.Context, key string, req EditPriceRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.EditPrice(ctx, req.Class, req.Field, req.Value)
	})
}

// SetQuantity updates the requested quantity for the item under
// configuration.
func (s *Service) SetQuantity(ctx context.Context, key string, req SetQuantityRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.SetQuantity(ctx, req.Quantity)
	})
}

// ToggleSerial adds or removes one unit from the selection.
func (s *Service) ToggleSerial(ctx context.Context, key string, req ToggleSerialRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.ToggleSerial(ctx, req.Serial)
	})
}

// SetVehicle attaches serviced-vehicle details to the item under
// configuration.
func (s *Service) SetVehicle(ctx context.Context, key string, req VehicleInfoRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.SetVehicle(ctx, &cart.VehicleInfo{Number: req.Number, Model: req.Model})
	})
}

// AddItem moves the configured item into the cart.
func (s *Service) AddItem(ctx context.Context, key string) (*BuilderState, error) {
	return s.mutate(key, func(b *Builder) error {
		_, err := b.AddItem(ctx)
		return err
	})
}

// RemoveItem drops one cart line.
func (s *Service) RemoveItem(ctx context.Context, key, lineID string) (*BuilderState, error) {
	return s.mutate(key, func(b *Builder) error {
		return b.RemoveItem(ctx, lineID)
	})
}

// ClearItems empties the cart.
func (s *Service) ClearItems(ctx context.Context, key string) (*BuilderState, error) {
	return s.mutate(key, func(b *Builder) error {
		return b.ClearItems(ctx)
	})
}

// ============================================================================
// TRANSACTION FIELDS
// ============================================================================

// SetCustomer resolves and attaches the buyer.
func (s *Service) SetCustomer(ctx context.Context, key string, req SetCustomerRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	cust, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.SetCustomer(ctx, cust)
	})
}

// SearchCustomers feeds one keystroke's worth of search term into the
// draft's debounced customer picker. The fetch fires only after the quiet
// interval; a newer term cancels a pending one.
func (s *Service) SearchCustomers(ctx context.Context, key string, req CustomerSearchRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.builders[key]; !ok {
		s.mu.Unlock()
		return ErrNoDraft
	}
	feed, ok := s.feeds[key]
	if !ok {
		feed = customers.NewSearchFeed(s.customers, s.searchDelay, s.searchPerPage)
		s.feeds[key] = feed
	}
	s.mu.Unlock()

	// The debounced fetch outlives the request that carried the keystroke.
	feed.Input(context.WithoutCancel(ctx), req.Term)
	return nil
}

// CustomerSearchResults returns the picker's latest fetched candidates. A
// failed fetch surfaces ErrUnavailable alongside an empty list; the picker
// stays usable and the next keystroke retries.
func (s *Service) CustomerSearchResults(key string) ([]customers.Customer, error) {
	s.mu.Lock()
	feed, ok := s.feeds[key]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoDraft
	}
	return feed.Results()
}

func (s *Service) dropFeedLocked(key string) {
	if feed, ok := s.feeds[key]; ok {
		feed.Stop()
		delete(s.feeds, key)
	}
}

// SetPayment records the tender type.
func (s *Service) SetPayment(ctx context.Context, key string, req SetPaymentRequest) (*BuilderState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.SetPayment(ctx, req.Method)
	})
}

// SetGST attaches tax identity for invoiced sales.
func (s *Service) SetGST(ctx context.Context, key string, info GSTInfo) (*BuilderState, error) {
	if err := s.validate.Struct(info); err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.SetGST(ctx, &info)
	})
}

// SetCommission attaches referral commission details.
func (s *Service) SetCommission(ctx context.Context, key string, info CommissionInfo) (*BuilderState, error) {
	if err := s.validate.Struct(info); err != nil {
		return nil, err
	}
	return s.mutate(key, func(b *Builder) error {
		return b.SetCommission(ctx, &info)
	})
}

// ============================================================================
// SUBMIT
// ============================================================================

// Submit assembles the transaction and hands it to the external API. On
// acknowledged success the sold units leave local inventory, the draft is
// marked submitted so it can never be restored, and the builder resets. On
// failure the draft stays intact for retry and the error is wrapped as a
// submission failure.
func (s *Service) Submit(ctx context.Context, key string) (*SubmitResult, error) {
	s.mu.Lock()
	b, err := s.builderLocked(key)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	tx, err := b.Transaction(s.now())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result, err := s.submitter.Submit(ctx, tx)
	if err != nil {
		return nil, &shared.SubmissionError{Err: err}
	}
	if !result.Success {
		return nil, &shared.SubmissionError{Err: errors.New("submission rejected by remote")}
	}

	for _, item := range tx.Items {
		if len(item.Serials) > 0 {
			if err := s.catalog.MarkUnitsSold(ctx, item.Serials); err != nil {
				return nil, fmt.Errorf("mark units sold: %w", err)
			}
			continue
		}
		if err := s.catalog.ReduceBulkStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("reduce stock: %w", err)
		}
	}

	if err := s.drafts.MarkSubmitted(ctx, key); err != nil {
		return nil, fmt.Errorf("mark draft submitted: %w", err)
	}

	s.mu.Lock()
	b.reset()
	s.dropBuilderLocked(key)
	s.mu.Unlock()

	return &result, nil
}

// ============================================================================
// INTERNAL
// ============================================================================

func (s *Service) mutate(key string, fn func(*Builder) error) (*BuilderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.builderLocked(key)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	return s.stateLocked(b), nil
}

func (s *Service) builderLocked(key string) (*Builder, error) {
	b, ok := s.builders[key]
	if !ok {
		return nil, ErrNoDraft
	}
	return b, nil
}

func (s *Service) stateLocked(b *Builder) *BuilderState {
	st := &BuilderState{
		Key:        b.key,
		Class:      b.class,
		Items:      b.Items(),
		Totals:     b.Totals(),
		Customer:   b.customer,
		Payment:    b.payment,
		GST:        b.gst,
		Commission: b.commission,
	}
	if b.product != nil && b.sel != nil {
		cur := &CurrentItemState{
			ProductID:    b.product.ID,
			SKU:          b.product.SKU,
			Name:         b.product.Name,
			Serialized:   !b.sel.Bulk(),
			Quantity:     b.sel.Quantity(),
			Chosen:       b.sel.Chosen(),
			Price:        b.price.State(b.class),
			VehicleInfo:  b.vehicle,
			PoolSize:     b.sel.PoolSize(),
			BulkCategory: b.sel.Bulk(),
		}
		if b.sel.Bulk() {
			cur.BulkOnHand = b.product.OnHand
		}
		st.Current = cur
	}
	return st
}

package sale

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/cart"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/catalog"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/customers"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/draft"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/serials"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// Builder holds one in-progress sale: the item currently being configured,
// the accumulated cart, and the transaction-level fields. Every mutation
// snapshots the user-entered state to the draft store so an in-app
// navigation away and back restores the form.
//
// A builder is driven from a single interaction loop; the Service serializes
// access.
type Builder struct {
	key    string
	class  pricing.Class
	cart   *cart.Cart
	drafts *draft.Store

	product  *catalog.Product
	category *catalog.Category
	price    pricing.ByClass
	sel      *serials.Selection
	vehicle  *cart.VehicleInfo

	customer   *customers.Customer
	payment    PaymentMethod
	gst        *GSTInfo
	commission *CommissionInfo
}

// draftSnapshot is what gets persisted: user-entered fields only. Totals and
// other derived aggregates are recomputed after restore.
type draftSnapshot struct {
	Class      pricing.Class   `json:"class"`
	Items      []cart.Line     `json:"items,omitempty"`
	CustomerID int64           `json:"customer_id,omitempty"`
	Payment    PaymentMethod   `json:"payment,omitempty"`
	GST        *GSTInfo        `json:"gst,omitempty"`
	Commission *CommissionInfo `json:"commission,omitempty"`
	Current    *currentItem    `json:"current,omitempty"`
}

type currentItem struct {
	CategoryID int64             `json:"category_id"`
	ProductID  int64             `json:"product_id"`
	Quantity   int               `json:"quantity"`
	Chosen     []string          `json:"chosen,omitempty"`
	Price      pricing.ByClass   `json:"price"`
	Vehicle    *cart.VehicleInfo `json:"vehicle,omitempty"`
}

// NewBuilder starts an empty sale draft under the given form key.
func NewBuilder(key string, class pricing.Class, drafts *draft.Store) *Builder {
	if !class.Valid() {
		class = pricing.ClassB2C
	}
	return &Builder{
		key:    key,
		class:  class,
		cart:   cart.New(),
		drafts: drafts,
	}
}

// Key returns the draft form key.
func (b *Builder) Key() string { return b.key }

// Class returns the active customer class.
func (b *Builder) Class() pricing.Class { return b.class }

// SetClass switches the active customer class. Pricing state is per class
// inside ByClass, so the switch re-seeds from the target class's own stored
// discount rather than carrying anything over.
func (b *Builder) SetClass(ctx context.Context, class pricing.Class) error {
	if class.Valid() {
		b.class = class
	}
	return b.save(ctx)
}

// SelectProduct makes product the item under configuration, seeding pricing
// from the product's stored per-class state and the serial selection from
// the fresh pool snapshot.
func (b *Builder) SelectProduct(ctx context.Context, product *catalog.Product, category *catalog.Category, pool []string) error {
	b.product = product
	b.category = category
	b.price = product.Pricing()
	b.vehicle = nil
	if category.Serialized {
		b.sel = serials.NewSerialized(pool)
	} else {
		b.sel = serials.NewBulk(product.OnHand)
	}
	return b.save(ctx)
}

// EditPrice applies one pricing-field edit for one class.
func (b *Builder) EditPrice(ctx context.Context, class pricing.Class, field pricing.Field, value float64) error {
	if b.product == nil {
		return ErrNoProduct
	}
	b.price.Edit(class, field, value)
	return b.save(ctx)
}

// PriceState returns the derived pricing quadruple for a class.
func (b *Builder) PriceState(class pricing.Class) pricing.State {
	return b.price.State(class)
}

// SetQuantity updates the requested quantity for the item under
// configuration.
func (b *Builder) SetQuantity(ctx context.Context, n int) error {
	if b.sel == nil {
		return ErrNoProduct
	}
	b.sel.SetQuantity(n)
	return b.save(ctx)
}

// ToggleSerial adds or removes one unit from the selection.
func (b *Builder) ToggleSerial(ctx context.Context, serial string) error {
	if b.sel == nil {
		return ErrNoProduct
	}
	b.sel.Toggle(serial)
	return b.save(ctx)
}

// ApplyPool installs a fresh pool snapshot, re-validating the chosen units.
func (b *Builder) ApplyPool(ctx context.Context, pool []string) error {
	if b.sel == nil {
		return ErrNoProduct
	}
	b.sel.SetPool(pool)
	return b.save(ctx)
}

// SetVehicle attaches serviced-vehicle details to the item under
// configuration.
func (b *Builder) SetVehicle(ctx context.Context, info *cart.VehicleInfo) error {
	if b.product == nil {
		return ErrNoProduct
	}
	b.vehicle = info
	return b.save(ctx)
}

// Selection exposes the serial-selection state for rendering.
func (b *Builder) Selection() *serials.Selection { return b.sel }

// AddItem validates the item under configuration and appends it to the cart.
// The line snapshots the product's identity and the derived price for the
// active class; the product and selection state are cleared for the next
// item.
func (b *Builder) AddItem(ctx context.Context) (cart.Line, error) {
	if b.product == nil || b.sel == nil {
		return cart.Line{}, ErrNoProduct
	}
	if err := b.sel.Validate(); err != nil {
		return cart.Line{}, &shared.ValidationError{Field: "serials", Message: err.Error()}
	}

	state := b.price.State(b.class)
	qty := b.sel.Quantity()
	line := cart.Line{
		ProductID:      b.product.ID,
		SKU:            b.product.SKU,
		Name:           b.product.Name,
		Series:         b.product.Series,
		CategoryID:     b.category.ID,
		Serialized:     b.category.Serialized,
		Quantity:       qty,
		Serials:        b.sel.Chosen(),
		MRP:            state.MRP,
		SellingPrice:   state.SellingPrice,
		DiscountAmount: pricing.Round2(state.DiscountAmount * float64(qty)),
		FinalAmount:    pricing.Round2(state.SellingPrice * float64(qty)),
		VehicleInfo:    b.vehicle,
	}

	added, err := b.cart.Add(line)
	if err != nil {
		return cart.Line{}, err
	}

	b.product = nil
	b.category = nil
	b.sel = nil
	b.vehicle = nil
	b.price = pricing.ByClass{}
	if err := b.save(ctx); err != nil {
		return cart.Line{}, err
	}
	return added, nil
}

// RemoveItem drops one cart line. No units return to any pool; pools are
// re-fetched fresh on the next product selection.
func (b *Builder) RemoveItem(ctx context.Context, lineID string) error {
	if !b.cart.Remove(lineID) {
		return &shared.ValidationError{Field: "line_id", Message: "no such line item"}
	}
	return b.save(ctx)
}

// ClearItems empties the cart.
func (b *Builder) ClearItems(ctx context.Context) error {
	b.cart.Clear()
	return b.save(ctx)
}

// Items returns the cart lines in insertion order.
func (b *Builder) Items() []cart.Line { return b.cart.Lines() }

// Totals recomputes the aggregate unit count and grand total.
func (b *Builder) Totals() cart.Totals { return b.cart.Totals() }

// SetCustomer attaches the buyer.
func (b *Builder) SetCustomer(ctx context.Context, c *customers.Customer) error {
	b.customer = c
	return b.save(ctx)
}

// SetPayment records the tender type.
func (b *Builder) SetPayment(ctx context.Context, m PaymentMethod) error {
	if !m.Valid() {
		return &shared.ValidationError{Field: "method", Message: "unknown payment method"}
	}
	b.payment = m
	return b.save(ctx)
}

// SetGST attaches tax identity for invoiced sales.
func (b *Builder) SetGST(ctx context.Context, info *GSTInfo) error {
	b.gst = info
	return b.save(ctx)
}

// SetCommission attaches referral commission details.
func (b *Builder) SetCommission(ctx context.Context, info *CommissionInfo) error {
	b.commission = info
	return b.save(ctx)
}

// Transaction assembles the submission payload. It fails if the cart is
// empty or customer/payment are missing; nothing is mutated.
func (b *Builder) Transaction(now time.Time) (Transaction, error) {
	if b.cart.Len() == 0 {
		return Transaction{}, ErrEmptyCart
	}
	if b.customer == nil {
		return Transaction{}, ErrNoCustomer
	}
	if !b.payment.Valid() {
		return Transaction{}, ErrNoPayment
	}

	lines := b.cart.Lines()
	items := make([]TransactionItem, 0, len(lines))
	for _, line := range lines {
		item := TransactionItem{
			ProductID:      line.ProductID,
			CategoryID:     line.CategoryID,
			Quantity:       line.Quantity,
			MRP:            line.MRP,
			DiscountAmount: line.DiscountAmount,
			FinalAmount:    line.FinalAmount,
			VehicleInfo:    line.VehicleInfo,
		}
		if line.Serialized {
			item.Serials = line.Serials
		}
		items = append(items, item)
	}

	return Transaction{
		Items:          items,
		CustomerID:     b.customer.ID,
		Class:          b.class,
		PaymentMethod:  b.payment,
		GSTInfo:        b.gst,
		CommissionInfo: b.commission,
		SaleDate:       now,
	}, nil
}

// restore rebuilds builder state from a persisted snapshot. The caller
// re-resolves the customer, product, category and serial pool against
// current data, so a restored selection only keeps units that are still
// available.
func (b *Builder) restore(snap draftSnapshot, cust *customers.Customer, product *catalog.Product, category *catalog.Category, pool []string) {
	if snap.Class.Valid() {
		b.class = snap.Class
	}
	b.cart.Restore(snap.Items)
	b.customer = cust
	b.payment = snap.Payment
	b.gst = snap.GST
	b.commission = snap.Commission

	cur := snap.Current
	if cur == nil || product == nil || category == nil {
		return
	}
	b.product = product
	b.category = category
	b.price = cur.Price
	b.vehicle = cur.Vehicle
	if category.Serialized {
		b.sel = serials.NewSerialized(pool)
		b.sel.SetQuantity(cur.Quantity)
		for _, s := range cur.Chosen {
			if b.sel.InPool(s) && !contains(b.sel.Chosen(), s) {
				b.sel.Toggle(s)
			}
		}
	} else {
		b.sel = serials.NewBulk(product.OnHand)
		b.sel.SetQuantity(cur.Quantity)
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// reset clears the builder after a confirmed submit.
func (b *Builder) reset() {
	b.cart.Clear()
	b.product = nil
	b.category = nil
	b.sel = nil
	b.vehicle = nil
	b.price = pricing.ByClass{}
	b.customer = nil
	b.payment = ""
	b.gst = nil
	b.commission = nil
}

func (b *Builder) snapshot() draftSnapshot {
	snap := draftSnapshot{
		Class:      b.class,
		Items:      b.cart.Lines(),
		Payment:    b.payment,
		GST:        b.gst,
		Commission: b.commission,
	}
	if b.customer != nil {
		snap.CustomerID = b.customer.ID
	}
	if b.product != nil && b.sel != nil {
		snap.Current = &currentItem{
			CategoryID: b.category.ID,
			ProductID:  b.product.ID,
			Quantity:   b.sel.Quantity(),
			Chosen:     b.sel.Chosen(),
			Price:      b.price,
			Vehicle:    b.vehicle,
		}
	}
	return snap
}

func (b *Builder) save(ctx context.Context) error {
	if b.drafts == nil {
		return nil
	}
	data, err := json.Marshal(b.snapshot())
	if err != nil {
		return err
	}
	return b.drafts.Save(ctx, b.key, data)
}

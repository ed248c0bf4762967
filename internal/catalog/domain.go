// Package catalog owns the product and serial-unit data the sale flow draws
// from: inventory listings grouped by series, available serial pools, stock
// additions and category-wide discount updates.
package catalog

import (
	"fmt"
	"time"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// Category groups products. Serialized categories track every unit by serial
// number; bulk categories carry only an aggregate on-hand count.
type Category struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Serialized bool   `json:"serialized" db:"serialized"`
}

// Product holds identity, cost basis and per-class discount pricing.
// MRP is shared across classes; the B2C and B2B discount states are
// independent.
type Product struct {
	ID         int64     `json:"id" db:"id"`
	SKU        string    `json:"sku" db:"sku"`
	Name       string    `json:"name" db:"name"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	Series     string    `json:"series" db:"series"`
	MRP        float64   `json:"mrp" db:"mrp"`
	DP         float64   `json:"dp" db:"dp"`
	B2C        pricing.ClassState `json:"b2c"`
	B2B        pricing.ClassState `json:"b2b"`
	OnHand     int       `json:"on_hand" db:"on_hand"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Pricing assembles the product's dual-class pricing view.
func (p Product) Pricing() pricing.ByClass {
	return pricing.ByClass{MRP: p.MRP, B2C: p.B2C, B2B: p.B2B}
}

// UnitState tracks a serial unit through its life in inventory.
type UnitState string

const (
	UnitAvailable UnitState = "AVAILABLE"
	UnitReserved  UnitState = "RESERVED"
	UnitSold      UnitState = "SOLD"
)

// SerialUnit is one individually identified inventory unit.
type SerialUnit struct {
	Serial    string    `json:"serial" db:"serial"`
	ProductID int64     `json:"product_id" db:"product_id"`
	State     UnitState `json:"state" db:"state"`
}

// SeriesGroup lists the products of one series.
type SeriesGroup struct {
	Series   string    `json:"series"`
	Products []Product `json:"products"`
}

// InventorySnapshot is the series-grouped listing for one category.
type InventorySnapshot struct {
	Series     []SeriesGroup `json:"series"`
	TotalStock int           `json:"total_stock"`
}

// PurchaseInfo captures the supplier side of a stock addition.
type PurchaseInfo struct {
	InvoiceNo   string    `json:"invoice_no" validate:"required,max=50"`
	PurchasedAt time.Time `json:"purchased_at" validate:"required"`
	UnitCost    float64   `json:"unit_cost" validate:"gte=0"`
	Note        *string   `json:"note,omitempty"`
}

// AddStockInput describes a stock-addition request. Serialized categories
// require exactly Quantity distinct serials; bulk categories take none.
type AddStockInput struct {
	ProductID int64        `json:"product_id" validate:"required,gt=0"`
	Quantity  int          `json:"quantity" validate:"required,gte=1"`
	Serials   []string     `json:"serials,omitempty" validate:"omitempty,unique,dive,max=64"`
	Purchase  PurchaseInfo `json:"purchase"`
	ActorID   int64        `json:"actor_id" validate:"gte=0"`
}

var (
	// ErrProductNotFound indicates an unknown product id.
	ErrProductNotFound = fmt.Errorf("catalog: product %w", shared.ErrNotFound)
	// ErrCategoryNotFound indicates an unknown category id.
	ErrCategoryNotFound = fmt.Errorf("catalog: category %w", shared.ErrNotFound)
	// ErrSerialCount indicates the serial list does not match the quantity.
	ErrSerialCount = fmt.Errorf("catalog: serial count must equal quantity: %w", shared.ErrInvalid)
	// ErrDuplicateSerial indicates a serial already registered in inventory.
	ErrDuplicateSerial = fmt.Errorf("catalog: serial number already registered: %w", shared.ErrConflict)
	// ErrSerialsOnBulk indicates serials supplied for a bulk category.
	ErrSerialsOnBulk = fmt.Errorf("catalog: bulk categories do not take serial numbers: %w", shared.ErrInvalid)
	// ErrUnitNotAvailable indicates a unit outside the AVAILABLE state.
	ErrUnitNotAvailable = fmt.Errorf("catalog: unit not available: %w", shared.ErrConflict)
)

// Package sale assembles multi-item sale transactions: per-item price
// derivation, serial-unit selection, cart accumulation and cross-navigation
// draft persistence, ending in a hand-off to the external submission API.
package sale

import (
	"fmt"
	"time"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/cart"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// PaymentMethod enumerates the accepted tender types.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentUPI     PaymentMethod = "UPI"
	PaymentCard    PaymentMethod = "CARD"
	PaymentCredit  PaymentMethod = "CREDIT"
	PaymentFinance PaymentMethod = "FINANCE"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCard, PaymentCredit, PaymentFinance:
		return true
	}
	return false
}

// GSTInfo carries the tax identity for invoiced wholesale sales.
type GSTInfo struct {
	GSTIN        string `json:"gstin" validate:"required,len=15"`
	BusinessName string `json:"business_name" validate:"required,max=200"`
}

// CommissionInfo records a referral commission attached to the sale.
type CommissionInfo struct {
	AgentName string  `json:"agent_name" validate:"required,max=200"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

// TransactionItem is one sold line in the submission payload. Serials is nil
// for bulk categories.
type TransactionItem struct {
	ProductID      int64             `json:"product_id"`
	CategoryID     int64             `json:"category_id"`
	Quantity       int               `json:"quantity"`
	Serials        []string          `json:"serials,omitempty"`
	MRP            float64           `json:"mrp"`
	DiscountAmount float64           `json:"discount_amount"`
	FinalAmount    float64           `json:"final_amount"`
	VehicleInfo    *cart.VehicleInfo `json:"vehicle_info,omitempty"`
}

// Transaction is the complete payload handed to the external submission API.
type Transaction struct {
	Items          []TransactionItem `json:"items"`
	CustomerID     int64             `json:"customer_id"`
	Class          pricing.Class     `json:"class"`
	PaymentMethod  PaymentMethod     `json:"payment_method"`
	GSTInfo        *GSTInfo          `json:"gst_info,omitempty"`
	CommissionInfo *CommissionInfo   `json:"commission_info,omitempty"`
	SaleDate       time.Time         `json:"sale_date"`
}

// SubmitResult is the external API's acknowledgement.
type SubmitResult struct {
	Success       bool   `json:"success"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

var (
	// ErrNoDraft indicates an unknown draft key.
	ErrNoDraft = fmt.Errorf("sale: no draft in progress for key: %w", shared.ErrNotFound)
	// ErrNoProduct indicates a mutation before a product was selected.
	ErrNoProduct = fmt.Errorf("sale: no product selected: %w", shared.ErrInvalid)
	// ErrEmptyCart indicates a submit with no line items.
	ErrEmptyCart = fmt.Errorf("sale: cart is empty: %w", shared.ErrInvalid)
	// ErrNoCustomer indicates a submit without a customer.
	ErrNoCustomer = fmt.Errorf("sale: customer is required: %w", shared.ErrInvalid)
	// ErrNoPayment indicates a submit without a payment method.
	ErrNoPayment = fmt.Errorf("sale: payment method is required: %w", shared.ErrInvalid)
)

// ============================================================================
// REQUEST DTOS
// ============================================================================

type BeginDraftRequest struct {
	Class pricing.Class `json:"class" validate:"required,oneof=B2C B2B"`
	// Reload marks a full page reload; the stored draft is erased instead
	// of restored. In-app navigations leave it false.
	Reload bool `json:"reload"`
}

type SelectProductRequest struct {
	CategoryID int64 `json:"category_id" validate:"required,gt=0"`
	ProductID  int64 `json:"product_id" validate:"required,gt=0"`
}

type EditPriceRequest struct {
	Class pricing.Class `json:"class" validate:"required,oneof=B2C B2B"`
	Field pricing.Field `json:"field" validate:"required,oneof=mrp discount_percent discount_amount selling_price"`
	Value float64       `json:"value"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type ToggleSerialRequest struct {
	Serial string `json:"serial" validate:"required,max=64"`
}

type SetCustomerRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
}

type SetPaymentRequest struct {
	Method PaymentMethod `json:"method" validate:"required,oneof=CASH UPI CARD CREDIT FINANCE"`
}

type VehicleInfoRequest struct {
	Number string `json:"number" validate:"required,max=20"`
	Model  string `json:"model" validate:"omitempty,max=100"`
}

type CustomerSearchRequest struct {
	Term string `json:"term" validate:"max=100"`
}

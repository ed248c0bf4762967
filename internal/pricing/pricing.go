// Package pricing derives consistent discount pricing for a product.
//
// A pricing state is the quadruple {MRP, discount percent, discount amount,
// selling price}. Editing any one field recomputes the dependent fields so the
// quadruple stays consistent: discountAmount = MRP * pct/100 and
// sellingPrice = MRP - discountAmount, both held to two decimal places.
package pricing

import "math"

// Class identifies a customer class. Retail (B2C) and wholesale (B2B)
// discounts are independent but share the same MRP.
type Class string

const (
	ClassB2C Class = "B2C"
	ClassB2B Class = "B2B"
)

// Valid reports whether c is a known customer class.
func (c Class) Valid() bool {
	return c == ClassB2C || c == ClassB2B
}

// Field names the input that changed and drives which fields get recomputed.
type Field string

const (
	FieldMRP             Field = "mrp"
	FieldDiscountPercent Field = "discount_percent"
	FieldDiscountAmount  Field = "discount_amount"
	FieldSellingPrice    Field = "selling_price"
)

// Valid reports whether f is a recognised pricing field.
func (f Field) Valid() bool {
	switch f {
	case FieldMRP, FieldDiscountPercent, FieldDiscountAmount, FieldSellingPrice:
		return true
	}
	return false
}

// State is one customer class's pricing quadruple.
type State struct {
	MRP             float64 `json:"mrp"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	SellingPrice    float64 `json:"selling_price"`
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

// sanitize maps non-finite and negative inputs to 0. The engine never errors;
// garbage input degrades to zero-valued output.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Derive recomputes the state after a single field edit. It is pure: the
// input state is not mutated.
//
// Invariants on the result: 0 <= DiscountPercent <= 100,
// 0 <= DiscountAmount <= MRP, SellingPrice >= 0, all money and percent
// values rounded to two decimals.
func Derive(s State, changed Field, value float64) State {
	value = sanitize(value)

	switch changed {
	case FieldMRP:
		s.MRP = Round2(value)
		if s.DiscountPercent > 0 {
			pct := clamp(sanitize(s.DiscountPercent), 0, 100)
			s.DiscountPercent = Round2(pct)
			s.DiscountAmount = Round2(s.MRP * pct / 100)
			s.SellingPrice = Round2(s.MRP - s.DiscountAmount)
		} else {
			s.DiscountPercent = 0
			s.DiscountAmount = 0
			s.SellingPrice = s.MRP
		}

	case FieldDiscountPercent:
		pct := clamp(value, 0, 100)
		s.DiscountPercent = Round2(pct)
		s.DiscountAmount = Round2(s.MRP * pct / 100)
		s.SellingPrice = Round2(s.MRP - s.DiscountAmount)

	case FieldDiscountAmount:
		amount := clamp(value, 0, s.MRP)
		s.DiscountAmount = Round2(amount)
		if s.MRP > 0 {
			s.DiscountPercent = Round2(100 * s.DiscountAmount / s.MRP)
		} else {
			s.DiscountPercent = 0
		}
		s.SellingPrice = Round2(s.MRP - s.DiscountAmount)

	case FieldSellingPrice:
		price := clamp(value, 0, s.MRP)
		s.SellingPrice = Round2(price)
		s.DiscountAmount = Round2(s.MRP - s.SellingPrice)
		if s.MRP > 0 {
			s.DiscountPercent = Round2(100 * s.DiscountAmount / s.MRP)
		} else {
			s.DiscountPercent = 0
		}
	}

	return s
}

// Package cart accumulates validated line items into one pending sale
// transaction and keeps aggregate totals.
package cart

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// VehicleInfo carries the serviced-vehicle details some categories attach to
// a line.
type VehicleInfo struct {
	Number string `json:"number"`
	Model  string `json:"model,omitempty"`
}

// Line is one cart entry. Product fields are snapshots captured at add time;
// later edits to the product never reach back into an added line.
type Line struct {
	ID             string       `json:"id"`
	ProductID      int64        `json:"product_id"`
	SKU            string       `json:"sku"`
	Name           string       `json:"name"`
	Series         string       `json:"series"`
	CategoryID     int64        `json:"category_id"`
	Serialized     bool         `json:"serialized"`
	Quantity       int          `json:"quantity"`
	Serials        []string     `json:"serials,omitempty"`
	MRP            float64      `json:"mrp"`
	SellingPrice   float64      `json:"selling_price"`
	DiscountAmount float64      `json:"discount_amount"`
	FinalAmount    float64      `json:"final_amount"`
	VehicleInfo    *VehicleInfo `json:"vehicle_info,omitempty"`
}

// Totals are recomputed from the lines on every read; nothing is cached.
type Totals struct {
	Units      int     `json:"units"`
	GrandTotal float64 `json:"grand_total"`
}

// Cart is an ordered sequence of line items.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends a line after re-checking the invariants a submittable line must
// hold: quantity >= 1, positive final amount, and for serialized categories a
// serial set matching the quantity exactly with no duplicates. The stored
// line gets a fresh ID and its own copy of the serial slice.
func (c *Cart) Add(line Line) (Line, error) {
	if line.Quantity < 1 {
		return Line{}, &shared.ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	if line.FinalAmount <= 0 {
		return Line{}, &shared.ValidationError{Field: "final_amount", Message: "line amount must be positive"}
	}
	if line.Serialized {
		if len(line.Serials) != line.Quantity {
			return Line{}, &shared.ValidationError{
				Field:   "serials",
				Message: fmt.Sprintf("%d serial numbers provided for quantity %d", len(line.Serials), line.Quantity),
			}
		}
		seen := make(map[string]struct{}, len(line.Serials))
		for _, serial := range line.Serials {
			if _, dup := seen[serial]; dup {
				return Line{}, &shared.ValidationError{
					Field:   "serials",
					Message: fmt.Sprintf("duplicate serial number %s", serial),
				}
			}
			seen[serial] = struct{}{}
		}
	} else if len(line.Serials) > 0 {
		return Line{}, &shared.ValidationError{Field: "serials", Message: "bulk categories do not take serial numbers"}
	}

	line.ID = uuid.NewString()
	line.Serials = append([]string(nil), line.Serials...)
	c.lines = append(c.lines, line)
	return line, nil
}

// Restore replaces the cart contents with lines recovered from a persisted
// draft, keeping their original IDs. Restored lines were validated when first
// added.
func (c *Cart) Restore(lines []Line) {
	c.lines = make([]Line, len(lines))
	copy(c.lines, lines)
}

// Remove deletes the line with the given ID. Removal does not return reserved
// units to any pool; pools are re-fetched fresh on the next product selection.
func (c *Cart) Remove(lineID string) bool {
	for i, line := range c.lines {
		if line.ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.lines = nil
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Totals sums quantity and final amount across all lines.
func (c *Cart) Totals() Totals {
	var t Totals
	for _, line := range c.lines {
		t.Units += line.Quantity
		t.GrandTotal += line.FinalAmount
	}
	return t
}

// Package customers provides the paginated customer listing the sale flow
// picks a buyer from.
package customers

import "time"

// Customer identifies a buyer. GSTIN is present for wholesale customers that
// want tax invoices.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Address   *string   `json:"address,omitempty" db:"address"`
	GSTIN     *string   `json:"gstin,omitempty" db:"gstin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ListRequest filters and pages the customer listing. Search matches name or
// phone, case-insensitively.
type ListRequest struct {
	Search  string `json:"search" validate:"omitempty,max=100"`
	Page    int    `json:"page" validate:"gte=0"`
	PerPage int    `json:"per_page" validate:"gte=0,lte=200"`
}

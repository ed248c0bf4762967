// Package serials tracks the selection of uniquely identified inventory units
// against a finite available pool.
//
// A Selection holds the units the user has picked for one line item. For
// serialized product categories the selection is valid only when exactly
// `quantity` distinct units have been chosen, all of them drawn from the
// currently known available pool. Bulk categories skip unit tracking and
// validate quantity against the aggregate on-hand count instead.
package serials

import (
	"errors"
	"fmt"
)

// ErrInsufficientStock indicates a bulk quantity above the on-hand count.
var ErrInsufficientStock = errors.New("serials: quantity exceeds available stock")

// CountMismatchError reports the exact deficit or excess between the chosen
// unit count and the requested quantity.
type CountMismatchError struct {
	Quantity int
	Chosen   int
}

func (e *CountMismatchError) Error() string {
	if e.Chosen < e.Quantity {
		return fmt.Sprintf("serials: %d of %d units selected, %d more required", e.Chosen, e.Quantity, e.Quantity-e.Chosen)
	}
	return fmt.Sprintf("serials: %d units selected for quantity %d, remove %d", e.Chosen, e.Quantity, e.Chosen-e.Quantity)
}

// Selection is the unit-picking state for one in-progress line item.
// It is not safe for concurrent use; callers drive it from a single
// interaction loop.
type Selection struct {
	pool      map[string]struct{}
	chosen    []string
	chosenSet map[string]struct{}
	quantity  int
	bulk      bool
	onHand    int
}

// NewSerialized builds a selection over an available-unit pool.
// A nil or empty pool means nothing is selectable until SetPool is called;
// an unloaded pool is never treated as "anything goes".
func NewSerialized(pool []string) *Selection {
	s := &Selection{
		pool:      make(map[string]struct{}, len(pool)),
		chosenSet: make(map[string]struct{}),
		quantity:  1,
	}
	for _, serial := range pool {
		s.pool[serial] = struct{}{}
	}
	return s
}

// NewBulk builds a selection for a bulk category where units carry no
// individual identity. onHand is the product's aggregate available count.
func NewBulk(onHand int) *Selection {
	return &Selection{bulk: true, onHand: onHand, quantity: 1}
}

// Bulk reports whether this selection skips per-unit tracking.
func (s *Selection) Bulk() bool { return s.bulk }

// Quantity returns the requested quantity.
func (s *Selection) Quantity() int { return s.quantity }

// Chosen returns the chosen serials in selection order.
func (s *Selection) Chosen() []string {
	out := make([]string, len(s.chosen))
	copy(out, s.chosen)
	return out
}

// PoolSize returns the number of units currently known to be available.
func (s *Selection) PoolSize() int { return len(s.pool) }

// InPool reports whether serial is in the available pool.
func (s *Selection) InPool(serial string) bool {
	_, ok := s.pool[serial]
	return ok
}

// SetQuantity changes the requested quantity. Shrinking below the chosen
// count truncates the newest picks, keeping the first n in selection order.
// Growing only raises the ceiling; no units are auto-selected.
func (s *Selection) SetQuantity(n int) {
	if n < 0 {
		n = 0
	}
	s.quantity = n
	if s.bulk {
		return
	}
	if len(s.chosen) > n {
		for _, serial := range s.chosen[n:] {
			delete(s.chosenSet, serial)
		}
		s.chosen = s.chosen[:n]
	}
}

// Toggle adds serial to the selection, or removes it if already chosen.
// Serials outside the available pool are ignored: the pool is the single
// source of truth. Adding beyond the quantity ceiling is likewise a no-op.
// It returns true when the selection changed.
func (s *Selection) Toggle(serial string) bool {
	if s.bulk {
		return false
	}
	if _, chosen := s.chosenSet[serial]; chosen {
		s.remove(serial)
		return true
	}
	if _, ok := s.pool[serial]; !ok {
		return false
	}
	if len(s.chosen) >= s.quantity {
		return false
	}
	s.chosen = append(s.chosen, serial)
	s.chosenSet[serial] = struct{}{}
	return true
}

func (s *Selection) remove(serial string) {
	delete(s.chosenSet, serial)
	for i, v := range s.chosen {
		if v == serial {
			s.chosen = append(s.chosen[:i], s.chosen[i+1:]...)
			return
		}
	}
}

// SetPool replaces the available pool with a fresh snapshot and drops any
// chosen serial no longer present, preserving the order of the survivors.
// This is the re-validation hook for the race between a quantity edit and a
// late pool fetch.
func (s *Selection) SetPool(pool []string) {
	if s.bulk {
		return
	}
	s.pool = make(map[string]struct{}, len(pool))
	for _, serial := range pool {
		s.pool[serial] = struct{}{}
	}
	kept := s.chosen[:0]
	for _, serial := range s.chosen {
		if _, ok := s.pool[serial]; ok {
			kept = append(kept, serial)
		} else {
			delete(s.chosenSet, serial)
		}
	}
	s.chosen = kept
}

// SetOnHand updates the aggregate available count for bulk selections.
func (s *Selection) SetOnHand(n int) {
	if s.bulk {
		s.onHand = n
	}
}

// Validate checks whether the selection can back a line item. Serialized
// selections require exactly quantity chosen units; bulk selections require
// quantity within the on-hand count. A nil return means the selection is
// submittable.
func (s *Selection) Validate() error {
	if s.quantity < 1 {
		return &CountMismatchError{Quantity: s.quantity, Chosen: len(s.chosen)}
	}
	if s.bulk {
		if s.quantity > s.onHand {
			return fmt.Errorf("%w: requested %d, on hand %d", ErrInsufficientStock, s.quantity, s.onHand)
		}
		return nil
	}
	if len(s.chosen) != s.quantity {
		return &CountMismatchError{Quantity: s.quantity, Chosen: len(s.chosen)}
	}
	return nil
}

package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
)

// Service coordinates catalog operations.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// GetCategory returns a category by id.
func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// GetProduct returns a product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListInventory returns a category's products grouped by series, in series
// order, plus the aggregate stock count.
func (s *Service) ListInventory(ctx context.Context, categoryID int64) (*InventorySnapshot, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	products, err := s.repo.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	snapshot := &InventorySnapshot{}
	var current *SeriesGroup
	for _, p := range products {
		snapshot.TotalStock += p.OnHand
		if current == nil || current.Series != p.Series {
			snapshot.Series = append(snapshot.Series, SeriesGroup{Series: p.Series})
			current = &snapshot.Series[len(snapshot.Series)-1]
		}
		current.Products = append(current.Products, p)
	}
	return snapshot, nil
}

// AvailableSerials returns the available pool for a product. Bulk categories
// have no per-unit identity and yield an empty pool.
func (s *Service) AvailableSerials(ctx context.Context, categoryID, productID int64) ([]string, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.Serialized {
		return nil, nil
	}
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.CategoryID != categoryID {
		return nil, ErrProductNotFound
	}
	return s.repo.AvailableSerials(ctx, productID)
}

// AddStock registers a stock addition. Serialized categories must supply
// exactly input.Quantity distinct, unregistered serials; bulk categories must
// supply none. Runs in one transaction.
func (s *Service) AddStock(ctx context.Context, input AddStockInput) error {
	if err := s.validate.Struct(input); err != nil {
		return err
	}

	product, err := s.repo.GetProduct(ctx, input.ProductID)
	if err != nil {
		return err
	}
	category, err := s.repo.GetCategory(ctx, product.CategoryID)
	if err != nil {
		return err
	}

	if category.Serialized {
		if len(input.Serials) != input.Quantity {
			return fmt.Errorf("%w: got %d serials for quantity %d", ErrSerialCount, len(input.Serials), input.Quantity)
		}
	} else if len(input.Serials) > 0 {
		return ErrSerialsOnBulk
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if category.Serialized {
			if err := tx.InsertUnits(ctx, input.ProductID, input.Serials); err != nil {
				return err
			}
		}
		if err := tx.AdjustOnHand(ctx, input.ProductID, input.Quantity); err != nil {
			return err
		}
		return tx.InsertStockEntry(ctx, input.ProductID, input.Quantity, input.Purchase, input.ActorID)
	})
}

// UpdatePricing applies a single pricing-field edit to one product for one
// customer class and persists the re-derived state.
func (s *Service) UpdatePricing(ctx context.Context, productID int64, class pricing.Class, field pricing.Field, value float64) (*Product, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("catalog: unknown class %q", class)
	}
	if !field.Valid() {
		return nil, fmt.Errorf("catalog: unknown pricing field %q", field)
	}
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	byClass := product.Pricing()
	byClass.Edit(class, field, value)

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if field == pricing.FieldMRP {
			// MRP is shared: both classes were re-derived.
			if err := tx.UpdateClassPricing(ctx, productID, pricing.ClassB2C, byClass.B2C); err != nil {
				return err
			}
			if err := tx.UpdateClassPricing(ctx, productID, pricing.ClassB2B, byClass.B2B); err != nil {
				return err
			}
			return tx.UpdateMRP(ctx, productID, byClass.MRP)
		}
		if class == pricing.ClassB2B {
			return tx.UpdateClassPricing(ctx, productID, pricing.ClassB2B, byClass.B2B)
		}
		return tx.UpdateClassPricing(ctx, productID, pricing.ClassB2C, byClass.B2C)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, productID)
}

// ApplyCategoryDiscount sets one class's discount percent on every product in
// a category, deriving each product's amount and selling price from its own
// MRP. MRPs are never overwritten.
func (s *Service) ApplyCategoryDiscount(ctx context.Context, categoryID int64, class pricing.Class, pct float64) error {
	if !class.Valid() {
		return fmt.Errorf("catalog: unknown class %q", class)
	}
	products, err := s.repo.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for _, p := range products {
			byClass := p.Pricing()
			byClass.Edit(class, pricing.FieldDiscountPercent, pct)
			state := byClass.B2C
			if class == pricing.ClassB2B {
				state = byClass.B2B
			}
			if err := tx.UpdateClassPricing(ctx, p.ID, class, state); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkUnitsSold transitions the given serials to SOLD and decrements each
// product's on-hand count. Every unit must currently be AVAILABLE.
func (s *Service) MarkUnitsSold(ctx context.Context, serialNos []string) error {
	if len(serialNos) == 0 {
		return nil
	}
	units, err := s.repo.GetUnits(ctx, serialNos)
	if err != nil {
		return err
	}
	if len(units) != len(serialNos) {
		return fmt.Errorf("%w: %d of %d found", ErrUnitNotAvailable, len(units), len(serialNos))
	}
	perProduct := make(map[int64]int)
	for _, u := range units {
		if u.State != UnitAvailable {
			return fmt.Errorf("%w: %s is %s", ErrUnitNotAvailable, u.Serial, u.State)
		}
		perProduct[u.ProductID]++
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.UpdateUnitState(ctx, serialNos, UnitSold); err != nil {
			return err
		}
		for productID, count := range perProduct {
			if err := tx.AdjustOnHand(ctx, productID, -count); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReduceBulkStock decrements a bulk product's on-hand count after a sale.
func (s *Service) ReduceBulkStock(ctx context.Context, productID int64, qty int) error {
	if qty <= 0 {
		return nil
	}
	return s.repo.AdjustOnHand(ctx, productID, -qty)
}

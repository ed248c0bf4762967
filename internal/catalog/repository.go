package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/platform/db"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
)

// Repository abstracts catalog persistence for the service.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	GetCategory(ctx context.Context, id int64) (*Category, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	AvailableSerials(ctx context.Context, productID int64) ([]string, error)
	GetUnits(ctx context.Context, serialNos []string) ([]SerialUnit, error)
	InsertUnits(ctx context.Context, productID int64, serialNos []string) error
	AdjustOnHand(ctx context.Context, productID int64, delta int) error
	UpdateUnitState(ctx context.Context, serialNos []string, state UnitState) error
	UpdateClassPricing(ctx context.Context, productID int64, class pricing.Class, state pricing.ClassState) error
	UpdateMRP(ctx context.Context, productID int64, mrp float64) error
	InsertStockEntry(ctx context.Context, productID int64, qty int, purchase PurchaseInfo, actorID int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const productColumns = `id, sku, name, category_id, series, mrp, dp,
	b2c_discount_percent, b2c_discount_amount, b2c_selling_price,
	b2b_discount_percent, b2b_discount_amount, b2b_selling_price,
	on_hand, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.Series, &p.MRP, &p.DP,
		&p.B2C.DiscountPercent, &p.B2C.DiscountAmount, &p.B2C.SellingPrice,
		&p.B2B.DiscountPercent, &p.B2B.DiscountAmount, &p.B2B.SellingPrice,
		&p.OnHand, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog: scan product: %w", err)
	}
	return &p, nil
}

func (r *repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.QueryRow(ctx,
		`SELECT id, name, serialized FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Serialized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("catalog: get category: %w", err)
	}
	return &c, nil
}

func (r *repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *repository) ListProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE category_id = $1
		 ORDER BY series, name, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *repository) AvailableSerials(ctx context.Context, productID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT serial FROM serial_units
		 WHERE product_id = $1 AND state = $2
		 ORDER BY serial`, productID, UnitAvailable)
	if err != nil {
		return nil, fmt.Errorf("catalog: available serials: %w", err)
	}
	defer rows.Close()

	var serialNos []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("catalog: scan serial: %w", err)
		}
		serialNos = append(serialNos, s)
	}
	return serialNos, rows.Err()
}

func (r *repository) GetUnits(ctx context.Context, serialNos []string) ([]SerialUnit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT serial, product_id, state FROM serial_units WHERE serial = ANY($1)`, serialNos)
	if err != nil {
		return nil, fmt.Errorf("catalog: get units: %w", err)
	}
	defer rows.Close()

	var units []SerialUnit
	for rows.Next() {
		var u SerialUnit
		if err := rows.Scan(&u.Serial, &u.ProductID, &u.State); err != nil {
			return nil, fmt.Errorf("catalog: scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *repository) InsertUnits(ctx context.Context, productID int64, serialNos []string) error {
	for _, serial := range serialNos {
		_, err := r.db.Exec(ctx,
			`INSERT INTO serial_units (serial, product_id, state) VALUES ($1, $2, $3)`,
			serial, productID, UnitAvailable)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: %s", ErrDuplicateSerial, serial)
			}
			return fmt.Errorf("catalog: insert unit: %w", err)
		}
	}
	return nil
}

func (r *repository) AdjustOnHand(ctx context.Context, productID int64, delta int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET on_hand = on_hand + $2, updated_at = now()
		 WHERE id = $1 AND on_hand + $2 >= 0`, productID, delta)
	if err != nil {
		return fmt.Errorf("catalog: adjust on hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) UpdateUnitState(ctx context.Context, serialNos []string, state UnitState) error {
	_, err := r.db.Exec(ctx,
		`UPDATE serial_units SET state = $2 WHERE serial = ANY($1)`, serialNos, state)
	if err != nil {
		return fmt.Errorf("catalog: update unit state: %w", err)
	}
	return nil
}

func (r *repository) UpdateClassPricing(ctx context.Context, productID int64, class pricing.Class, state pricing.ClassState) error {
	column := "b2c"
	if class == pricing.ClassB2B {
		column = "b2b"
	}
	query := fmt.Sprintf(
		`UPDATE products SET %[1]s_discount_percent = $2, %[1]s_discount_amount = $3,
		 %[1]s_selling_price = $4, updated_at = now() WHERE id = $1`, column)
	tag, err := r.db.Exec(ctx, query, productID, state.DiscountPercent, state.DiscountAmount, state.SellingPrice)
	if err != nil {
		return fmt.Errorf("catalog: update pricing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) UpdateMRP(ctx context.Context, productID int64, mrp float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET mrp = $2, updated_at = now() WHERE id = $1`, productID, mrp)
	if err != nil {
		return fmt.Errorf("catalog: update mrp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) InsertStockEntry(ctx context.Context, productID int64, qty int, purchase PurchaseInfo, actorID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO stock_entries (product_id, quantity, invoice_no, purchased_at, unit_cost, note, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		productID, qty, purchase.InvoiceNo, purchase.PurchasedAt, purchase.UnitCost, purchase.Note, actorID)
	if err != nil {
		return fmt.Errorf("catalog: insert stock entry: %w", err)
	}
	return nil
}

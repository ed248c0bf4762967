package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// Repository abstracts customer persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, phone, address, gstin, created_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.GSTIN, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("customers: get: %w", err)
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	if search == "" {
		return r.listAll(ctx, limit, offset)
	}
	pattern := "%" + search + "%"

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM customers WHERE name ILIKE $1 OR phone ILIKE $1`, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("customers: count: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, address, gstin, created_at FROM customers
		 WHERE name ILIKE $1 OR phone ILIKE $1
		 ORDER BY name, id
		 LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("customers: list: %w", err)
	}

	out, err := collectCustomers(rows)
	return out, total, err
}

func (r *repository) listAll(ctx context.Context, limit, offset int) ([]Customer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("customers: count: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, address, gstin, created_at FROM customers
		 ORDER BY name, id
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("customers: list: %w", err)
	}

	out, err := collectCustomers(rows)
	return out, total, err
}

func collectCustomers(rows pgx.Rows) ([]Customer, error) {
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.GSTIN, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("customers: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

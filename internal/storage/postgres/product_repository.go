package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
)

type productRepository struct {
	ctx context.Context
	q   querier
	// forUpdate включает блокировку читаемой строки до конца транзакции.
	forUpdate bool
}

func (r *productRepository) Get(id int64) (domain.Product, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	query := `
		SELECT id, name, price_minor, units_in_stock, units_on_order, version, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	if r.forUpdate {
		query += " FOR UPDATE"
	}

	var p domain.Product
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.PriceMinor,
		&p.UnitsInStock, &p.UnitsOnOrder,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return p, nil
}

func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (
			id, name, price_minor, units_in_stock, units_on_order, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		product.ID, product.Name, product.PriceMinor,
		product.UnitsInStock, product.UnitsOnOrder,
		product.Version, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *productRepository) Save(product domain.Product) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET name = $1,
		    price_minor = $2,
		    units_in_stock = $3,
		    units_on_order = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE id = $6
		  AND version = $7
	`,
		product.Name, product.PriceMinor,
		product.UnitsInStock, product.UnitsOnOrder,
		time.Now().UTC(),
		product.ID, product.Version,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.productExists(ctx, product.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrProductNotFound
		}
		return domain.ErrProductVersionConflict
	}

	return nil
}

func (r *productRepository) productExists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := r.q.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, id).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check product exists: %w", err)
}

var _ domain.ProductRepository = (*productRepository)(nil)

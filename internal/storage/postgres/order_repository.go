package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
)

type orderRepository struct {
	ctx context.Context
	q   querier
	// forUpdate включает блокировку читаемой строки до конца транзакции.
	forUpdate bool
}

func (r *orderRepository) Create(order domain.Order) (domain.Order, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	var err error
	if order.ID == 0 {
		err = r.q.QueryRowContext(ctx, `
			INSERT INTO orders (
				customer_id, discount_rate, shipped_at,
				ship_street, ship_city, ship_postal_code, ship_country,
				version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id
		`,
			order.CustomerID, order.DiscountRate, order.ShippedAt,
			order.ShipTo.Street, order.ShipTo.City, order.ShipTo.PostalCode, order.ShipTo.Country,
			order.Version, order.CreatedAt, order.UpdatedAt,
		).Scan(&order.ID)
	} else {
		_, err = r.q.ExecContext(ctx, `
			INSERT INTO orders (
				id, customer_id, discount_rate, shipped_at,
				ship_street, ship_city, ship_postal_code, ship_country,
				version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`,
			order.ID, order.CustomerID, order.DiscountRate, order.ShippedAt,
			order.ShipTo.Street, order.ShipTo.City, order.ShipTo.PostalCode, order.ShipTo.Country,
			order.Version, order.CreatedAt, order.UpdatedAt,
		)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Order{}, domain.ErrAlreadyExists
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		if insErr := (&lineRepository{ctx: r.ctx, q: r.q}).Add(order.Lines[i]); insErr != nil {
			return domain.Order{}, insErr
		}
	}

	return order, nil
}

func (r *orderRepository) Get(id int64) (domain.Order, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	query := `
		SELECT id, customer_id, discount_rate, shipped_at,
		       ship_street, ship_city, ship_postal_code, ship_country,
		       version, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	if r.forUpdate {
		query += " FOR UPDATE"
	}

	var (
		order     domain.Order
		shippedAt sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.CustomerID, &order.DiscountRate, &shippedAt,
		&order.ShipTo.Street, &order.ShipTo.City, &order.ShipTo.PostalCode, &order.ShipTo.Country,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	if shippedAt.Valid {
		t := shippedAt.Time.UTC()
		order.ShippedAt = &t
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE orders
		SET customer_id = $1,
		    discount_rate = $2,
		    shipped_at = $3,
		    ship_street = $4,
		    ship_city = $5,
		    ship_postal_code = $6,
		    ship_country = $7,
		    version = version + 1,
		    updated_at = $8
		WHERE id = $9
		  AND version = $10
	`,
		order.CustomerID, order.DiscountRate, order.ShippedAt,
		order.ShipTo.Street, order.ShipTo.City, order.ShipTo.PostalCode, order.ShipTo.Country,
		order.UpdatedAt,
		order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.orderExists(ctx, order.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}

	return nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, created_at
		FROM order_lines
		WHERE order_id = $1
		ORDER BY created_at ASC, product_id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.OrderID, &line.ProductID, &line.Quantity, &line.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func (r *orderRepository) orderExists(ctx context.Context, orderID int64) (bool, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

// lineRepository сохраняет строки заказа в той же транзакции.
type lineRepository struct {
	ctx context.Context
	q   querier
}

func (r *lineRepository) Add(line domain.OrderLine) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	if line.CreatedAt.IsZero() {
		line.CreatedAt = time.Now().UTC()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO order_lines (order_id, product_id, quantity, created_at)
		VALUES ($1,$2,$3,$4)
	`, line.OrderID, line.ProductID, line.Quantity, line.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderLineExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("insert order line: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
var _ domain.OrderLineRepository = (*lineRepository)(nil)

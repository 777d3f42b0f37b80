package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
)

const opTimeout = 5 * time.Second

func opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, opTimeout)
}

type customerRepository struct {
	ctx context.Context
	q   querier
}

func (r *customerRepository) Get(id string) (domain.Customer, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	var c domain.Customer
	err := r.q.QueryRowContext(ctx, `
		SELECT id, company, contact, street, city, postal_code, country, large_account
		FROM customers
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Company, &c.Contact,
		&c.Address.Street, &c.Address.City, &c.Address.PostalCode, &c.Address.Country,
		&c.LargeAccount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	return c, nil
}

func (r *customerRepository) Create(customer domain.Customer) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO customers (
			id, company, contact, street, city, postal_code, country, large_account
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		customer.ID, customer.Company, customer.Contact,
		customer.Address.Street, customer.Address.City,
		customer.Address.PostalCode, customer.Address.Country,
		customer.LargeAccount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)

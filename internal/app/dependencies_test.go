package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/fixtures"
)

func TestNewDependencies_MemoryWithSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedDemoData = true

	deps, err := NewDependencies(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	require.NotNil(t, deps.Store)
	require.NotNil(t, deps.Outbox)

	err = deps.Store.InTx(context.Background(), func(r domain.Repositories) error {
		customer, err := r.Customers.Get(fixtures.LargeCustomerID)
		if err != nil {
			return err
		}
		require.True(t, customer.LargeAccount)

		_, err = r.Orders.Get(fixtures.UnshippedOrderID)
		return err
	})
	require.NoError(t, err)
}

func TestNewDependencies_MemoryWithoutSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedDemoData = false

	deps, err := NewDependencies(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	err = deps.Store.InTx(context.Background(), func(r domain.Repositories) error {
		_, err := r.Customers.Get(fixtures.LargeCustomerID)
		return err
	})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestNewDependencies_UnsupportedDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "cassandra"

	_, err := NewDependencies(context.Background(), cfg, nil)
	require.Error(t, err)
}

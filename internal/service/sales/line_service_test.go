package sales_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/fixtures"
	"github.com/vladislavdragonenkov/sales-oms/internal/service/sales"
	"github.com/vladislavdragonenkov/sales-oms/internal/storage/memory"
)

func newServices(t *testing.T) (*memory.Store, *sales.OrderService, *sales.LineService) {
	t.Helper()
	store := newSeededStore(t)
	logger := loggerForTests()
	orders := sales.NewOrderService(store, sales.WithLogger(logger))
	lines := sales.NewLineService(store, sales.WithLogger(logger))
	return store, orders, lines
}

func TestAddLine_Success(t *testing.T) {
	store, orders, lines := newServices(t)

	order, err := orders.CreateOrder(context.Background(), fixtures.SmallCustomerID)
	require.NoError(t, err)

	line, err := lines.AddLine(context.Background(), order.ID, fixtures.ProductRef, 5)
	require.NoError(t, err)
	require.Equal(t, order.ID, line.OrderID)
	require.Equal(t, fixtures.ProductRef, line.ProductID)
	require.Equal(t, int32(5), line.Quantity)

	// Остаток не списывается при добавлении строки, только счётчик заказанного.
	product := getProduct(t, store, fixtures.ProductRef)
	require.Equal(t, fixtures.ProductStock, product.UnitsInStock)
	require.Equal(t, int32(5), product.UnitsOnOrder)
}

func TestAddLine_IncrementsUnitsOnOrderCumulatively(t *testing.T) {
	store, orders, lines := newServices(t)

	first, err := orders.CreateOrder(context.Background(), fixtures.SmallCustomerID)
	require.NoError(t, err)
	second, err := orders.CreateOrder(context.Background(), fixtures.LargeCustomerID)
	require.NoError(t, err)

	_, err = lines.AddLine(context.Background(), first.ID, fixtures.ProductRef, 4)
	require.NoError(t, err)
	_, err = lines.AddLine(context.Background(), second.ID, fixtures.ProductRef, 6)
	require.NoError(t, err)

	product := getProduct(t, store, fixtures.ProductRef)
	require.Equal(t, int32(10), product.UnitsOnOrder)
}

func TestAddLine_QuantityMustBePositive(t *testing.T) {
	_, _, lines := newServices(t)

	for _, qty := range []int32{0, -1, -100} {
		_, err := lines.AddLine(context.Background(), fixtures.UnshippedOrderID, fixtures.ProductRef, qty)
		require.ErrorIs(t, err, domain.ErrQuantityNotPositive)
	}
}

func TestAddLine_QuantityCheckedBeforeLookups(t *testing.T) {
	_, _, lines := newServices(t)

	// Несуществующий заказ: при некорректном количестве ошибка валидации,
	// а не NotFound — проверка идёт до любых обращений к хранилищу.
	_, err := lines.AddLine(context.Background(), 424242, 424242, 0)
	require.ErrorIs(t, err, domain.ErrQuantityNotPositive)
	require.NotErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestAddLine_OrderNotFound(t *testing.T) {
	_, _, lines := newServices(t)

	_, err := lines.AddLine(context.Background(), 424242, fixtures.ProductRef, 1)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestAddLine_ProductNotFound(t *testing.T) {
	_, _, lines := newServices(t)

	_, err := lines.AddLine(context.Background(), fixtures.UnshippedOrderID, 424242, 1)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAddLine_RejectedForShippedOrder(t *testing.T) {
	_, orders, lines := newServices(t)

	_, err := orders.RecordShipment(context.Background(), fixtures.UnshippedOrderID)
	require.NoError(t, err)

	// Отказ из-за жизненного цикла, даже при достаточном остатке.
	_, err = lines.AddLine(context.Background(), fixtures.UnshippedOrderID, fixtures.ProductRef, 1)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyShipped)
}

func TestAddLine_InsufficientStock(t *testing.T) {
	store, orders, lines := newServices(t)

	order, err := orders.CreateOrder(context.Background(), fixtures.SmallCustomerID)
	require.NoError(t, err)

	_, err = lines.AddLine(context.Background(), order.ID, fixtures.ProductRef, fixtures.ProductStock+1)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Никакая строка не сохранена, счётчик не изменился.
	reloaded, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Empty(t, reloaded.Lines)

	product := getProduct(t, store, fixtures.ProductRef)
	require.Zero(t, product.UnitsOnOrder)
}

func TestAddLine_ShippedCheckedBeforeStock(t *testing.T) {
	_, orders, lines := newServices(t)

	_, err := orders.RecordShipment(context.Background(), fixtures.UnshippedOrderID)
	require.NoError(t, err)

	// После отгрузки остаток равен -83, то есть нарушены оба условия.
	// Контракт: сначала проверяется жизненный цикл.
	_, err = lines.AddLine(context.Background(), fixtures.UnshippedOrderID, fixtures.ProductRef, 1000)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyShipped)
}

func TestAddLine_ExactStockBoundary(t *testing.T) {
	_, orders, lines := newServices(t)

	order, err := orders.CreateOrder(context.Background(), fixtures.SmallCustomerID)
	require.NoError(t, err)

	// Ровно весь остаток — допустимо.
	_, err = lines.AddLine(context.Background(), order.ID, fixtures.ProductRef, fixtures.ProductStock)
	require.NoError(t, err)
}

func TestAddLine_DuplicateProduct(t *testing.T) {
	_, orders, lines := newServices(t)

	order, err := orders.CreateOrder(context.Background(), fixtures.SmallCustomerID)
	require.NoError(t, err)

	_, err = lines.AddLine(context.Background(), order.ID, fixtures.ProductRef, 1)
	require.NoError(t, err)
	_, err = lines.AddLine(context.Background(), order.ID, fixtures.ProductRef, 2)
	require.ErrorIs(t, err, domain.ErrOrderLineExists)
}

func TestAddLine_ThenShipmentDecrementsAddedLine(t *testing.T) {
	store, orders, lines := newServices(t)

	order, err := orders.CreateOrder(context.Background(), fixtures.SmallCustomerID)
	require.NoError(t, err)

	_, err = lines.AddLine(context.Background(), order.ID, fixtures.ProductRef, 10)
	require.NoError(t, err)

	_, err = orders.RecordShipment(context.Background(), order.ID)
	require.NoError(t, err)

	product := getProduct(t, store, fixtures.ProductRef)
	require.Equal(t, fixtures.ProductStock-10, product.UnitsInStock)
}

// Package fixtures загружает демонстрационный набор данных, на котором
// построены примеры и тесты workflow: маленький клиент в Берлине, крупный
// клиент со скидкой и неотгруженный заказ со строкой на 100 единиц при
// остатке 17.
package fixtures

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
)

// Ключи демонстрационного набора.
const (
	SmallCustomerID   = "0COM"
	LargeCustomerID   = "2COM"
	SmallCustomerCity = "Berlin"

	ProductRef        = int64(42)
	ProductStock      = int32(17)
	UnshippedOrderID  = int64(99998)
	UnshippedOrderQty = int32(100)
)

// Seed наполняет хранилище демонстрационным набором в одной транзакции.
func Seed(ctx context.Context, store domain.Transactor) error {
	now := time.Now().UTC()

	return store.InTx(ctx, func(r domain.Repositories) error {
		small := domain.Customer{
			ID:      SmallCustomerID,
			Company: "Alfreds Futterkiste",
			Contact: "Maria Anders",
			Address: domain.Address{
				Street:     "Obere Str. 57",
				City:       SmallCustomerCity,
				PostalCode: "12209",
				Country:    "Germany",
			},
		}
		large := domain.Customer{
			ID:      LargeCustomerID,
			Company: "Antonio Moreno Taqueria",
			Contact: "Antonio Moreno",
			Address: domain.Address{
				Street:     "Mataderos 2312",
				City:       "Mexico D.F.",
				PostalCode: "05023",
				Country:    "Mexico",
			},
			LargeAccount: true,
		}
		if err := r.Customers.Create(small); err != nil {
			return err
		}
		if err := r.Customers.Create(large); err != nil {
			return err
		}

		product := domain.Product{
			ID:           ProductRef,
			Name:         "Chartreuse verte",
			PriceMinor:   1800,
			UnitsInStock: ProductStock,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Products.Create(product); err != nil {
			return err
		}

		order := domain.Order{
			ID:         UnshippedOrderID,
			CustomerID: SmallCustomerID,
			ShipTo:     small.Address,
			Lines: []domain.OrderLine{
				{
					OrderID:   UnshippedOrderID,
					ProductID: ProductRef,
					Quantity:  UnshippedOrderQty,
					CreatedAt: now,
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := r.Orders.Create(order)
		return err
	})
}

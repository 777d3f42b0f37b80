package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
)

// helper для создания базового заказа с одной строкой.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:           99998,
		CustomerID:   "0COM",
		DiscountRate: 0,
		ShipTo: domain.Address{
			Street: "Obere Str. 57",
			City:   "Berlin",
		},
		Lines: []domain.OrderLine{
			{OrderID: 99998, ProductID: 42, Quantity: 100, CreatedAt: now},
		},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
		},
		{
			name: "negative discount",
			mut: func(o *domain.Order) {
				o.DiscountRate = -0.05
			},
		},
		{
			name: "discount above one",
			mut: func(o *domain.Order) {
				o.DiscountRate = 1.5
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Lines[0].Quantity = 0
			},
		},
		{
			name: "foreign line",
			mut: func(o *domain.Order) {
				o.Lines[0].OrderID = 12345
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestOrderShipped(t *testing.T) {
	order := makeOrder()
	if order.Shipped() {
		t.Fatal("new order must not be shipped")
	}

	now := time.Now().UTC()
	order.ShippedAt = &now
	if !order.Shipped() {
		t.Fatal("order with shipped_at must report shipped")
	}
}

func TestDiscountFor(t *testing.T) {
	large := domain.Customer{ID: "2COM", LargeAccount: true}
	if rate := domain.DiscountFor(large); rate != domain.LargeAccountDiscount {
		t.Fatalf("expected %v for large account, got %v", domain.LargeAccountDiscount, rate)
	}

	small := domain.Customer{ID: "0COM"}
	if rate := domain.DiscountFor(small); rate != 0 {
		t.Fatalf("expected zero discount for small account, got %v", rate)
	}
}

func TestProductBackordered(t *testing.T) {
	p := domain.Product{ID: 42, UnitsInStock: 17}
	if p.Backordered() {
		t.Fatal("positive stock must not be backordered")
	}
	p.UnitsInStock = -83
	if !p.Backordered() {
		t.Fatal("negative stock must be backordered")
	}
}

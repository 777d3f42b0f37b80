package domain

import "time"

// OrderLine — строка заказа. Идентичность составная: (заказ, продукт).
type OrderLine struct {
	OrderID   int64
	ProductID int64
	// Quantity — заказанное количество, строго положительное.
	// Проверяется при добавлении строки и далее не перепроверяется.
	Quantity  int32
	CreatedAt time.Time
}

// Order агрегирует заказ клиента и его строки.
type Order struct {
	// ID — целочисленный ключ, генерируется хранилищем при создании.
	ID int64
	// CustomerID — ссылка на клиента-владельца.
	CustomerID string
	// DiscountRate — ставка скидки, зафиксированная при создании заказа
	// по классификации клиента. После создания не пересчитывается.
	DiscountRate float64
	// ShippedAt — дата отгрузки; nil означает "ещё не отгружен".
	// Устанавливается не более одного раза и после этого неизменна.
	ShippedAt *time.Time
	// ShipTo — адрес доставки. Независимая копия адреса клиента:
	// последующие изменения адреса клиента заказ не затрагивают.
	ShipTo Address
	// Lines — строки заказа в порядке добавления.
	Lines []OrderLine
	// Version используется хранилищем для optimistic locking.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shipped сообщает, отгружен ли заказ.
func (o *Order) Shipped() bool {
	return o.ShippedAt != nil
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.DiscountRate < 0 || o.DiscountRate >= 1 {
		errs = append(errs, ErrDiscountRateInvalid)
	}
	for _, line := range o.Lines {
		if line.Quantity <= 0 {
			errs = append(errs, ErrQuantityNotPositive)
		}
		if line.OrderID != 0 && line.OrderID != o.ID {
			errs = append(errs, ErrLineOrderMismatch)
		}
	}

	return errs
}

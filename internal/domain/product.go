package domain

import "time"

// Product — позиция каталога с учётом остатков на складе.
type Product struct {
	// ID — целочисленный ключ продукта.
	ID int64
	// Name — название продукта.
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// UnitsInStock — остаток на складе. Знаковое значение: отгрузка может
	// увести остаток в минус, отрицательное значение означает backorder.
	UnitsInStock int32
	// UnitsOnOrder — накопительный счётчик заказанных единиц. Увеличивается
	// при добавлении строки заказа вместе с её сохранением.
	UnitsOnOrder int32
	// Version используется хранилищем для optimistic locking.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Backordered сообщает, ушёл ли остаток продукта в минус.
func (p Product) Backordered() bool {
	return p.UnitsInStock < 0
}

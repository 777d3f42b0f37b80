package domain

// Address — почтовый адрес. Используется и как адрес клиента,
// и как адрес доставки заказа (независимая копия).
type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

// Customer описывает клиента из справочника. Ядро workflow читает клиентов,
// но никогда не изменяет их.
type Customer struct {
	// ID — строковый ключ клиента (например "2COM").
	ID string
	// Company — название компании клиента.
	Company string
	// Contact — контактное лицо.
	Contact string
	// Address — адрес клиента; при создании заказа копируется в адрес доставки.
	Address Address
	// LargeAccount — признак "крупного клиента". Классификация задаётся
	// внешним правилом и для workflow является входными данными.
	LargeAccount bool
}

// LargeAccountDiscount — фиксированная ставка скидки для крупных клиентов.
const LargeAccountDiscount = 0.15

// DiscountFor возвращает ставку скидки по классификации клиента.
// Ставка фиксируется в заказе в момент создания и больше не пересчитывается.
func DiscountFor(c Customer) float64 {
	if c.LargeAccount {
		return LargeAccountDiscount
	}
	return 0
}

package domain

import "errors"

var (
	// ErrCustomerNotFound возвращается, если клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если продукт не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrQuantityNotPositive — ошибка валидации: количество должно быть строго положительным.
	// Проверяется до любых обращений к хранилищу.
	ErrQuantityNotPositive = errors.New("quantity must be greater than zero")
	// ErrOrderAlreadyShipped — нарушение жизненного цикла: заказ уже отгружен.
	ErrOrderAlreadyShipped = errors.New("order already shipped")
	// ErrInsufficientStock — бизнес-правило: запрошенное количество превышает остаток.
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	// ErrOrderLineExists — строка для этой пары (заказ, продукт) уже существует.
	ErrOrderLineExists = errors.New("order line already exists for this product")
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка ставки скидки вне диапазона [0, 1).
	ErrDiscountRateInvalid = errors.New("discount rate must be in [0, 1)")
	// Ошибка строки, привязанной к чужому заказу.
	ErrLineOrderMismatch = errors.New("order line belongs to a different order")
	// ErrAlreadyExists возвращается при создании сущности с занятым ключом.
	ErrAlreadyExists = errors.New("entity already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrProductVersionConflict сигнализирует о конфликте версий при сохранении продукта.
	ErrProductVersionConflict = errors.New("product version conflict")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к отсутствию сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsBusinessRuleViolation проверяет, является ли ошибка нарушением
// бизнес-правила (повторная отгрузка, нехватка остатка, дубль строки).
func IsBusinessRuleViolation(err error) bool {
	return errors.Is(err, ErrOrderAlreadyShipped) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrOrderLineExists)
}

package domain

import (
	"context"
	"time"
)

// CustomerRepository описывает требования к справочнику клиентов.
type CustomerRepository interface {
	// Get возвращает клиента или ErrCustomerNotFound, если его нет.
	Get(id string) (Customer, error)
	// Create сохраняет нового клиента. Workflow клиентов не изменяет,
	// запись нужна внешним загрузчикам данных.
	Create(customer Customer) error
}

// ProductRepository описывает требования к каталогу продуктов.
type ProductRepository interface {
	// Get возвращает продукт или ErrProductNotFound, если его нет.
	Get(id int64) (Product, error)
	// Create сохраняет новый продукт.
	Create(product Product) error
	// Save применяет обновления остатков и счётчиков с учётом optimistic locking.
	Save(product Product) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Если ID равен нулю, хранилище генерирует ключ.
	Create(order Order) (Order, error)
	// Get возвращает заказ вместе со строками или ErrOrderNotFound, если его нет.
	Get(id int64) (Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// OrderLineRepository сохраняет строки заказа.
type OrderLineRepository interface {
	// Add сохраняет новую строку. Возвращает ErrOrderLineExists,
	// если строка для пары (заказ, продукт) уже есть.
	Add(line OrderLine) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// Repositories — набор репозиториев, видимый внутри одной транзакции.
type Repositories struct {
	Customers CustomerRepository
	Products  ProductRepository
	Orders    OrderRepository
	Lines     OrderLineRepository
	Outbox    OutboxRepository
}

// Transactor выполняет fn как одну атомарную транзакцию: либо фиксируются
// все чтения и записи fn, либо ни одна. Хранилище обязано изолировать
// параллельные транзакции так, чтобы две конкурирующие отгрузки одного
// заказа не могли обе увидеть неотгруженное состояние, а проверки остатка
// сериализовались с конкурирующими списаниями и добавлениями строк.
type Transactor interface {
	InTx(ctx context.Context, fn func(r Repositories) error) error
}

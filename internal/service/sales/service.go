// Package sales реализует бизнес-логику обработки заказов: создание заказа
// со скидкой по классификации клиента, добавление строк под ограничениями
// остатков и жизненного цикла, и отгрузку со списанием со склада.
package sales

import (
	"encoding/json"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/metrics"
)

// Имена событий жизненного цикла, попадающих в transactional outbox.
const (
	eventOrderCreated   = "OrderCreated"
	eventOrderShipped   = "OrderShipped"
	eventOrderLineAdded = "OrderLineAdded"

	outboxAggregateOrder = "order"
)

// Options — общие настройки сервисов.
type Options struct {
	Logger  *log.Entry
	Metrics *metrics.SalesMetrics
	Clock   func() time.Time
}

// Option настраивает сервис.
type Option func(*Options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики сервиса.
func WithMetrics(m *metrics.SalesMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithClock задаёт источник времени. Используется в тестах, чтобы
// проверять дату отгрузки детерминированно.
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}

func buildOptions(component string, options []Option) Options {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.New().WithField("component", component)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return opts
}

// enqueueEvent кладёт событие в outbox внутри той же транзакции, что и
// доменные записи: событие фиксируется только вместе с ними.
func enqueueEvent(outbox domain.OutboxRepository, orderID int64, eventType string, payload map[string]any) error {
	if outbox == nil {
		return nil
	}
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["order_id"] = orderID

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := domain.OutboxMessage{
		AggregateType: outboxAggregateOrder,
		AggregateID:   strconv.FormatInt(orderID, 10),
		EventType:     eventType,
		Payload:       data,
	}
	_, err = outbox.Enqueue(msg)
	return err
}

package kafka

import "github.com/vladislavdragonenkov/sales-oms/internal/domain"

// OutboxPublisher адаптирует Producer под контракт публикации outbox:
// воркер отдаёт сообщения outbox, publisher упаковывает их в конверт
// SalesEvent и отправляет в топик событий продаж.
type OutboxPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт publisher поверх producer.
func NewOutboxPublisher(producer *Producer) *OutboxPublisher {
	return &OutboxPublisher{
		producer: producer,
		topic:    TopicSalesEvents,
	}
}

// Publish отправляет сообщение outbox в Kafka. Ключ сообщения — идентификатор
// заказа, так события одного заказа попадают в одну партицию по порядку.
func (p *OutboxPublisher) Publish(msg domain.OutboxMessage) error {
	event := NewSalesEvent(eventTypeFor(msg.EventType), msg.AggregateID, msg.Payload)
	return p.producer.PublishEvent(p.topic, msg.AggregateID, event)
}

var _ domain.OutboxPublisher = (*OutboxPublisher)(nil)

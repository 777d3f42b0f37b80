package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Топики событий продаж.
const (
	TopicSalesEvents = "sales.order.events"
)

// EventType — тип события жизненного цикла заказа.
type EventType string

const (
	EventTypeOrderCreated   EventType = "sales.order.created"
	EventTypeOrderShipped   EventType = "sales.order.shipped"
	EventTypeOrderLineAdded EventType = "sales.order.line_added"
)

// SalesEvent — конверт события для публикации в Kafka.
type SalesEvent struct {
	EventID   string          `json:"event_id"`
	EventType EventType       `json:"event_type"`
	OrderID   string          `json:"order_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewSalesEvent создаёт конверт события с новым идентификатором.
func NewSalesEvent(eventType EventType, orderID string, payload []byte) SalesEvent {
	return SalesEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// eventTypeFor переводит тип события outbox в тип события Kafka.
// Неизвестные типы публикуются как есть, с префиксом домена.
func eventTypeFor(outboxEventType string) EventType {
	switch outboxEventType {
	case "OrderCreated":
		return EventTypeOrderCreated
	case "OrderShipped":
		return EventTypeOrderShipped
	case "OrderLineAdded":
		return EventTypeOrderLineAdded
	default:
		return EventType("sales.order." + outboxEventType)
	}
}

package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/service/outbox"
	"github.com/vladislavdragonenkov/sales-oms/internal/storage/memory"
)

// stubPublisher собирает опубликованные сообщения и может имитировать сбои.
type stubPublisher struct {
	mu        sync.Mutex
	published []domain.OutboxMessage
	failures  int
}

func (p *stubPublisher) Publish(msg domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger.WithField("component", "outbox-test")
}

func enqueue(t *testing.T, store *memory.Store, eventType string) domain.OutboxMessage {
	t.Helper()
	var msg domain.OutboxMessage
	err := store.InTx(context.Background(), func(r domain.Repositories) error {
		var err error
		msg, err = r.Outbox.Enqueue(domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   "99998",
			EventType:     eventType,
			Payload:       []byte(`{"order_id":99998}`),
		})
		return err
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	return msg
}

func TestWorker_PublishesPending(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "OrderCreated")
	enqueue(t, store, "OrderShipped")

	publisher := &stubPublisher{}
	worker := outbox.NewWorker(store.Outbox(), publisher, outbox.WithLogger(testLogger()))

	worker.ProcessOnce(context.Background())

	if publisher.count() != 2 {
		t.Fatalf("expected 2 published messages, got %d", publisher.count())
	}

	stats, err := store.Outbox().Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected empty backlog, got %d", stats.PendingCount)
	}
}

func TestWorker_RetriesTransientFailure(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "OrderLineAdded")

	// Первая попытка падает, вторая проходит.
	publisher := &stubPublisher{failures: 1}
	worker := outbox.NewWorker(store.Outbox(), publisher,
		outbox.WithLogger(testLogger()),
		outbox.WithMaxAttempts(3),
		outbox.WithRetryBaseDelay(time.Millisecond),
	)

	worker.ProcessOnce(context.Background())

	if publisher.count() != 1 {
		t.Fatalf("expected 1 published message, got %d", publisher.count())
	}
}

func TestWorker_MarksFailedAfterExhaustedRetries(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "OrderShipped")

	publisher := &stubPublisher{failures: 100}
	worker := outbox.NewWorker(store.Outbox(), publisher,
		outbox.WithLogger(testLogger()),
		outbox.WithMaxAttempts(2),
		outbox.WithRetryBaseDelay(time.Millisecond),
	)

	worker.ProcessOnce(context.Background())

	if publisher.count() != 0 {
		t.Fatalf("expected no published messages, got %d", publisher.count())
	}

	// Сообщение помечено failed и больше не возвращается как pending.
	pending, err := store.Outbox().PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages, got %d", len(pending))
	}
}

func TestWorker_RunStopsOnContextCancel(t *testing.T) {
	store := memory.NewStore()
	publisher := &stubPublisher{}
	worker := outbox.NewWorker(store.Outbox(), publisher,
		outbox.WithLogger(testLogger()),
		outbox.WithPollInterval(5*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}

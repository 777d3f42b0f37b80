package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	status     string
	attemptCnt int
	createdAt  time.Time
	updatedAt  time.Time
}

// outboxRepository — табличная часть Store для transactional outbox.
// Работает только внутри InTx.
type outboxRepository struct {
	s *Store
}

// Enqueue сохраняет событие со статусом `pending` и возвращает его идентификатор.
func (r *outboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.s.outbox[msg.ID] = outboxRecord{
		msg:       msg,
		status:    outboxStatusPending,
		createdAt: now,
		updatedAt: now,
	}
	r.s.outboxPending = append(r.s.outboxPending, msg.ID)
	return msg, nil
}

// PullPending возвращает до limit сообщений со статусом `pending` в порядке добавления.
func (r *outboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	result := make([]domain.OutboxMessage, 0, limit)
	for _, id := range r.s.outboxPending {
		rec, ok := r.s.outbox[id]
		if !ok || rec.status != outboxStatusPending {
			continue
		}
		result = append(result, rec.msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Stats возвращает размер и возраст backlog для метрик воркера.
func (r *outboxRepository) Stats() (domain.OutboxStats, error) {
	stats := domain.OutboxStats{}
	for _, id := range r.s.outboxPending {
		rec, ok := r.s.outbox[id]
		if !ok || rec.status != outboxStatusPending {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || rec.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = rec.createdAt
		}
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (r *outboxRepository) MarkSent(id string) error {
	return r.markStatus(id, outboxStatusSent)
}

// MarkFailed фиксирует ошибку публикации.
func (r *outboxRepository) MarkFailed(id string) error {
	return r.markStatus(id, outboxStatusFailed)
}

func (r *outboxRepository) markStatus(id, status string) error {
	record, ok := r.s.outbox[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	record.status = status
	record.attemptCnt++
	record.updatedAt = time.Now().UTC()
	r.s.outbox[id] = record
	return nil
}

// lockedOutboxRepository оборачивает outboxRepository мьютексом Store,
// чтобы воркер публикации мог работать параллельно с транзакциями сервисов.
type lockedOutboxRepository struct {
	s *Store
}

func (r *lockedOutboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&outboxRepository{s: r.s}).Enqueue(msg)
}

func (r *lockedOutboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&outboxRepository{s: r.s}).PullPending(limit)
}

func (r *lockedOutboxRepository) Stats() (domain.OutboxStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&outboxRepository{s: r.s}).Stats()
}

func (r *lockedOutboxRepository) MarkSent(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&outboxRepository{s: r.s}).MarkSent(id)
}

func (r *lockedOutboxRepository) MarkFailed(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&outboxRepository{s: r.s}).MarkFailed(id)
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
var _ domain.OutboxRepository = (*lockedOutboxRepository)(nil)

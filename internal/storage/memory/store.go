package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
)

// Store — in-memory реализация транзакционного хранилища для локальной
// разработки и тестов. Транзакции сериализуются одним мьютексом: пока
// выполняется InTx, другие транзакции и прямые обращения ждут, поэтому две
// конкурирующие отгрузки одного заказа не могут обе пройти проверку
// "ещё не отгружен".
type Store struct {
	mu sync.Mutex

	customers map[string]domain.Customer
	products  map[int64]domain.Product
	orders    map[int64]domain.Order
	nextOrder int64

	outbox        map[string]outboxRecord
	outboxPending []string
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		customers: make(map[string]domain.Customer),
		products:  make(map[int64]domain.Product),
		orders:    make(map[int64]domain.Order),
		nextOrder: 100000,
		outbox:    make(map[string]outboxRecord),
	}
}

// snapshot фиксирует состояние всех таблиц для отката транзакции.
type snapshot struct {
	customers     map[string]domain.Customer
	products      map[int64]domain.Product
	orders        map[int64]domain.Order
	nextOrder     int64
	outbox        map[string]outboxRecord
	outboxPending []string
}

func (s *Store) takeSnapshot() snapshot {
	snap := snapshot{
		customers:     make(map[string]domain.Customer, len(s.customers)),
		products:      make(map[int64]domain.Product, len(s.products)),
		orders:        make(map[int64]domain.Order, len(s.orders)),
		nextOrder:     s.nextOrder,
		outbox:        make(map[string]outboxRecord, len(s.outbox)),
		outboxPending: append([]string(nil), s.outboxPending...),
	}
	for id, c := range s.customers {
		snap.customers[id] = c
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	for id, rec := range s.outbox {
		snap.outbox[id] = rec
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.customers = snap.customers
	s.products = snap.products
	s.orders = snap.orders
	s.nextOrder = snap.nextOrder
	s.outbox = snap.outbox
	s.outboxPending = snap.outboxPending
}

// copyOrder возвращает копию заказа с собственным срезом строк,
// чтобы избежать непредсказуемых мутаций извне.
func copyOrder(o domain.Order) domain.Order {
	cp := o
	if o.ShippedAt != nil {
		shipped := *o.ShippedAt
		cp.ShippedAt = &shipped
	}
	cp.Lines = append([]domain.OrderLine(nil), o.Lines...)
	return cp
}

// InTx выполняет fn как одну атомарную транзакцию. При ошибке fn все
// изменения откатываются к снимку, сделанному на входе.
func (s *Store) InTx(ctx context.Context, fn func(r domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.takeSnapshot()
	repos := domain.Repositories{
		Customers: &customerRepository{s: s},
		Products:  &productRepository{s: s},
		Orders:    &orderRepository{s: s},
		Lines:     &lineRepository{s: s},
		Outbox:    &outboxRepository{s: s},
	}

	if err := fn(repos); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Outbox возвращает потокобезопасный взгляд на outbox для воркера публикации.
func (s *Store) Outbox() domain.OutboxRepository {
	return &lockedOutboxRepository{s: s}
}

var _ domain.Transactor = (*Store)(nil)

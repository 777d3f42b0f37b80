package memory

import "github.com/vladislavdragonenkov/sales-oms/internal/domain"

// orderRepository — табличная часть Store для заказов и их строк.
type orderRepository struct {
	s *Store
}

// Create сохраняет новый заказ, генерируя ключ, если он не задан.
func (r *orderRepository) Create(order domain.Order) (domain.Order, error) {
	if order.ID == 0 {
		r.s.nextOrder++
		order.ID = r.s.nextOrder
	} else if order.ID > r.s.nextOrder {
		r.s.nextOrder = order.ID
	}

	if _, exists := r.s.orders[order.ID]; exists {
		return domain.Order{}, domain.ErrAlreadyExists
	}

	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}
	r.s.orders[order.ID] = copyOrder(order)
	return order, nil
}

// Get возвращает копию заказа, чтобы избежать мутаций извне.
func (r *orderRepository) Get(id int64) (domain.Order, error) {
	order, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *orderRepository) Save(order domain.Order) error {
	current, ok := r.s.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	order.Version++
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

// lineRepository добавляет строки в заказы того же Store.
type lineRepository struct {
	s *Store
}

// Add сохраняет строку, соблюдая составную идентичность (заказ, продукт).
func (r *lineRepository) Add(line domain.OrderLine) error {
	order, ok := r.s.orders[line.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for _, existing := range order.Lines {
		if existing.ProductID == line.ProductID {
			return domain.ErrOrderLineExists
		}
	}
	order.Lines = append(order.Lines, line)
	r.s.orders[line.OrderID] = order
	return nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
var _ domain.OrderLineRepository = (*lineRepository)(nil)

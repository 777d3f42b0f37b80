package sales

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/metrics"
)

// OrderService создаёт заказы и регистрирует их отгрузку.
// Каждая операция выполняется как одна атомарная транзакция хранилища.
type OrderService struct {
	store   domain.Transactor
	logger  *log.Entry
	metrics *metrics.SalesMetrics
	now     func() time.Time
}

// NewOrderService конструирует сервис поверх транзакционного хранилища.
func NewOrderService(store domain.Transactor, options ...Option) *OrderService {
	opts := buildOptions("order-service", options)
	return &OrderService{
		store:   store,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Clock,
	}
}

// CreateOrder создаёт новый заказ для клиента: копирует адрес клиента в
// независимый адрес доставки и фиксирует ставку скидки по классификации
// клиента. Дата отгрузки остаётся пустой. Возвращает ErrCustomerNotFound,
// если клиента нет.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string) (domain.Order, error) {
	start := s.now()
	var created domain.Order

	err := s.store.InTx(ctx, func(r domain.Repositories) error {
		customer, err := r.Customers.Get(customerID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		order := domain.Order{
			CustomerID:   customer.ID,
			DiscountRate: domain.DiscountFor(customer),
			// Адрес копируется по значению: дальнейшие изменения адреса
			// клиента заказ не затрагивают.
			ShipTo:    customer.Address,
			CreatedAt: now,
			UpdatedAt: now,
		}

		created, err = r.Orders.Create(order)
		if err != nil {
			return err
		}

		if err := enqueueEvent(r.Outbox, created.ID, eventOrderCreated, map[string]any{
			"customer_id":   created.CustomerID,
			"discount_rate": created.DiscountRate,
		}); err != nil {
			return err
		}
		s.recordOutboxEvent()
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customerID).Warn("create order failed")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
		s.metrics.RecordOperationDuration("create_order", s.now().Sub(start))
	}
	s.logger.WithFields(log.Fields{
		"order_id":      created.ID,
		"customer_id":   created.CustomerID,
		"discount_rate": created.DiscountRate,
	}).Info("order created")

	return created, nil
}

// RecordShipment регистрирует отгрузку заказа: ставит дату отгрузки и
// списывает со склада количество каждой строки. Остаток может уйти в минус —
// это backorder. Повторная отгрузка отклоняется с ErrOrderAlreadyShipped,
// повторного списания не происходит. Вся операция атомарна.
func (s *OrderService) RecordShipment(ctx context.Context, orderID int64) (domain.Order, error) {
	start := s.now()
	var shipped domain.Order
	var unitsShipped int32
	var backordered int32

	err := s.store.InTx(ctx, func(r domain.Repositories) error {
		order, err := r.Orders.Get(orderID)
		if err != nil {
			return err
		}
		if order.Shipped() {
			return domain.ErrOrderAlreadyShipped
		}

		now := s.now().UTC()
		order.ShippedAt = &now
		order.UpdatedAt = now

		unitsShipped = 0
		backordered = 0
		for _, line := range order.Lines {
			product, err := r.Products.Get(line.ProductID)
			if err != nil {
				return err
			}
			product.UnitsInStock -= line.Quantity
			product.UpdatedAt = now
			if err := r.Products.Save(product); err != nil {
				return err
			}
			unitsShipped += line.Quantity
			if product.UnitsInStock < 0 {
				backordered += -product.UnitsInStock
			}
		}

		if err := r.Orders.Save(order); err != nil {
			return err
		}
		shipped = order

		if err := enqueueEvent(r.Outbox, order.ID, eventOrderShipped, map[string]any{
			"shipped_at": now.Format(time.RFC3339Nano),
			"lines":      len(order.Lines),
			"units":      unitsShipped,
		}); err != nil {
			return err
		}
		s.recordOutboxEvent()
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("record shipment failed")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderShipped()
		s.metrics.RecordUnitsShipped(unitsShipped)
		s.metrics.SetBackorderUnits(float64(backordered))
		s.metrics.RecordOperationDuration("record_shipment", s.now().Sub(start))
	}
	s.logger.WithFields(log.Fields{
		"order_id": shipped.ID,
		"lines":    len(shipped.Lines),
		"units":    unitsShipped,
	}).Info("order shipped")

	return shipped, nil
}

// GetOrder возвращает заказ со строками.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	var order domain.Order
	err := s.store.InTx(ctx, func(r domain.Repositories) error {
		var err error
		order, err = r.Orders.Get(orderID)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) recordOutboxEvent() {
	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

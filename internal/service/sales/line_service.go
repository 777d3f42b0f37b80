package sales

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/metrics"
)

// Причины отклонения строки для метрик.
const (
	rejectReasonQuantity  = "quantity_not_positive"
	rejectReasonNotFound  = "not_found"
	rejectReasonShipped   = "order_already_shipped"
	rejectReasonStock     = "insufficient_stock"
	rejectReasonDuplicate = "duplicate_line"
)

// LineService добавляет строки в существующие, ещё не отгруженные заказы.
type LineService struct {
	store   domain.Transactor
	logger  *log.Entry
	metrics *metrics.SalesMetrics
	now     func() time.Time
}

// NewLineService конструирует сервис поверх транзакционного хранилища.
func NewLineService(store domain.Transactor, options ...Option) *LineService {
	opts := buildOptions("line-service", options)
	return &LineService{
		store:   store,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Clock,
	}
}

// AddLine добавляет строку заказа с заданным количеством. Проверки идут
// в фиксированном порядке, каждая прерывает операцию:
//  1. количество строго положительно — проверяется до любых обращений к хранилищу;
//  2. заказ существует;
//  3. продукт существует;
//  4. заказ ещё не отгружен;
//  5. остатка продукта хватает на запрошенное количество.
//
// При успехе строка сохраняется и накопительный счётчик заказанных единиц
// продукта увеличивается на количество — в одной транзакции со строкой.
// Остаток склада при добавлении строки не списывается, только при отгрузке.
func (s *LineService) AddLine(ctx context.Context, orderID, productID int64, quantity int32) (domain.OrderLine, error) {
	if quantity <= 0 {
		s.recordRejected(rejectReasonQuantity)
		return domain.OrderLine{}, domain.ErrQuantityNotPositive
	}

	start := s.now()
	var line domain.OrderLine

	err := s.store.InTx(ctx, func(r domain.Repositories) error {
		order, err := r.Orders.Get(orderID)
		if err != nil {
			return err
		}
		product, err := r.Products.Get(productID)
		if err != nil {
			return err
		}
		if order.Shipped() {
			return domain.ErrOrderAlreadyShipped
		}
		if product.UnitsInStock < quantity {
			return domain.ErrInsufficientStock
		}

		now := s.now().UTC()
		line = domain.OrderLine{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			CreatedAt: now,
		}
		if err := r.Lines.Add(line); err != nil {
			return err
		}

		product.UnitsOnOrder += quantity
		product.UpdatedAt = now
		if err := r.Products.Save(product); err != nil {
			return err
		}

		if err := enqueueEvent(r.Outbox, order.ID, eventOrderLineAdded, map[string]any{
			"product_id": product.ID,
			"quantity":   quantity,
		}); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.RecordOutboxEvent()
		}
		return nil
	})
	if err != nil {
		s.recordRejected(rejectReason(err))
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   orderID,
			"product_id": productID,
			"quantity":   quantity,
		}).Warn("add line failed")
		return domain.OrderLine{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordLineAdded()
		s.metrics.RecordOperationDuration("add_line", s.now().Sub(start))
	}
	s.logger.WithFields(log.Fields{
		"order_id":   line.OrderID,
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	}).Info("order line added")

	return line, nil
}

func (s *LineService) recordRejected(reason string) {
	if s.metrics != nil {
		s.metrics.RecordLineRejected(reason)
	}
}

func rejectReason(err error) string {
	switch {
	case domain.IsNotFound(err):
		return rejectReasonNotFound
	case errors.Is(err, domain.ErrOrderAlreadyShipped):
		return rejectReasonShipped
	case errors.Is(err, domain.ErrInsufficientStock):
		return rejectReasonStock
	case errors.Is(err, domain.ErrOrderLineExists):
		return rejectReasonDuplicate
	default:
		return "internal"
	}
}

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics содержит метрики операций обработки заказов.
type SalesMetrics struct {
	// Счётчики операций
	ordersCreated  prometheus.Counter
	ordersShipped  prometheus.Counter
	linesAdded     prometheus.Counter
	linesRejected  *prometheus.CounterVec
	unitsShipped   prometheus.Counter
	backorderUnits prometheus.Gauge

	// Гистограмма времени выполнения операций
	opDuration *prometheus.HistogramVec

	// Счётчик событий outbox
	outboxEvents prometheus.Counter
}

// NewSalesMetrics создаёт метрики в default-регистре.
func NewSalesMetrics() *SalesMetrics {
	return newSalesMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newSalesMetricsWithRegisterer(registerer prometheus.Registerer) *SalesMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SalesMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersShipped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_orders_shipped_total",
			Help: "Total number of orders shipped",
		}),
		linesAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_order_lines_added_total",
			Help: "Total number of order lines added",
		}),
		linesRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_order_lines_rejected_total",
			Help: "Total number of rejected line additions grouped by reason",
		}, []string{"reason"}),
		unitsShipped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_units_shipped_total",
			Help: "Total number of product units decremented by shipments",
		}),
		backorderUnits: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "sales_backorder_units",
			Help: "Units currently on backorder (negative stock) across shipped products",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "sales_operation_duration_seconds",
			Help:    "Duration of sales service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_outbox_events_total",
			Help: "Total number of outbox events enqueued by sales operations",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *SalesMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderShipped увеличивает счётчик отгруженных заказов.
func (m *SalesMetrics) RecordOrderShipped() {
	m.ordersShipped.Inc()
}

// RecordLineAdded увеличивает счётчик добавленных строк.
func (m *SalesMetrics) RecordLineAdded() {
	m.linesAdded.Inc()
}

// RecordLineRejected увеличивает счётчик отклонённых строк с причиной.
func (m *SalesMetrics) RecordLineRejected(reason string) {
	m.linesRejected.WithLabelValues(reason).Inc()
}

// RecordUnitsShipped фиксирует количество списанных со склада единиц.
func (m *SalesMetrics) RecordUnitsShipped(units int32) {
	if units > 0 {
		m.unitsShipped.Add(float64(units))
	}
}

// SetBackorderUnits выставляет gauge единиц в backorder.
func (m *SalesMetrics) SetBackorderUnits(units float64) {
	m.backorderUnits.Set(units)
}

// RecordOperationDuration записывает время выполнения операции сервиса.
func (m *SalesMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.opDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *SalesMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

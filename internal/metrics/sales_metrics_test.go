package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewSalesMetrics_Collectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newSalesMetricsWithRegisterer(reg)

	if metrics == nil {
		t.Fatal("newSalesMetricsWithRegisterer should not return nil")
	}
	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if metrics.ordersShipped == nil {
		t.Error("ordersShipped counter should not be nil")
	}
	if metrics.linesAdded == nil {
		t.Error("linesAdded counter should not be nil")
	}
	if metrics.linesRejected == nil {
		t.Error("linesRejected counter vec should not be nil")
	}
	if metrics.opDuration == nil {
		t.Error("opDuration histogram vec should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
}

func TestSalesMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newSalesMetricsWithRegisterer(reg)

	metrics.RecordOrderCreated()
	metrics.RecordOrderCreated()
	metrics.RecordOrderShipped()
	metrics.RecordLineAdded()
	metrics.RecordLineRejected("insufficient_stock")
	metrics.RecordUnitsShipped(100)
	metrics.SetBackorderUnits(83)
	metrics.RecordOperationDuration("create_order", 5*time.Millisecond)
	metrics.RecordOutboxEvent()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	got := map[string]float64{}
	for _, family := range families {
		switch family.GetName() {
		case "sales_orders_created_total",
			"sales_orders_shipped_total",
			"sales_order_lines_added_total",
			"sales_units_shipped_total",
			"sales_outbox_events_total":
			got[family.GetName()] = family.GetMetric()[0].GetCounter().GetValue()
		case "sales_backorder_units":
			got[family.GetName()] = family.GetMetric()[0].GetGauge().GetValue()
		}
	}

	expected := map[string]float64{
		"sales_orders_created_total":    2,
		"sales_orders_shipped_total":    1,
		"sales_order_lines_added_total": 1,
		"sales_units_shipped_total":     100,
		"sales_outbox_events_total":     1,
		"sales_backorder_units":         83,
	}
	for name, want := range expected {
		if got[name] != want {
			t.Errorf("metric %s: expected %v, got %v", name, want, got[name])
		}
	}
}

func TestSalesMetrics_RejectedReasonLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newSalesMetricsWithRegisterer(reg)

	metrics.RecordLineRejected("quantity_not_positive")
	metrics.RecordLineRejected("quantity_not_positive")
	metrics.RecordLineRejected("order_already_shipped")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	var rejected *dto.MetricFamily
	for _, family := range families {
		if family.GetName() == "sales_order_lines_rejected_total" {
			rejected = family
		}
	}
	if rejected == nil {
		t.Fatal("sales_order_lines_rejected_total not gathered")
	}

	byReason := map[string]float64{}
	for _, metric := range rejected.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "reason" {
				byReason[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}

	if byReason["quantity_not_positive"] != 2 {
		t.Errorf("expected 2 quantity rejections, got %v", byReason["quantity_not_positive"])
	}
	if byReason["order_already_shipped"] != 1 {
		t.Errorf("expected 1 shipped rejection, got %v", byReason["order_already_shipped"])
	}
}

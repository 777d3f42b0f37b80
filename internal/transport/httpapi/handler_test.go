package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/sales-oms/internal/fixtures"
	"github.com/vladislavdragonenkov/sales-oms/internal/service/sales"
	"github.com/vladislavdragonenkov/sales-oms/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("component", "httpapi-test")

	store := memory.NewStore()
	require.NoError(t, fixtures.Seed(context.Background(), store))

	orders := sales.NewOrderService(store, sales.WithLogger(entry))
	lines := sales.NewLineService(store, sales.WithLogger(entry))
	metrics := newServerMetricsWithRegisterer(prometheus.NewRegistry())

	mux := http.NewServeMux()
	NewHandler(orders, lines, entry, metrics).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHandler_CreateOrder(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", createOrderRequest{CustomerID: fixtures.LargeCustomerID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order orderPayload
	decodeBody(t, resp, &order)
	require.NotZero(t, order.ID)
	require.Equal(t, fixtures.LargeCustomerID, order.CustomerID)
	require.InDelta(t, 0.15, order.DiscountRate, 1e-9)
	require.Nil(t, order.ShippedAt)
}

func TestHandler_CreateOrderUnknownCustomer(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", createOrderRequest{CustomerID: "NOPE"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHandler_CreateOrderValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", createOrderRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Post(srv.URL+"/orders", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHandler_GetOrder(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/orders/%d", srv.URL, fixtures.UnshippedOrderID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order orderPayload
	decodeBody(t, resp, &order)
	require.Equal(t, int64(fixtures.UnshippedOrderID), order.ID)
	require.Len(t, order.Lines, 1)
	require.Equal(t, int32(fixtures.UnshippedOrderQty), order.Lines[0].Quantity)
}

func TestHandler_GetOrderErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/orders/424242")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/orders/abc")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHandler_AddLine(t *testing.T) {
	srv := newTestServer(t)

	created := createOrderViaAPI(t, srv, fixtures.SmallCustomerID)

	resp := postJSON(t, fmt.Sprintf("%s/orders/%d/lines", srv.URL, created.ID), addLineRequest{
		ProductID: fixtures.ProductRef,
		Quantity:  5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var line orderLinePayload
	decodeBody(t, resp, &line)
	require.Equal(t, int64(fixtures.ProductRef), line.ProductID)
	require.Equal(t, int32(5), line.Quantity)
}

func TestHandler_AddLineRejections(t *testing.T) {
	srv := newTestServer(t)

	created := createOrderViaAPI(t, srv, fixtures.SmallCustomerID)
	linesURL := fmt.Sprintf("%s/orders/%d/lines", srv.URL, created.ID)

	// Неположительное количество — 400.
	resp := postJSON(t, linesURL, addLineRequest{ProductID: fixtures.ProductRef, Quantity: 0})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Превышение остатка — 409.
	resp = postJSON(t, linesURL, addLineRequest{ProductID: fixtures.ProductRef, Quantity: 1000})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Несуществующий продукт — 404.
	resp = postJSON(t, linesURL, addLineRequest{ProductID: 777777, Quantity: 1})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHandler_RecordShipment(t *testing.T) {
	srv := newTestServer(t)

	shipURL := fmt.Sprintf("%s/orders/%d/shipment", srv.URL, fixtures.UnshippedOrderID)

	resp := postJSON(t, shipURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order orderPayload
	decodeBody(t, resp, &order)
	require.NotNil(t, order.ShippedAt)

	// Повторная отгрузка — 409.
	resp = postJSON(t, shipURL, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestHandler_AddLineAfterShipmentConflicts(t *testing.T) {
	srv := newTestServer(t)

	shipURL := fmt.Sprintf("%s/orders/%d/shipment", srv.URL, fixtures.UnshippedOrderID)
	resp := postJSON(t, shipURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	linesURL := fmt.Sprintf("%s/orders/%d/lines", srv.URL, fixtures.UnshippedOrderID)
	resp = postJSON(t, linesURL, addLineRequest{ProductID: fixtures.ProductRef, Quantity: 1})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func createOrderViaAPI(t *testing.T, srv *httptest.Server, customerID string) orderPayload {
	t.Helper()

	resp := postJSON(t, srv.URL+"/orders", createOrderRequest{CustomerID: customerID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order orderPayload
	decodeBody(t, resp, &order)
	return order
}

// Package httpapi — HTTP JSON-фасад над сервисами заказов.
// Транспорт тонкий: валидация формы запроса, вызов сервиса,
// маппинг доменных ошибок на HTTP-статусы.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/service/sales"
)

// Handler связывает HTTP-маршруты с сервисами workflow.
type Handler struct {
	orders  *sales.OrderService
	lines   *sales.LineService
	logger  *log.Entry
	metrics *ServerMetrics
}

// NewHandler создаёт HTTP-обработчик поверх сервисов заказов и строк.
func NewHandler(orders *sales.OrderService, lines *sales.LineService, logger *log.Entry, metrics *ServerMetrics) *Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Handler{
		orders:  orders,
		lines:   lines,
		logger:  logger,
		metrics: metrics,
	}
}

// Register навешивает маршруты API на mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.instrumented("create_order", h.handleCreateOrder))
	mux.HandleFunc("GET /orders/{id}", h.instrumented("get_order", h.handleGetOrder))
	mux.HandleFunc("POST /orders/{id}/lines", h.instrumented("add_line", h.handleAddLine))
	mux.HandleFunc("POST /orders/{id}/shipment", h.instrumented("record_shipment", h.handleRecordShipment))
}

func (h *Handler) instrumented(name string, fn http.HandlerFunc) http.HandlerFunc {
	if h.metrics == nil {
		return fn
	}
	return h.metrics.instrument(name, fn)
}

type createOrderRequest struct {
	CustomerID string `json:"customer_id"`
}

type addLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type addressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type orderLinePayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type orderPayload struct {
	ID           int64              `json:"id"`
	CustomerID   string             `json:"customer_id"`
	DiscountRate float64            `json:"discount_rate"`
	ShippedAt    *time.Time         `json:"shipped_at,omitempty"`
	ShipTo       addressPayload     `json:"ship_to"`
	Lines        []orderLinePayload `json:"lines"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, domain.ErrCustomerRequired.Error())
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req.CustomerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderPayload(order))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(order))
}

func (h *Handler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	line, err := h.lines.AddLine(r.Context(), orderID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderLinePayload{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	})
}

func (h *Handler) handleRecordShipment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	order, err := h.orders.RecordShipment(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(order))
}

func orderIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "order id must be an integer")
		return 0, false
	}
	return id, true
}

// writeDomainError переводит доменную ошибку в HTTP-статус:
// отсутствие сущности — 404, ошибка валидации — 400,
// нарушение бизнес-правила — 409, остальное — 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuantityNotPositive):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsBusinessRuleViolation(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.WithError(err).Error("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toOrderPayload(order domain.Order) orderPayload {
	lines := make([]orderLinePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLinePayload{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return orderPayload{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		DiscountRate: order.DiscountRate,
		ShippedAt:    order.ShippedAt,
		ShipTo: addressPayload{
			Street:     order.ShipTo.Street,
			City:       order.ShipTo.City,
			PostalCode: order.ShipTo.PostalCode,
			Country:    order.ShipTo.Country,
		},
		Lines: lines,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

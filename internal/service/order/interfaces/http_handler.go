// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/order/application"
	"stockpile/internal/service/order/domain"
)

const serviceName = "order-service"

// OrderHandler 封装订单服务的 HTTP 处理器。
type OrderHandler struct {
	service *application.OrderService
}

func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/orders/create", h.createOrder)
	mux.HandleFunc("/api/v1/orders/get", h.getOrder)
	mux.HandleFunc("/api/v1/orders/customer", h.getByCustomer)
	mux.HandleFunc("/api/v1/orders/cancel", h.cancelOrder)
	mux.HandleFunc("/api/v1/orders/status", h.updateStatus)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "order-service.CreateOrder")
	defer span.End()

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("customer.id", req.CustomerID),
		attribute.Int("order.items", len(req.Items)),
	)

	resp, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		span.RecordError(err)
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	resp, err := h.service.GetOrderByNumber(ctx, r.URL.Query().Get("orderNumber"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) getByCustomer(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	resp, err := h.service.GetOrdersByCustomer(ctx, r.URL.Query().Get("customerId"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "order-service.CancelOrder")
	defer span.End()

	orderNumber := r.URL.Query().Get("orderNumber")
	span.SetAttributes(attribute.String("order.number", orderNumber))

	resp, err := h.service.CancelOrder(ctx, orderNumber)
	if err != nil {
		span.RecordError(err)
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "order-service.UpdateStatus")
	defer span.End()

	orderNumber := r.URL.Query().Get("orderNumber")
	status := domain.Status(r.URL.Query().Get("status"))

	resp, err := h.service.UpdateStatus(ctx, orderNumber, status)
	if err != nil {
		span.RecordError(err)
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeOrderError 把领域错误映射为 HTTP 状态码。
func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInsufficientInventory):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNotCancellable), errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

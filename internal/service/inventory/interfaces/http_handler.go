// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/inventory/application"
	"stockpile/internal/service/inventory/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "inventory-service"

// StockHandler 封装库存服务的 HTTP 处理器。
type StockHandler struct {
	service *application.StockService
}

// NewStockHandler 创建处理器实例。
func NewStockHandler(service *application.StockService) *StockHandler {
	return &StockHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *StockHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/inventory/create", h.createStock)
	mux.HandleFunc("/api/v1/inventory/get", h.getBySKU)
	mux.HandleFunc("/api/v1/inventory/product", h.getAvailability)
	mux.HandleFunc("/api/v1/inventory/warehouse", h.getByWarehouse)
	mux.HandleFunc("/api/v1/inventory/low-stock", h.getLowStock)
	mux.HandleFunc("/api/v1/inventory/quantity", h.updateQuantity)
	mux.HandleFunc("/api/v1/inventory/check", h.checkAvailability)
	mux.HandleFunc("/api/v1/inventory/reserve", h.reserve)
	mux.HandleFunc("/api/v1/inventory/release", h.release)
	mux.HandleFunc("/api/v1/inventory/consume", h.consume)
}

func (h *StockHandler) createStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.CreateStock")
	defer span.End()

	var req application.CreateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CreateStock(ctx, &req)
	if err != nil {
		writeStockError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *StockHandler) getBySKU(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	resp, err := h.service.GetBySKU(ctx, r.URL.Query().Get("sku"))
	if err != nil {
		writeStockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StockHandler) getAvailability(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.GetAvailability")
	defer span.End()

	productID := r.URL.Query().Get("productId")
	span.SetAttributes(attribute.String("product.id", productID))

	resp, err := h.service.GetAvailability(ctx, productID)
	if err != nil {
		writeStockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StockHandler) getByWarehouse(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	resp, err := h.service.GetByWarehouse(ctx, r.URL.Query().Get("warehouseId"))
	if err != nil {
		writeStockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StockHandler) getLowStock(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	resp, err := h.service.GetLowStock(ctx)
	if err != nil {
		writeStockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StockHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.UpdateQuantity")
	defer span.End()

	sku := r.URL.Query().Get("sku")
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	resp, svcErr := h.service.UpdateQuantity(ctx, sku, quantity)
	if svcErr != nil {
		writeStockError(w, svcErr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StockHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	sku := r.URL.Query().Get("sku")
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	available, svcErr := h.service.CheckAvailability(ctx, sku, quantity)
	if svcErr != nil {
		writeStockError(w, svcErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *StockHandler) reserve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.Reserve")
	defer span.End()

	productID := r.URL.Query().Get("productId")
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity <= 0 {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.Int("stock.qty", quantity),
		attribute.String("order.id", r.URL.Query().Get("orderId")),
	)

	record, svcErr := h.service.GetAvailability(ctx, productID)
	if svcErr != nil {
		writeStockError(w, svcErr)
		return
	}

	if svcErr := h.service.Reserve(ctx, record.SKU, quantity); svcErr != nil {
		if errors.Is(svcErr, domain.ErrInsufficientStock) {
			writeJSON(w, http.StatusConflict, map[string]bool{"reserved": false})
			return
		}
		writeStockError(w, svcErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reserved": true})
}

func (h *StockHandler) release(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.Release")
	defer span.End()

	productID := r.URL.Query().Get("productId")
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity <= 0 {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	record, svcErr := h.service.GetAvailability(ctx, productID)
	if svcErr != nil {
		writeStockError(w, svcErr)
		return
	}

	if svcErr := h.service.Release(ctx, record.SKU, quantity); svcErr != nil {
		writeStockError(w, svcErr)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *StockHandler) consume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "inventory-service.Consume")
	defer span.End()

	sku := r.URL.Query().Get("sku")
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity <= 0 {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	if svcErr := h.service.Consume(ctx, sku, quantity); svcErr != nil {
		writeStockError(w, svcErr)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// writeStockError 把领域错误映射为 HTTP 状态码。
func writeStockError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrStockNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInsufficientStock):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrStockExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrLockTimeout):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidStock):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Logger.Error().Err(err).Msg("unexpected error on inventory endpoint")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

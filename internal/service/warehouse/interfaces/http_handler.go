// internal/service/warehouse/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/warehouse/application"
	"stockpile/internal/service/warehouse/domain"
)

const serviceName = "warehouse-service"

// WarehouseHandler 封装仓库服务的 HTTP 处理器。
type WarehouseHandler struct {
	service *application.WarehouseService
}

func NewWarehouseHandler(service *application.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{service: service}
}

func (h *WarehouseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/warehouses/create", h.create)
	mux.HandleFunc("/api/v1/warehouses/get", h.get)
	mux.HandleFunc("/api/v1/warehouses/list", h.list)
	mux.HandleFunc("/api/v1/warehouses/update", h.update)
	mux.HandleFunc("/api/v1/warehouses/deactivate", h.deactivate)
}

func (h *WarehouseHandler) create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "warehouse-service.Create")
	defer span.End()

	var req application.CreateWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.service.CreateWarehouse(ctx, &req)
	if err != nil {
		writeWarehouseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *WarehouseHandler) get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetByCode(extract(r), r.URL.Query().Get("code"))
	if err != nil {
		writeWarehouseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WarehouseHandler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	resp, err := h.service.List(extract(r), activeOnly)
	if err != nil {
		writeWarehouseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WarehouseHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "warehouse-service.Update")
	defer span.End()

	var req application.CreateWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.service.UpdateWarehouse(ctx, r.URL.Query().Get("code"), &req)
	if err != nil {
		writeWarehouseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WarehouseHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "warehouse-service.Deactivate")
	defer span.End()

	resp, err := h.service.DeactivateWarehouse(ctx, r.URL.Query().Get("code"))
	if err != nil {
		writeWarehouseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

// writeWarehouseError 把领域错误映射为 HTTP 状态码。
func writeWarehouseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWarehouseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrWarehouseExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidWarehouse):
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

// internal/service/warehouse/application/service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/warehouse/domain"
)

// CreateWarehouseRequest 是建仓接口的入参。
type CreateWarehouseRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Capacity int    `json:"capacity"`
}

// WarehouseResponse 是对外返回的仓库视图。
type WarehouseResponse struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Capacity  int       `json:"capacity"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toWarehouseResponse(w *domain.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		City:      w.City,
		Capacity:  w.Capacity,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// WarehouseService 仓库主数据的应用服务。
type WarehouseService struct {
	repo      domain.WarehouseRepository
	publisher domain.EventPublisher
	tracer    trace.Tracer
}

func NewWarehouseService(repo domain.WarehouseRepository, publisher domain.EventPublisher, tracer trace.Tracer) *WarehouseService {
	return &WarehouseService{repo: repo, publisher: publisher, tracer: tracer}
}

func (s *WarehouseService) publish(ctx context.Context, warehouse *domain.Warehouse, eventType string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishWarehouseEvent(ctx, domain.NewWarehouseEvent(warehouse, eventType))
}

func (s *WarehouseService) CreateWarehouse(ctx context.Context, req *CreateWarehouseRequest) (*WarehouseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WarehouseService.CreateWarehouse")
	defer span.End()
	span.SetAttributes(attribute.String("warehouse.code", req.Code))

	warehouse, err := domain.NewWarehouse(req.Code, req.Name, req.Address, req.City, req.Capacity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, warehouse); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.publish(ctx, warehouse, domain.EventWarehouseCreated)
	logger.Ctx(ctx).Info().Str("code", warehouse.Code).Msg("Warehouse created")
	return toWarehouseResponse(warehouse), nil
}

func (s *WarehouseService) GetByCode(ctx context.Context, code string) (*WarehouseResponse, error) {
	warehouse, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

func (s *WarehouseService) List(ctx context.Context, activeOnly bool) ([]*WarehouseResponse, error) {
	warehouses, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*WarehouseResponse, 0, len(warehouses))
	for _, warehouse := range warehouses {
		out = append(out, toWarehouseResponse(warehouse))
	}
	return out, nil
}

// UpdateWarehouse 更新仓库资料，code 不可变。
func (s *WarehouseService) UpdateWarehouse(ctx context.Context, code string, req *CreateWarehouseRequest) (*WarehouseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WarehouseService.UpdateWarehouse")
	defer span.End()

	warehouse, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		warehouse.Name = req.Name
	}
	if req.Address != "" {
		warehouse.Address = req.Address
	}
	if req.City != "" {
		warehouse.City = req.City
	}
	if req.Capacity > 0 {
		warehouse.Capacity = req.Capacity
	}
	warehouse.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, warehouse); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.publish(ctx, warehouse, domain.EventWarehouseUpdated)
	return toWarehouseResponse(warehouse), nil
}

// DeactivateWarehouse 停用仓库。
func (s *WarehouseService) DeactivateWarehouse(ctx context.Context, code string) (*WarehouseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WarehouseService.DeactivateWarehouse")
	defer span.End()

	warehouse, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	warehouse.Deactivate()
	if err := s.repo.Update(ctx, warehouse); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.publish(ctx, warehouse, domain.EventWarehouseDeactivated)
	logger.Ctx(ctx).Info().Str("code", code).Msg("Warehouse deactivated")
	return toWarehouseResponse(warehouse), nil
}

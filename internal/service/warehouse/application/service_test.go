package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockpile/internal/service/warehouse/domain"
)

type fakeRepo struct {
	mu         sync.Mutex
	warehouses map[string]*domain.Warehouse
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{warehouses: make(map[string]*domain.Warehouse)}
}

func (r *fakeRepo) Create(_ context.Context, warehouse *domain.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warehouses[warehouse.Code]; ok {
		return domain.ErrWarehouseExists
	}
	clone := *warehouse
	r.warehouses[warehouse.Code] = &clone
	return nil
}

func (r *fakeRepo) Update(_ context.Context, warehouse *domain.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warehouses[warehouse.Code]; !ok {
		return domain.ErrWarehouseNotFound
	}
	clone := *warehouse
	r.warehouses[warehouse.Code] = &clone
	return nil
}

func (r *fakeRepo) FindByCode(_ context.Context, code string) (*domain.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	warehouse, ok := r.warehouses[code]
	if !ok {
		return nil, domain.ErrWarehouseNotFound
	}
	clone := *warehouse
	return &clone, nil
}

func (r *fakeRepo) FindAll(_ context.Context, activeOnly bool) ([]*domain.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Warehouse
	for _, warehouse := range r.warehouses {
		if activeOnly && !warehouse.Active {
			continue
		}
		clone := *warehouse
		out = append(out, &clone)
	}
	return out, nil
}

type fakeWarehousePublisher struct {
	mu     sync.Mutex
	events []*domain.WarehouseEvent
}

func (p *fakeWarehousePublisher) PublishWarehouseEvent(_ context.Context, event *domain.WarehouseEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newWarehouseTestService() (*WarehouseService, *fakeWarehousePublisher) {
	publisher := &fakeWarehousePublisher{}
	service := NewWarehouseService(newFakeRepo(), publisher, noop.NewTracerProvider().Tracer("test"))
	return service, publisher
}

func TestCreateWarehouse(t *testing.T) {
	service, publisher := newWarehouseTestService()

	resp, err := service.CreateWarehouse(context.Background(), &CreateWarehouseRequest{
		Code: "WH-1", Name: "East DC", City: "Shanghai", Capacity: 1000,
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)

	// 重复编码被拒绝
	_, err = service.CreateWarehouse(context.Background(), &CreateWarehouseRequest{
		Code: "WH-1", Name: "Dup", Capacity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrWarehouseExists)

	// 缺少必填字段
	_, err = service.CreateWarehouse(context.Background(), &CreateWarehouseRequest{Name: "No Code"})
	assert.ErrorIs(t, err, domain.ErrInvalidWarehouse)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventWarehouseCreated, publisher.events[0].EventType)
}

func TestUpdateAndDeactivateWarehouse(t *testing.T) {
	service, publisher := newWarehouseTestService()

	_, err := service.CreateWarehouse(context.Background(), &CreateWarehouseRequest{
		Code: "WH-1", Name: "East DC", Capacity: 1000,
	})
	require.NoError(t, err)

	updated, err := service.UpdateWarehouse(context.Background(), "WH-1", &CreateWarehouseRequest{
		Name: "East DC v2", Capacity: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "East DC v2", updated.Name)
	assert.Equal(t, 2000, updated.Capacity)

	deactivated, err := service.DeactivateWarehouse(context.Background(), "WH-1")
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	active, err := service.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := service.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.events, 3)
	assert.Equal(t, domain.EventWarehouseDeactivated, publisher.events[2].EventType)
}

func TestUpdateUnknownWarehouse(t *testing.T) {
	service, _ := newWarehouseTestService()
	_, err := service.UpdateWarehouse(context.Background(), "WH-NOPE", &CreateWarehouseRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}

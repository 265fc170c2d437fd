package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockpile/internal/service/inventory/domain"
	"stockpile/internal/service/inventory/infrastructure"
)

// fakePublisher 收集发出的事件，供断言使用。
type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.StockEvent
}

func (p *fakePublisher) PublishStockEvent(_ context.Context, event *domain.StockEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) byType(eventType string) []*domain.StockEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*domain.StockEvent
	for _, e := range p.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// thresholdAlert 命中条件固定为可用量低于阈值。
type thresholdAlert struct {
	threshold int
}

func (a *thresholdAlert) ShouldAlert(record *domain.StockRecord) (bool, error) {
	return record.AvailableQuantity() < a.threshold, nil
}

func newTestService(t *testing.T) (*StockService, *fakePublisher) {
	t.Helper()
	publisher := &fakePublisher{}
	repo := infrastructure.NewMemoryStockRepository(time.Second)
	service := NewStockService(repo, publisher, &thresholdAlert{threshold: 3}, noop.NewTracerProvider().Tracer("test"))
	return service, publisher
}

func createStock(t *testing.T, service *StockService, sku, productID string, quantity int) {
	t.Helper()
	_, err := service.CreateStock(context.Background(), &CreateStockRequest{
		SKU:         sku,
		ProductID:   productID,
		ProductName: "widget",
		Quantity:    quantity,
		UnitPrice:   9.99,
		WarehouseID: "WH-1",
	})
	require.NoError(t, err)
}

func TestCreateStockPublishesEvent(t *testing.T) {
	service, publisher := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 10)

	events := publisher.byType(domain.EventStockCreated)
	require.Len(t, events, 1)
	assert.Equal(t, "SKU-A", events[0].SKU)
	assert.Equal(t, 10, events[0].Quantity)
}

func TestReserveAndRelease(t *testing.T) {
	service, publisher := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 10)

	require.NoError(t, service.Reserve(context.Background(), "SKU-A", 4))

	resp, err := service.GetBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 4, resp.ReservedQuantity)
	assert.Equal(t, 6, resp.AvailableQuantity)

	require.NoError(t, service.Release(context.Background(), "SKU-A", 4))
	resp, err = service.GetBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.ReservedQuantity)
	assert.Equal(t, 10, resp.AvailableQuantity)

	require.Len(t, publisher.byType(domain.EventStockReserved), 1)
	require.Len(t, publisher.byType(domain.EventStockReleased), 1)
}

func TestReserveInsufficient(t *testing.T) {
	service, publisher := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 5)

	err := service.Reserve(context.Background(), "SKU-A", 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, publisher.byType(domain.EventStockReserved))

	// 失败不留痕
	resp, err := service.GetBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.ReservedQuantity)
}

func TestReserveUnknownSKU(t *testing.T) {
	service, _ := newTestService(t)
	err := service.Reserve(context.Background(), "SKU-MISSING", 1)
	assert.ErrorIs(t, err, domain.ErrStockNotFound)
}

func TestReleaseOverReservedIsClamped(t *testing.T) {
	service, publisher := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 10)
	require.NoError(t, service.Reserve(context.Background(), "SKU-A", 2))

	// 超量释放成功返回，实际只归还 2 个
	require.NoError(t, service.Release(context.Background(), "SKU-A", 5))

	resp, err := service.GetBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.ReservedQuantity)
	assert.Equal(t, 10, resp.Quantity)

	events := publisher.byType(domain.EventStockReleased)
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Delta)
}

func TestConsumeReducesOnHand(t *testing.T) {
	service, _ := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 10)
	require.NoError(t, service.Reserve(context.Background(), "SKU-A", 3))
	require.NoError(t, service.Consume(context.Background(), "SKU-A", 3))

	resp, err := service.GetBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Quantity)
	assert.Equal(t, 0, resp.ReservedQuantity)
}

func TestUpdateQuantityCannotGoBelowReserved(t *testing.T) {
	service, _ := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 10)
	require.NoError(t, service.Reserve(context.Background(), "SKU-A", 6))

	_, err := service.UpdateQuantity(context.Background(), "SKU-A", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	resp, err := service.GetBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Quantity)

	_, err = service.UpdateQuantity(context.Background(), "SKU-A", 6)
	require.NoError(t, err)
}

func TestRestockAlertFires(t *testing.T) {
	service, publisher := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 5)

	// 可用量降到阈值之下，预留成功的同时发出补货告警
	require.NoError(t, service.Reserve(context.Background(), "SKU-A", 4))

	alerts := publisher.byType(domain.EventRestockAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, "SKU-A", alerts[0].SKU)
}

func TestCheckAndGetAvailability(t *testing.T) {
	service, _ := newTestService(t)
	createStock(t, service, "SKU-A", "P-A", 5)

	ok, err := service.CheckAvailability(context.Background(), "SKU-A", 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CheckAvailability(context.Background(), "SKU-A", 6)
	require.NoError(t, err)
	assert.False(t, ok)

	avail, err := service.GetAvailability(context.Background(), "P-A")
	require.NoError(t, err)
	assert.Equal(t, "SKU-A", avail.SKU)
	assert.True(t, avail.InStock)
	assert.Equal(t, 5, avail.AvailableQuantity)

	require.NoError(t, service.Reserve(context.Background(), "SKU-A", 5))
	avail, err = service.GetAvailability(context.Background(), "P-A")
	require.NoError(t, err)
	assert.False(t, avail.InStock)
	assert.Equal(t, 0, avail.AvailableQuantity)
}

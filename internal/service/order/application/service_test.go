package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockpile/internal/service/order/domain"
	"stockpile/internal/service/order/infrastructure"
	"stockpile/internal/service/order/port"
)

// fakeGateway 是库存网关的测试替身，按调用顺序记录每次交互。
type fakeGateway struct {
	mu    sync.Mutex
	stock map[string]*port.Availability
	// rejectReserve 中的商品预留被业务拒绝 (false, nil)
	rejectReserve map[string]bool
	// failReserve 中的商品预留遇到基础设施错误（如超时）
	failReserve map[string]error
	calls       []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		stock:         make(map[string]*port.Availability),
		rejectReserve: make(map[string]bool),
		failReserve:   make(map[string]error),
	}
}

func (g *fakeGateway) add(productID string, available int, price float64) {
	g.stock[productID] = &port.Availability{
		ProductID:         productID,
		ProductName:       "product " + productID,
		SKU:               "SKU-" + productID,
		AvailableQuantity: available,
		UnitPrice:         price,
		InStock:           available > 0,
	}
}

func (g *fakeGateway) record(format string, args ...interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}

func (g *fakeGateway) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) GetAvailability(_ context.Context, productID string) (*port.Availability, error) {
	g.record("availability:%s", productID)
	avail, ok := g.stock[productID]
	if !ok {
		return nil, nil
	}
	copied := *avail
	return &copied, nil
}

func (g *fakeGateway) Reserve(_ context.Context, productID string, quantity int) (bool, error) {
	if err, ok := g.failReserve[productID]; ok {
		g.record("reserve-error:%s", productID)
		return false, err
	}
	if g.rejectReserve[productID] {
		g.record("reserve-rejected:%s", productID)
		return false, nil
	}
	g.record("reserve:%s:%d", productID, quantity)
	return true, nil
}

func (g *fakeGateway) Release(_ context.Context, productID string, quantity int) (bool, error) {
	g.record("release:%s:%d", productID, quantity)
	return true, nil
}

type fakeOrderPublisher struct {
	mu     sync.Mutex
	events []*domain.OrderEvent
}

func (p *fakeOrderPublisher) PublishOrderEvent(_ context.Context, event *domain.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newOrderTestService(gateway *fakeGateway) (*OrderService, *infrastructure.MemoryOrderRepository, *fakeOrderPublisher) {
	repo := infrastructure.NewMemoryOrderRepository()
	publisher := &fakeOrderPublisher{}
	service := NewOrderService(repo, gateway, publisher, noop.NewTracerProvider().Tracer("test"))
	return service, repo, publisher
}

func threeItemRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerID:   "C-1",
		CustomerName: "Ada",
		Items: []CreateOrderItemRequest{
			{ProductID: "P-A", Quantity: 2},
			{ProductID: "P-B", Quantity: 1},
			{ProductID: "P-C", Quantity: 3},
		},
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	gateway.add("P-B", 10, 3)
	gateway.add("P-C", 10, 2)
	service, repo, _ := newOrderTestService(gateway)

	resp, err := service.CreateOrder(context.Background(), threeItemRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	// 金额以库存侧的价格为准: 2*5 + 1*3 + 3*2
	assert.Equal(t, 19.0, resp.TotalAmount)
	assert.Equal(t, "SKU-P-A", resp.Items[0].SKU)

	// 预留按条目顺序展开
	assert.Equal(t, []string{
		"availability:P-A", "availability:P-B", "availability:P-C",
		"reserve:P-A:2", "reserve:P-B:1", "reserve:P-C:3",
	}, gateway.callLog())

	stored, err := repo.FindByNumber(context.Background(), resp.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

// 第三个条目预留被拒后，前两个条目的预留按逆序归还。
func TestCreateOrderCompensatesReservedPrefixInReverse(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	gateway.add("P-B", 10, 3)
	gateway.add("P-C", 10, 2)
	gateway.rejectReserve["P-C"] = true
	service, repo, _ := newOrderTestService(gateway)

	_, err := service.CreateOrder(context.Background(), threeItemRequest())
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	assert.Equal(t, []string{
		"availability:P-A", "availability:P-B", "availability:P-C",
		"reserve:P-A:2", "reserve:P-B:1", "reserve-rejected:P-C",
		"release:P-B:1", "release:P-A:2",
	}, gateway.callLog())

	// 失败的订单以 FAILED 落库，订单号仍然可查
	orders, err := repo.FindByCustomer(context.Background(), "C-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.StatusFailed, orders[0].Status)
}

// 网关基础设施错误（如超时）与业务拒绝同样触发补偿。
func TestCreateOrderCompensatesOnGatewayError(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	gateway.add("P-B", 10, 3)
	gateway.failReserve["P-B"] = errors.New("context deadline exceeded")
	service, _, _ := newOrderTestService(gateway)

	_, err := service.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID: "C-1",
		Items: []CreateOrderItemRequest{
			{ProductID: "P-A", Quantity: 1},
			{ProductID: "P-B", Quantity: 1},
		},
	})
	require.Error(t, err)

	assert.Equal(t, []string{
		"availability:P-A", "availability:P-B",
		"reserve:P-A:1", "reserve-error:P-B",
		"release:P-A:1",
	}, gateway.callLog())
}

// 可售校验阶段失败时，一个预留请求都不会发出。
func TestCreateOrderAbortsBeforeReserveWhenUnavailable(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	gateway.add("P-B", 1, 3) // 库存不足
	service, _, _ := newOrderTestService(gateway)

	_, err := service.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID: "C-1",
		Items: []CreateOrderItemRequest{
			{ProductID: "P-A", Quantity: 1},
			{ProductID: "P-B", Quantity: 5},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	for _, call := range gateway.callLog() {
		assert.NotContains(t, call, "reserve")
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	gateway := newFakeGateway()
	service, _, _ := newOrderTestService(gateway)

	_, err := service.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID: "C-1",
		Items:      []CreateOrderItemRequest{{ProductID: "P-MISSING", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
}

func TestCancelConfirmedOrderReleasesReservations(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	gateway.add("P-B", 10, 3)
	service, _, _ := newOrderTestService(gateway)

	resp, err := service.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID: "C-1",
		Items: []CreateOrderItemRequest{
			{ProductID: "P-A", Quantity: 2},
			{ProductID: "P-B", Quantity: 1},
		},
	})
	require.NoError(t, err)

	cancelled, err := service.CancelOrder(context.Background(), resp.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)

	log := gateway.callLog()
	assert.Contains(t, log, "release:P-A:2")
	assert.Contains(t, log, "release:P-B:1")
}

func TestCancelShippedOrderRejected(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	service, _, _ := newOrderTestService(gateway)

	resp, err := service.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID: "C-1",
		Items:      []CreateOrderItemRequest{{ProductID: "P-A", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = service.UpdateStatus(context.Background(), resp.OrderNumber, domain.StatusShipped)
	require.NoError(t, err)

	before := len(gateway.callLog())
	_, err = service.CancelOrder(context.Background(), resp.OrderNumber)
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
	// 拒绝取消时不会有任何释放调用
	assert.Len(t, gateway.callLog(), before)

	got, err := service.GetOrderByNumber(context.Background(), resp.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusShipped), got.Status)
}

func TestUpdateStatusFlow(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	service, _, _ := newOrderTestService(gateway)

	resp, err := service.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID: "C-1",
		Items:      []CreateOrderItemRequest{{ProductID: "P-A", Quantity: 1}},
	})
	require.NoError(t, err)

	// 未发货不能直接签收
	_, err = service.UpdateStatus(context.Background(), resp.OrderNumber, domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	shipped, err := service.UpdateStatus(context.Background(), resp.OrderNumber, domain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusShipped), shipped.Status)

	delivered, err := service.UpdateStatus(context.Background(), resp.OrderNumber, domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDelivered), delivered.Status)
}

func TestGetOrderNotFound(t *testing.T) {
	gateway := newFakeGateway()
	service, _, _ := newOrderTestService(gateway)

	_, err := service.GetOrderByNumber(context.Background(), "ORD-NOPE")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderEventsPublished(t *testing.T) {
	gateway := newFakeGateway()
	gateway.add("P-A", 10, 5)
	service, _, publisher := newOrderTestService(gateway)

	resp, err := service.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID: "C-1",
		Items:      []CreateOrderItemRequest{{ProductID: "P-A", Quantity: 1}},
	})
	require.NoError(t, err)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.events, 2)
	assert.Equal(t, domain.EventOrderCreated, publisher.events[0].EventType)
	assert.Equal(t, domain.StatusPending, publisher.events[0].Status)
	assert.Equal(t, domain.EventOrderStatusChanged, publisher.events[1].EventType)
	assert.Equal(t, domain.StatusConfirmed, publisher.events[1].Status)
	assert.Equal(t, resp.OrderNumber, publisher.events[1].OrderNumber)
}

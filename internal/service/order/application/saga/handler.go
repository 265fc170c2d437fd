package saga

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/order/domain"
	"stockpile/internal/service/order/port"
)

// OrderContext 在 Saga 流程中传递上下文数据。
// 所有外部依赖都是抽象接口，便于替换和测试。
type OrderContext struct {
	Ctx    context.Context
	Order  *domain.Order
	Tracer trace.Tracer

	// 出站端口
	Inventory port.InventoryGateway
	Orders    domain.OrderRepository
	Publisher domain.EventPublisher

	// 补偿函数按 LIFO 顺序执行：后注册的先补偿。
	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 前插补偿函数，保证触发时逆序执行。
func (c *OrderContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 逆序执行所有已注册的补偿函数。
// 补偿必须尽力执行完，不因单个失败中断。
func (c *OrderContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Info().
		Str("order_number", c.Order.OrderNumber).
		Int("count", len(c.compensations)).
		Msg("Executing compensation functions")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

// CompensationCount 返回当前已注册的补偿数量。
func (c *OrderContext) CompensationCount() int {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	return len(c.compensations)
}

// Handler 是 Saga 步骤的责任链接口。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(orderCtx *OrderContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(orderCtx *OrderContext) error {
	if h.next != nil {
		return h.next.Handle(orderCtx)
	}
	return nil
}

// internal/service/order/application/service.go
package application

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/metrics"
	"stockpile/internal/service/order/application/saga"
	"stockpile/internal/service/order/domain"
	"stockpile/internal/service/order/port"
)

// OrderService 编排下单 Saga 与订单查询/状态流转。
type OrderService struct {
	orders    domain.OrderRepository
	inventory port.InventoryGateway
	publisher domain.EventPublisher
	tracer    trace.Tracer
}

func NewOrderService(
	orders domain.OrderRepository,
	inventory port.InventoryGateway,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
) *OrderService {
	return &OrderService{
		orders:    orders,
		inventory: inventory,
		publisher: publisher,
		tracer:    tracer,
	}
}

// CreateOrder 同步执行下单 Saga：
// 可售校验 -> 落库 -> 逐项预占 -> 确认。
// 任一步失败即触发已注册补偿（逆序），订单以 FAILED 落库。
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	order, err := domain.NewOrder(req.CustomerID, req.CustomerName, req.CustomerEmail, toOrderItems(req.Items))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.String("customer.id", order.CustomerID),
	)

	orderCtx := &saga.OrderContext{
		Ctx:       ctx,
		Order:     order,
		Tracer:    s.tracer,
		Inventory: s.inventory,
		Orders:    s.orders,
		Publisher: s.publisher,
	}

	head := &saga.AvailabilityHandler{}
	head.SetNext(&saga.PersistHandler{}).
		SetNext(&saga.ReserveHandler{}).
		SetNext(&saga.ConfirmHandler{})

	if err := head.Handle(orderCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order saga failed")
		logger.Ctx(ctx).Warn().Err(err).
			Str("order_number", order.OrderNumber).
			Msg("Order saga failed, triggering compensation")

		orderCtx.TriggerCompensation(ctx)
		s.failOrder(ctx, order)
		metrics.OrderSagas.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.OrderSagas.WithLabelValues("confirmed").Inc()
	logger.Ctx(ctx).Info().
		Str("order_number", order.OrderNumber).
		Float64("total", order.TotalAmount).
		Msg("Order confirmed")
	return toOrderResponse(order), nil
}

// failOrder 把订单置为 FAILED 并尽力落库。
// 可售校验阶段失败时订单尚未持久化，这里也会把失败记录写出去，
// 保证订单号在失败场景下仍然可查。
func (s *OrderService) failOrder(ctx context.Context, order *domain.Order) {
	order.MarkFailed()
	if err := s.orders.Save(ctx, order); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("order_number", order.OrderNumber).
			Msg("Failed to persist FAILED order")
		return
	}
	if s.publisher != nil {
		s.publisher.PublishOrderEvent(ctx, domain.NewOrderEvent(order, domain.EventOrderStatusChanged))
	}
}

// GetOrderByNumber 按订单号查询。
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderByNumber")
	defer span.End()

	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// GetOrdersByCustomer 列出一个客户的全部订单。
func (s *OrderService) GetOrdersByCustomer(ctx context.Context, customerID string) ([]*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrdersByCustomer")
	defer span.End()

	orders, err := s.orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return out, nil
}

// CancelOrder 取消订单。已发货/已签收的订单返回 ErrNotCancellable 且状态不变。
// 取消一个已确认的订单时，逐项释放其预留；释放是尽力而为，
// 单项失败只记日志，不阻塞取消。
func (s *OrderService) CancelOrder(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.number", orderNumber))

	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	wasConfirmed := order.Status == domain.StatusConfirmed
	if err := order.Cancel(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if wasConfirmed {
		for _, item := range order.Items {
			if _, err := s.inventory.Release(ctx, item.ProductID, item.Quantity); err != nil {
				span.RecordError(err)
				logger.Ctx(ctx).Error().Err(err).
					Str("order_number", order.OrderNumber).
					Str("product_id", item.ProductID).
					Int("quantity", item.Quantity).
					Msg("Release on cancel failed, manual intervention may be required")
			}
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(err, "persist cancelled order")
	}
	if s.publisher != nil {
		s.publisher.PublishOrderEvent(ctx, domain.NewOrderEvent(order, domain.EventOrderStatusChanged))
	}
	logger.Ctx(ctx).Info().Str("order_number", order.OrderNumber).Msg("Order cancelled")
	return toOrderResponse(order), nil
}

// UpdateStatus 处理确认之后的状态流转（发货、签收）。
func (s *OrderService) UpdateStatus(ctx context.Context, orderNumber string, status domain.Status) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.number", orderNumber),
		attribute.String("order.status", string(status)),
	)

	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	switch status {
	case domain.StatusShipped:
		err = order.MarkShipped()
	case domain.StatusDelivered:
		err = order.MarkDelivered()
	default:
		err = pkgerrors.WithMessagef(domain.ErrInvalidTransition, "unsupported target status %s", status)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(err, "persist order status")
	}
	if s.publisher != nil {
		s.publisher.PublishOrderEvent(ctx, domain.NewOrderEvent(order, domain.EventOrderStatusChanged))
	}
	return toOrderResponse(order), nil
}

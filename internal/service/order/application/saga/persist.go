package saga

import (
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockpile/internal/service/order/domain"
)

// PersistHandler 把 PENDING 状态的订单落库。
// 落库发生在预占之前：预占一旦展开，订单号必须已经可查。
type PersistHandler struct {
	NextHandler
}

func (h *PersistHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.PersistOrder")
	defer span.End()

	order := orderCtx.Order
	span.SetAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.Float64("order.total", order.TotalAmount),
	)

	if err := orderCtx.Orders.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order persist failed")
		return pkgerrors.Wrap(err, "persist order")
	}

	if orderCtx.Publisher != nil {
		orderCtx.Publisher.PublishOrderEvent(ctx, domain.NewOrderEvent(order, domain.EventOrderCreated))
	}

	return h.executeNext(orderCtx)
}

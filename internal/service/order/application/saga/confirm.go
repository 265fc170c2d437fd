package saga

import (
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockpile/internal/service/order/domain"
)

// ConfirmHandler 是链上最后一步：全部条目预占成功后把订单置为 CONFIRMED。
type ConfirmHandler struct {
	NextHandler
}

func (h *ConfirmHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ConfirmOrder")
	defer span.End()

	order := orderCtx.Order
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))

	if err := order.MarkConfirmed(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm transition rejected")
		return err
	}
	if err := orderCtx.Orders.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm persist failed")
		return pkgerrors.Wrap(err, "persist confirmed order")
	}

	if orderCtx.Publisher != nil {
		orderCtx.Publisher.PublishOrderEvent(ctx, domain.NewOrderEvent(order, domain.EventOrderStatusChanged))
	}

	span.AddEvent("Order confirmed")
	return h.executeNext(orderCtx)
}

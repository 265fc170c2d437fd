package saga

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockpile/internal/service/order/domain"
)

// AvailabilityHandler 负责下单前的可售校验与价格/名称补全。
// 任何一个条目不可售，整个订单在预占前即终止。
type AvailabilityHandler struct {
	NextHandler
}

func (h *AvailabilityHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.CheckAvailability")
	defer span.End()

	order := orderCtx.Order
	span.SetAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.items", len(order.Items)),
	)

	for i := range order.Items {
		item := &order.Items[i]
		avail, err := orderCtx.Inventory.GetAvailability(ctx, item.ProductID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "availability lookup failed")
			return pkgerrors.Wrapf(err, "check availability for product %s", item.ProductID)
		}
		if avail == nil || !avail.InStock || avail.AvailableQuantity < item.Quantity {
			err := pkgerrors.WithMessagef(domain.ErrInsufficientInventory,
				"product %s: requested %d", item.ProductID, item.Quantity)
			span.RecordError(err)
			span.SetStatus(codes.Error, "insufficient inventory")
			return err
		}
		// 以库存侧为准补全条目快照
		item.SKU = avail.SKU
		item.ProductName = avail.ProductName
		item.UnitPrice = avail.UnitPrice
		item.TotalPrice = avail.UnitPrice * float64(item.Quantity)
	}
	order.RecalculateTotal()

	span.AddEvent(fmt.Sprintf("All %d items available", len(order.Items)))
	return h.executeNext(orderCtx)
}

package saga

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/order/domain"
)

// ReserveHandler 按条目顺序逐项预占库存。
// 每成功一项就注册一个对应的释放补偿；第 k 项失败时，
// 只有前 k-1 项的补偿会被触发，且按逆序执行。
type ReserveHandler struct {
	NextHandler
}

func (h *ReserveHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ReserveStock")
	defer span.End()

	order := orderCtx.Order
	span.SetAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.items", len(order.Items)),
	)

	for _, item := range order.Items {
		item := item
		ok, err := orderCtx.Inventory.Reserve(ctx, item.ProductID, item.Quantity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reservation call failed")
			return pkgerrors.Wrapf(err, "reserve product %s", item.ProductID)
		}
		if !ok {
			err := pkgerrors.WithMessagef(domain.ErrInsufficientInventory,
				"product %s: requested %d", item.ProductID, item.Quantity)
			span.RecordError(err)
			span.SetStatus(codes.Error, "reservation rejected")
			return err
		}

		orderCtx.AddCompensation(func(compCtx context.Context) {
			compCtx, compSpan := orderCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseStock")
			defer compSpan.End()
			compSpan.SetAttributes(
				attribute.String("product.id", item.ProductID),
				attribute.Int("quantity", item.Quantity),
			)
			// 补偿失败记录错误，可能需要人工介入
			if _, err := orderCtx.Inventory.Release(compCtx, item.ProductID, item.Quantity); err != nil {
				compSpan.RecordError(err)
				logger.Ctx(compCtx).Error().Err(err).
					Str("order_number", order.OrderNumber).
					Str("product_id", item.ProductID).
					Int("quantity", item.Quantity).
					Msg("Compensation release failed, manual intervention may be required")
			}
		})
	}

	span.AddEvent("All items reserved")
	return h.executeNext(orderCtx)
}

// internal/service/inventory/application/service.go
package application

import (
	"context"
	"errors"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/metrics"
	"stockpile/internal/service/inventory/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StockService 实现库存账本的全部业务操作。
// 所有写操作都经过仓储的 LockedMutate，检查和修改发生在同一次
// 锁持有内，这是防止超卖的唯一机制。
type StockService struct {
	repo      domain.StockRepository
	publisher domain.EventPublisher
	alerts    domain.AlertRuleEngine
	tracer    trace.Tracer
}

// NewStockService 组装账本服务。
func NewStockService(repo domain.StockRepository, publisher domain.EventPublisher, alerts domain.AlertRuleEngine, tracer trace.Tracer) *StockService {
	return &StockService{repo: repo, publisher: publisher, alerts: alerts, tracer: tracer}
}

// CreateStock 新建一条库存记录。
func (s *StockService) CreateStock(ctx context.Context, req *CreateStockRequest) (*StockResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CreateStock")
	defer span.End()

	record, err := domain.NewStockRecord(req.SKU, req.ProductID, req.ProductName, req.Quantity, req.UnitPrice, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	record.Description = req.Description
	record.ReorderLevel = req.ReorderLevel
	record.MaxStockLevel = req.MaxStockLevel
	record.Location = req.Location

	if err := s.repo.Create(ctx, record); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("sku", record.SKU).Int("quantity", record.Quantity).Msg("stock record created")
	s.publisher.PublishStockEvent(ctx, domain.NewStockEvent(record, domain.EventStockCreated, record.Quantity))
	return toStockResponse(record), nil
}

// GetBySKU 查询单条记录，走缓存（若启用）。
func (s *StockService) GetBySKU(ctx context.Context, sku string) (*StockResponse, error) {
	record, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return toStockResponse(record), nil
}

// GetAvailability 是网关契约的查询端：按商品 ID 返回可用量快照。
// 这是一个不加锁的读，结果是建议性的，后续的 Reserve 仍可能失败。
func (s *StockService) GetAvailability(ctx context.Context, productID string) (*AvailabilityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.GetAvailability")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))

	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toAvailabilityResponse(record), nil
}

// GetByWarehouse 列出一个仓库的全部库存。
func (s *StockService) GetByWarehouse(ctx context.Context, warehouseID string) ([]*StockResponse, error) {
	records, err := s.repo.FindByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	result := make([]*StockResponse, 0, len(records))
	for _, record := range records {
		result = append(result, toStockResponse(record))
	}
	return result, nil
}

// GetLowStock 列出触达补货线的记录。
func (s *StockService) GetLowStock(ctx context.Context) ([]*StockResponse, error) {
	records, err := s.repo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*StockResponse, 0, len(records))
	for _, record := range records {
		result = append(result, toStockResponse(record))
	}
	return result, nil
}

// CheckAvailability 判断可用量是否满足 qty。
// 纯读路径，不占锁；检查和占用之间的窗口由 Reserve 自己兜底。
func (s *StockService) CheckAvailability(ctx context.Context, sku string, qty int) (bool, error) {
	record, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return false, err
	}
	return record.AvailableQuantity() >= qty, nil
}

// UpdateQuantity 人工调整在库量（入库、盘点）。
// 不允许把在库量调到低于当前预留量，否则不变式被破坏。
func (s *StockService) UpdateQuantity(ctx context.Context, sku string, quantity int) (*StockResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.UpdateQuantity")
	defer span.End()

	record, err := s.repo.LockedMutate(ctx, sku, func(r *domain.StockRecord) error {
		if quantity < 0 || quantity < r.ReservedQuantity {
			return domain.ErrInvalidQuantity
		}
		r.Quantity = quantity
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("sku", sku).Int("quantity", quantity).Msg("stock quantity updated")
	s.publisher.PublishStockEvent(ctx, domain.NewStockEvent(record, domain.EventStockUpdated, quantity))
	s.maybeAlert(ctx, record)
	return toStockResponse(record), nil
}

// Reserve 为一个订单占用 qty 个单位。
// 可用量检查和预留量递增在同一次锁持有内完成。
func (s *StockService) Reserve(ctx context.Context, sku string, qty int) error {
	ctx, span := s.tracer.Start(ctx, "inventory.Reserve")
	defer span.End()
	span.SetAttributes(attribute.String("stock.sku", sku), attribute.Int("stock.qty", qty))

	record, err := s.repo.LockedMutate(ctx, sku, func(r *domain.StockRecord) error {
		return r.Reserve(qty)
	})
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			metrics.StockReservations.WithLabelValues(metrics.ResultInsufficient).Inc()
			span.SetStatus(codes.Error, "insufficient stock")
		case errors.Is(err, domain.ErrStockNotFound):
			metrics.StockReservations.WithLabelValues(metrics.ResultNotFound).Inc()
		case errors.Is(err, domain.ErrLockTimeout):
			metrics.StockReservations.WithLabelValues(metrics.ResultLockTimeout).Inc()
		default:
			metrics.StockReservations.WithLabelValues(metrics.ResultError).Inc()
		}
		return err
	}

	metrics.StockReservations.WithLabelValues(metrics.ResultOK).Inc()
	logger.Ctx(ctx).Info().Str("sku", sku).Int("qty", qty).
		Int("reserved", record.ReservedQuantity).Msg("stock reserved")
	s.publisher.PublishStockEvent(ctx, domain.NewStockEvent(record, domain.EventStockReserved, qty))
	s.maybeAlert(ctx, record)
	return nil
}

// Release 把预留的库存归还到可用池。
// 超量释放钳制到 0：释放通常跑在失败清理路径上，这里再抛错误
// 只会掩盖原始故障，所以只记录。
func (s *StockService) Release(ctx context.Context, sku string, qty int) error {
	ctx, span := s.tracer.Start(ctx, "inventory.Release")
	defer span.End()
	span.SetAttributes(attribute.String("stock.sku", sku), attribute.Int("stock.qty", qty))

	var released int
	record, err := s.repo.LockedMutate(ctx, sku, func(r *domain.StockRecord) error {
		released = r.Release(qty)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if released < qty {
		metrics.ReleaseClamped.Inc()
		logger.Ctx(ctx).Warn().Str("sku", sku).
			Int("requested", qty).Int("released", released).
			Msg("release exceeded reserved quantity, clamped to zero")
	}
	metrics.StockReleasedUnits.Add(float64(released))
	logger.Ctx(ctx).Info().Str("sku", sku).Int("released", released).Msg("stock released")
	s.publisher.PublishStockEvent(ctx, domain.NewStockEvent(record, domain.EventStockReleased, released))
	return nil
}

// Consume 发货扣减：预留量和在库量一起减少。
func (s *StockService) Consume(ctx context.Context, sku string, qty int) error {
	ctx, span := s.tracer.Start(ctx, "inventory.Consume")
	defer span.End()

	var consumed int
	record, err := s.repo.LockedMutate(ctx, sku, func(r *domain.StockRecord) error {
		consumed = r.Consume(qty)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Str("sku", sku).Int("consumed", consumed).Msg("stock consumed")
	s.publisher.PublishStockEvent(ctx, domain.NewStockEvent(record, domain.EventStockConsumed, consumed))
	s.maybeAlert(ctx, record)
	return nil
}

// maybeAlert 评估补货规则，命中时发出告警事件。
// 规则评估失败只记录，不影响主流程。
func (s *StockService) maybeAlert(ctx context.Context, record *domain.StockRecord) {
	if s.alerts == nil {
		return
	}
	hit, err := s.alerts.ShouldAlert(record)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("sku", record.SKU).Msg("restock rule evaluation failed")
		return
	}
	if hit {
		logger.Ctx(ctx).Warn().Str("sku", record.SKU).
			Int("quantity", record.Quantity).Int("reorderLevel", record.ReorderLevel).
			Msg("restock alert raised")
		s.publisher.PublishStockEvent(ctx, domain.NewStockEvent(record, domain.EventRestockAlert, 0))
	}
}

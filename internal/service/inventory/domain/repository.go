// internal/service/inventory/domain/repository.go
package domain

import "context"

// StockRepository 定义库存账本的持久化契约，由基础设施层实现。
//
// LockedMutate 是唯一的写入口：获取 SKU 级别的排他锁，读出当前记录，
// 应用 fn，持久化后释放锁。不同 SKU 的调用互不阻塞；同一 SKU 的调用
// 按获取锁的顺序串行。fn 返回错误时不持久化任何修改。
// 锁等待是有界的，超时返回 ErrLockTimeout。
type StockRepository interface {
	FindBySKU(ctx context.Context, sku string) (*StockRecord, error)
	FindByProductID(ctx context.Context, productID string) (*StockRecord, error)
	FindByWarehouse(ctx context.Context, warehouseID string) ([]*StockRecord, error)
	FindLowStock(ctx context.Context) ([]*StockRecord, error)
	Create(ctx context.Context, record *StockRecord) error
	LockedMutate(ctx context.Context, sku string, fn func(*StockRecord) error) (*StockRecord, error)
}

// EventPublisher 是库存事件的出站端口。
// 事件是尽力而为的通知：发布失败只记录，不回滚触发它的状态变更。
type EventPublisher interface {
	PublishStockEvent(ctx context.Context, event *StockEvent)
}

// AlertRuleEngine 评估一条库存记录是否需要发出补货告警。
type AlertRuleEngine interface {
	ShouldAlert(record *StockRecord) (bool, error)
}

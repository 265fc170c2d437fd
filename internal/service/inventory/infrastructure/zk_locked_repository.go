// internal/service/inventory/infrastructure/zk_locked_repository.go
package infrastructure

import (
	"context"
	"errors"
	"time"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/inventory/domain"
	"stockpile/internal/zookeeper"
)

// ZkLockedRepository 用 ZooKeeper 的分布式 SKU 锁装饰另一个仓储。
// 当库存服务多实例共享一个不提供行锁的存储时，由它把
// LockedMutate 的互斥范围扩大到整个集群。
type ZkLockedRepository struct {
	inner    domain.StockRepository
	conn     *zookeeper.Conn
	lockWait time.Duration
}

// NewZkLockedRepository 创建装饰器。
func NewZkLockedRepository(inner domain.StockRepository, conn *zookeeper.Conn, lockWait time.Duration) *ZkLockedRepository {
	return &ZkLockedRepository{inner: inner, conn: conn, lockWait: lockWait}
}

func (r *ZkLockedRepository) FindBySKU(ctx context.Context, sku string) (*domain.StockRecord, error) {
	return r.inner.FindBySKU(ctx, sku)
}

func (r *ZkLockedRepository) FindByProductID(ctx context.Context, productID string) (*domain.StockRecord, error) {
	return r.inner.FindByProductID(ctx, productID)
}

func (r *ZkLockedRepository) FindByWarehouse(ctx context.Context, warehouseID string) ([]*domain.StockRecord, error) {
	return r.inner.FindByWarehouse(ctx, warehouseID)
}

func (r *ZkLockedRepository) FindLowStock(ctx context.Context) ([]*domain.StockRecord, error) {
	return r.inner.FindLowStock(ctx)
}

func (r *ZkLockedRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	return r.inner.Create(ctx, record)
}

// LockedMutate 先取回该 SKU 的 ZooKeeper 锁，再委托底层仓储。
// 底层自己的锁此时不会有跨实例竞争，只承担崩溃兜底作用。
func (r *ZkLockedRepository) LockedMutate(ctx context.Context, sku string, fn func(*domain.StockRecord) error) (*domain.StockRecord, error) {
	lock, err := zookeeper.NewKeyedLock(r.conn, "sku-"+sku)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(ctx, r.lockWait); err != nil {
		if errors.Is(err, zookeeper.ErrLockWaitTimeout) {
			return nil, domain.ErrLockTimeout
		}
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("sku", sku).Msg("failed to release zookeeper lock")
		}
	}()

	return r.inner.LockedMutate(ctx, sku, fn)
}

// internal/service/inventory/infrastructure/cached_repository.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/redis"
	"stockpile/internal/service/inventory/domain"

	"golang.org/x/sync/singleflight"
)

// CachedStockRepository 在任意 StockRepository 之上叠加一层 Redis 读缓存。
// 只加速单条查询；每次 LockedMutate 成功后主动失效对应 key。
// 缓存不参与一致性保证：预留/释放永远走底层仓储的锁路径。
type CachedStockRepository struct {
	inner domain.StockRepository
	cache *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedStockRepository 创建缓存装饰器。
func NewCachedStockRepository(inner domain.StockRepository, cache *redis.Client, ttl time.Duration) *CachedStockRepository {
	return &CachedStockRepository{inner: inner, cache: cache, ttl: ttl}
}

func stockCacheKey(sku string) string {
	return fmt.Sprintf("stock:sku:%s", sku)
}

func (r *CachedStockRepository) FindBySKU(ctx context.Context, sku string) (*domain.StockRecord, error) {
	key := stockCacheKey(sku)
	if raw, err := r.cache.Get(ctx, key); err == nil {
		var record domain.StockRecord
		if err := json.Unmarshal([]byte(raw), &record); err == nil {
			return &record, nil
		}
		// 脏数据直接丢弃，回源
		_ = r.cache.Del(ctx, key)
	} else if !redis.IsNil(err) {
		logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("stock cache read failed, falling through")
	}

	// singleflight 合并同一 SKU 的并发回源，避免缓存击穿
	value, err, _ := r.group.Do(key, func() (interface{}, error) {
		record, err := r.inner.FindBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(record); err == nil {
			if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("stock cache write failed")
			}
		}
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.StockRecord), nil
}

// FindByProductID 不走缓存：productID 到 SKU 的映射不可变，
// 但记录本身的热点读都在 FindBySKU 上。
func (r *CachedStockRepository) FindByProductID(ctx context.Context, productID string) (*domain.StockRecord, error) {
	return r.inner.FindByProductID(ctx, productID)
}

func (r *CachedStockRepository) FindByWarehouse(ctx context.Context, warehouseID string) ([]*domain.StockRecord, error) {
	return r.inner.FindByWarehouse(ctx, warehouseID)
}

func (r *CachedStockRepository) FindLowStock(ctx context.Context) ([]*domain.StockRecord, error) {
	return r.inner.FindLowStock(ctx)
}

func (r *CachedStockRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	return r.inner.Create(ctx, record)
}

// LockedMutate 委托底层实现，成功后失效缓存。
// 失效失败只记录：缓存有 TTL 兜底，且可用量判断从不依赖缓存。
func (r *CachedStockRepository) LockedMutate(ctx context.Context, sku string, fn func(*domain.StockRecord) error) (*domain.StockRecord, error) {
	record, err := r.inner.LockedMutate(ctx, sku, fn)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Del(ctx, stockCacheKey(sku)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("stock cache invalidation failed")
	}
	return record, nil
}

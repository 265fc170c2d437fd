// internal/service/warehouse/infrastructure/cached_repository.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/redis"
	"stockpile/internal/service/warehouse/domain"
)

// CachedWarehouseRepository 给仓库主数据加一层 Redis 读缓存。
// 主数据改动极少，按 code 缓存单条，写路径直接失效。
type CachedWarehouseRepository struct {
	inner domain.WarehouseRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedWarehouseRepository(inner domain.WarehouseRepository, cache *redis.Client, ttl time.Duration) *CachedWarehouseRepository {
	return &CachedWarehouseRepository{inner: inner, cache: cache, ttl: ttl}
}

func warehouseCacheKey(code string) string {
	return fmt.Sprintf("warehouse:code:%s", code)
}

func (r *CachedWarehouseRepository) FindByCode(ctx context.Context, code string) (*domain.Warehouse, error) {
	key := warehouseCacheKey(code)
	if raw, err := r.cache.Get(ctx, key); err == nil {
		var warehouse domain.Warehouse
		if err := json.Unmarshal([]byte(raw), &warehouse); err == nil {
			return &warehouse, nil
		}
		_ = r.cache.Del(ctx, key)
	} else if !redis.IsNil(err) {
		logger.Ctx(ctx).Warn().Err(err).Str("code", code).Msg("warehouse cache read failed, falling through")
	}

	warehouse, err := r.inner.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(warehouse); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("code", code).Msg("warehouse cache write failed")
		}
	}
	return warehouse, nil
}

func (r *CachedWarehouseRepository) Create(ctx context.Context, warehouse *domain.Warehouse) error {
	return r.inner.Create(ctx, warehouse)
}

func (r *CachedWarehouseRepository) Update(ctx context.Context, warehouse *domain.Warehouse) error {
	if err := r.inner.Update(ctx, warehouse); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, warehouseCacheKey(warehouse.Code)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("code", warehouse.Code).Msg("warehouse cache invalidation failed")
	}
	return nil
}

func (r *CachedWarehouseRepository) FindAll(ctx context.Context, activeOnly bool) ([]*domain.Warehouse, error) {
	return r.inner.FindAll(ctx, activeOnly)
}

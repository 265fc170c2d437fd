// internal/service/inventory/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"stockpile/internal/service/inventory/domain"
)

// MemoryStockRepository 是 StockRepository 的内存实现：
// 一张普通 map 存记录，另一张以 SKU 为 key 的锁表提供行级互斥。
// 单机部署和测试使用，锁语义与数据库实现完全一致。
type MemoryStockRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.StockRecord
	byProd  map[string]string // productID -> sku

	lockMu   sync.Mutex
	locks    map[string]chan struct{} // 容量为 1 的 channel 充当可超时的互斥量
	lockWait time.Duration
}

// NewMemoryStockRepository 创建内存仓储，lockWait 是单 SKU 锁的最长等待时间。
func NewMemoryStockRepository(lockWait time.Duration) *MemoryStockRepository {
	return &MemoryStockRepository{
		records:  make(map[string]*domain.StockRecord),
		byProd:   make(map[string]string),
		locks:    make(map[string]chan struct{}),
		lockWait: lockWait,
	}
}

func (r *MemoryStockRepository) lockFor(sku string) chan struct{} {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	ch, ok := r.locks[sku]
	if !ok {
		ch = make(chan struct{}, 1)
		r.locks[sku] = ch
	}
	return ch
}

// acquire 在 lockWait 内尝试拿到 sku 的锁。
func (r *MemoryStockRepository) acquire(ctx context.Context, sku string) (chan struct{}, error) {
	ch := r.lockFor(sku)
	select {
	case ch <- struct{}{}:
		return ch, nil
	case <-time.After(r.lockWait):
		return nil, domain.ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func clone(record *domain.StockRecord) *domain.StockRecord {
	copied := *record
	return &copied
}

func (r *MemoryStockRepository) FindBySKU(ctx context.Context, sku string) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[sku]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	return clone(record), nil
}

func (r *MemoryStockRepository) FindByProductID(ctx context.Context, productID string) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sku, ok := r.byProd[productID]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	return clone(r.records[sku]), nil
}

func (r *MemoryStockRepository) FindByWarehouse(ctx context.Context, warehouseID string) ([]*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.StockRecord
	for _, record := range r.records {
		if record.WarehouseID == warehouseID {
			result = append(result, clone(record))
		}
	}
	return result, nil
}

func (r *MemoryStockRepository) FindLowStock(ctx context.Context) ([]*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.StockRecord
	for _, record := range r.records {
		if record.IsLowStock() {
			result = append(result, clone(record))
		}
	}
	return result, nil
}

func (r *MemoryStockRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[record.SKU]; exists {
		return domain.ErrStockExists
	}
	r.records[record.SKU] = clone(record)
	r.byProd[record.ProductID] = record.SKU
	return nil
}

// LockedMutate 在持有 sku 锁的前提下应用 fn。
// fn 操作的是记录副本，返回错误时不落任何修改。
func (r *MemoryStockRepository) LockedMutate(ctx context.Context, sku string, fn func(*domain.StockRecord) error) (*domain.StockRecord, error) {
	ch, err := r.acquire(ctx, sku)
	if err != nil {
		return nil, err
	}
	defer func() { <-ch }()

	r.mu.RLock()
	current, ok := r.records[sku]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrStockNotFound
	}

	working := clone(current)
	if err := fn(working); err != nil {
		return nil, err
	}

	working.Version++
	working.UpdatedAt = time.Now()

	r.mu.Lock()
	r.records[sku] = working
	r.mu.Unlock()
	return clone(working), nil
}

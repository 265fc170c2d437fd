// internal/service/inventory/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"
	"time"

	"stockpile/internal/service/inventory/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository 是 StockRepository 的 MySQL 实现。
// LockedMutate 依靠事务内的 SELECT ... FOR UPDATE 行锁串行化
// 同一 SKU 的写入，不同 SKU 互不影响。
type GormStockRepository struct {
	db       *gorm.DB
	lockWait time.Duration
}

// NewGormStockRepository 创建仓储实例，lockWait 作为锁等待的上限，
// 由事务上下文的超时实现。
func NewGormStockRepository(db *gorm.DB, lockWait time.Duration) *GormStockRepository {
	return &GormStockRepository{db: db, lockWait: lockWait}
}

// AutoMigrate 建表，部署脚本和集成测试使用。
func (r *GormStockRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&StockModel{})
}

func (r *GormStockRepository) FindBySKU(ctx context.Context, sku string) (*domain.StockRecord, error) {
	var model StockModel
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, pkgerrors.Wrap(err, "find stock by sku")
	}
	return toDomainStock(&model), nil
}

func (r *GormStockRepository) FindByProductID(ctx context.Context, productID string) (*domain.StockRecord, error) {
	var model StockModel
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, pkgerrors.Wrap(err, "find stock by product id")
	}
	return toDomainStock(&model), nil
}

func (r *GormStockRepository) FindByWarehouse(ctx context.Context, warehouseID string) ([]*domain.StockRecord, error) {
	var models []StockModel
	err := r.db.WithContext(ctx).Where("warehouse_id = ?", warehouseID).Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find stock by warehouse")
	}
	records := make([]*domain.StockRecord, 0, len(models))
	for i := range models {
		records = append(records, toDomainStock(&models[i]))
	}
	return records, nil
}

func (r *GormStockRepository) FindLowStock(ctx context.Context) ([]*domain.StockRecord, error) {
	var models []StockModel
	err := r.db.WithContext(ctx).Where("quantity <= reorder_level").Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find low stock")
	}
	records := make([]*domain.StockRecord, 0, len(models))
	for i := range models {
		records = append(records, toDomainStock(&models[i]))
	}
	return records, nil
}

func (r *GormStockRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	err := r.db.WithContext(ctx).Create(fromDomainStock(record)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrStockExists
		}
		return pkgerrors.Wrap(err, "create stock record")
	}
	return nil
}

// LockedMutate 在一个事务里完成 "行锁 -> fn -> 落库"。
// 事务上下文带锁等待上限，等锁超过上限时整个事务以 ErrLockTimeout 终止。
func (r *GormStockRepository) LockedMutate(ctx context.Context, sku string, fn func(*domain.StockRecord) error) (*domain.StockRecord, error) {
	lockCtx, cancel := context.WithTimeout(ctx, r.lockWait)
	defer cancel()

	var mutated *domain.StockRecord
	err := r.db.WithContext(lockCtx).Transaction(func(tx *gorm.DB) error {
		var model StockModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sku = ?", sku).
			First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrStockNotFound
			}
			return pkgerrors.Wrap(err, "lock stock row")
		}

		record := toDomainStock(&model)
		if err := fn(record); err != nil {
			return err
		}

		record.Version++
		applyDomainStock(&model, record)
		if err := tx.Model(&StockModel{}).Where("sku = ?", sku).Updates(map[string]interface{}{
			"quantity":          model.Quantity,
			"reserved_quantity": model.ReservedQuantity,
			"reorder_level":     model.ReorderLevel,
			"max_stock_level":   model.MaxStockLevel,
			"unit_price":        model.UnitPrice,
			"location":          model.Location,
			"version":           model.Version,
		}).Error; err != nil {
			return pkgerrors.Wrap(err, "persist stock mutation")
		}

		record.UpdatedAt = time.Now()
		mutated = record
		return nil
	})
	if err != nil {
		// 行锁等待被上下文超时打断时，向调用方报告锁超时而不是晦涩的驱动错误
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, domain.ErrLockTimeout
		}
		return nil, err
	}
	return mutated, nil
}

// internal/service/warehouse/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"stockpile/internal/service/warehouse/domain"
)

// WarehouseModel 是仓库表的 GORM 映射。
type WarehouseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Code      string    `gorm:"column:code;type:varchar(32);uniqueIndex;not null"`
	Name      string    `gorm:"column:name;type:varchar(128);not null"`
	Address   string    `gorm:"column:address;type:varchar(256)"`
	City      string    `gorm:"column:city;type:varchar(64);index"`
	Capacity  int       `gorm:"column:capacity;not null;default:0"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (WarehouseModel) TableName() string { return "warehouses" }

func fromDomainWarehouse(w *domain.Warehouse) *WarehouseModel {
	return &WarehouseModel{
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		City:      w.City,
		Capacity:  w.Capacity,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (m *WarehouseModel) toDomainWarehouse() *domain.Warehouse {
	return &domain.Warehouse{
		Code:      m.Code,
		Name:      m.Name,
		Address:   m.Address,
		City:      m.City,
		Capacity:  m.Capacity,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// GormWarehouseRepository 是仓库主数据的 MySQL 实现。
type GormWarehouseRepository struct {
	db *gorm.DB
}

func NewGormWarehouseRepository(db *gorm.DB) (*GormWarehouseRepository, error) {
	if err := db.AutoMigrate(&WarehouseModel{}); err != nil {
		return nil, pkgerrors.Wrap(err, "migrate warehouse table")
	}
	return &GormWarehouseRepository{db: db}, nil
}

func (r *GormWarehouseRepository) Create(ctx context.Context, warehouse *domain.Warehouse) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&WarehouseModel{}).
		Where("code = ?", warehouse.Code).Count(&count).Error; err != nil {
		return pkgerrors.Wrapf(err, "check warehouse %s", warehouse.Code)
	}
	if count > 0 {
		return domain.ErrWarehouseExists
	}
	if err := r.db.WithContext(ctx).Create(fromDomainWarehouse(warehouse)).Error; err != nil {
		return pkgerrors.Wrapf(err, "create warehouse %s", warehouse.Code)
	}
	return nil
}

func (r *GormWarehouseRepository) Update(ctx context.Context, warehouse *domain.Warehouse) error {
	updates := map[string]interface{}{
		"name":       warehouse.Name,
		"address":    warehouse.Address,
		"city":       warehouse.City,
		"capacity":   warehouse.Capacity,
		"active":     warehouse.Active,
		"updated_at": warehouse.UpdatedAt,
	}
	result := r.db.WithContext(ctx).Model(&WarehouseModel{}).
		Where("code = ?", warehouse.Code).Updates(updates)
	if result.Error != nil {
		return pkgerrors.Wrapf(result.Error, "update warehouse %s", warehouse.Code)
	}
	if result.RowsAffected == 0 {
		return domain.ErrWarehouseNotFound
	}
	return nil
}

func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*domain.Warehouse, error) {
	var model WarehouseModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWarehouseNotFound
		}
		return nil, pkgerrors.Wrapf(err, "find warehouse %s", code)
	}
	return model.toDomainWarehouse(), nil
}

func (r *GormWarehouseRepository) FindAll(ctx context.Context, activeOnly bool) ([]*domain.Warehouse, error) {
	query := r.db.WithContext(ctx).Model(&WarehouseModel{}).Order("code ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var models []WarehouseModel
	if err := query.Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list warehouses")
	}
	out := make([]*domain.Warehouse, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomainWarehouse())
	}
	return out, nil
}

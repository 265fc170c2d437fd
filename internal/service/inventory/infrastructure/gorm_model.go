// internal/service/inventory/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"stockpile/internal/service/inventory/domain"
)

// StockModel 对应数据库中的 stock_record 表。
type StockModel struct {
	ID               uint   `gorm:"primaryKey"`
	SKU              string `gorm:"column:sku;uniqueIndex;size:100;not null"`
	ProductID        string `gorm:"column:product_id;uniqueIndex;size:100;not null"`
	ProductName      string `gorm:"size:255"`
	Description      string `gorm:"type:text"`
	Quantity         int    `gorm:"not null"`
	ReservedQuantity int    `gorm:"not null;default:0"`
	ReorderLevel     int
	MaxStockLevel    int
	UnitPrice        float64 `gorm:"type:decimal(10,2)"`
	WarehouseID      string  `gorm:"column:warehouse_id;index;size:100"`
	Location         string  `gorm:"size:50"`
	Version          int64   `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName 指定 GORM 使用的表名。
func (StockModel) TableName() string {
	return "stock_record"
}

func toDomainStock(m *StockModel) *domain.StockRecord {
	return &domain.StockRecord{
		SKU:              m.SKU,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		Description:      m.Description,
		Quantity:         m.Quantity,
		ReservedQuantity: m.ReservedQuantity,
		ReorderLevel:     m.ReorderLevel,
		MaxStockLevel:    m.MaxStockLevel,
		UnitPrice:        m.UnitPrice,
		WarehouseID:      m.WarehouseID,
		Location:         m.Location,
		Version:          m.Version,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// applyDomainStock 把领域对象的可变字段写回数据库模型。
// SKU 和 ProductID 创建后不可变，这里刻意不拷贝。
func applyDomainStock(m *StockModel, record *domain.StockRecord) {
	m.ProductName = record.ProductName
	m.Description = record.Description
	m.Quantity = record.Quantity
	m.ReservedQuantity = record.ReservedQuantity
	m.ReorderLevel = record.ReorderLevel
	m.MaxStockLevel = record.MaxStockLevel
	m.UnitPrice = record.UnitPrice
	m.WarehouseID = record.WarehouseID
	m.Location = record.Location
	m.Version = record.Version
}

func fromDomainStock(record *domain.StockRecord) *StockModel {
	return &StockModel{
		SKU:              record.SKU,
		ProductID:        record.ProductID,
		ProductName:      record.ProductName,
		Description:      record.Description,
		Quantity:         record.Quantity,
		ReservedQuantity: record.ReservedQuantity,
		ReorderLevel:     record.ReorderLevel,
		MaxStockLevel:    record.MaxStockLevel,
		UnitPrice:        record.UnitPrice,
		WarehouseID:      record.WarehouseID,
		Location:         record.Location,
		Version:          record.Version,
	}
}

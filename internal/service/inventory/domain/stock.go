// internal/service/inventory/domain/stock.go
package domain

import (
	"time"
)

// StockRecord 是库存账本的聚合根，每个 SKU 一条。
// 不变式: 0 <= ReservedQuantity <= Quantity，任何一次成功的变更之后都必须成立。
type StockRecord struct {
	SKU              string
	ProductID        string
	ProductName      string
	Description      string
	Quantity         int // 仓库实际在库数量
	ReservedQuantity int // 被未完成订单占用的数量
	ReorderLevel     int
	MaxStockLevel    int
	UnitPrice        float64
	WarehouseID      string
	Location         string
	Version          int64 // 每次变更自增，供不加锁的读取方做冲突检测
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewStockRecord 创建一条新的库存记录。
func NewStockRecord(sku, productID, productName string, quantity int, unitPrice float64, warehouseID string) (*StockRecord, error) {
	if sku == "" || productID == "" {
		return nil, ErrInvalidStock
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &StockRecord{
		SKU:         sku,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		WarehouseID: warehouseID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AvailableQuantity 是可以被新订单占用的数量。
func (s *StockRecord) AvailableQuantity() int {
	return s.Quantity - s.ReservedQuantity
}

// IsLowStock 判断是否已经触达补货线。
func (s *StockRecord) IsLowStock() bool {
	return s.Quantity <= s.ReorderLevel
}

// Reserve 占用 qty 个单位。检查和修改必须发生在同一次锁持有内，
// 这里只做状态变更，由仓储层保证锁语义。
func (s *StockRecord) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if s.AvailableQuantity() < qty {
		return ErrInsufficientStock
	}
	s.ReservedQuantity += qty
	return nil
}

// Release 把 qty 个单位归还到可用池，下限钳制到 0。
// 释放通常发生在失败清理路径上，超量释放不报错，只返回实际释放量
// 供调用方记录。
func (s *StockRecord) Release(qty int) (released int) {
	if qty <= 0 {
		return 0
	}
	released = qty
	if released > s.ReservedQuantity {
		released = s.ReservedQuantity
	}
	s.ReservedQuantity -= released
	return released
}

// Consume 表示预留的库存被真正发走：同时扣减预留量和在库量。
// 与 Release 是两个语义，Release 只归还可用池，不动在库量。
func (s *StockRecord) Consume(qty int) (consumed int) {
	if qty <= 0 {
		return 0
	}
	consumed = qty
	if consumed > s.ReservedQuantity {
		consumed = s.ReservedQuantity
	}
	s.ReservedQuantity -= consumed
	s.Quantity -= consumed
	if s.Quantity < 0 {
		s.Quantity = 0
	}
	return consumed
}

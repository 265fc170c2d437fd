// internal/service/warehouse/domain/warehouse.go
package domain

import (
	"errors"
	"time"
)

var (
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrWarehouseExists   = errors.New("warehouse already exists")
	ErrInvalidWarehouse  = errors.New("invalid warehouse")
)

// Warehouse 是仓库主数据。
type Warehouse struct {
	Code      string
	Name      string
	Address   string
	City      string
	Capacity  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWarehouse 创建一个启用状态的仓库。
func NewWarehouse(code, name, address, city string, capacity int) (*Warehouse, error) {
	if code == "" || name == "" || capacity < 0 {
		return nil, ErrInvalidWarehouse
	}
	now := time.Now()
	return &Warehouse{
		Code:      code,
		Name:      name,
		Address:   address,
		City:      city,
		Capacity:  capacity,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Deactivate 停用仓库。停用不会影响其下已有库存记录。
func (w *Warehouse) Deactivate() {
	w.Active = false
	w.UpdatedAt = time.Now()
}

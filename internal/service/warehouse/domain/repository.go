package domain

import "context"

// WarehouseRepository 仓库主数据的持久化接口。
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *Warehouse) error
	Update(ctx context.Context, warehouse *Warehouse) error
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*Warehouse, error)
}

// internal/service/order/port/inventory.go
package port

import "context"

// Availability 是库存服务返回的可售视图。
type Availability struct {
	ProductID         string  `json:"productId"`
	ProductName       string  `json:"productName"`
	SKU               string  `json:"sku"`
	AvailableQuantity int     `json:"availableQuantity"`
	UnitPrice         float64 `json:"unitPrice"`
	InStock           bool    `json:"inStock"`
}

// InventoryGateway 是订单服务访问库存服务的出站端口。
// Reserve/Release 返回的 bool 表示业务结果（是否成功预留/释放），
// error 只承载基础设施层面的失败（超时、连接拒绝等）。
type InventoryGateway interface {
	GetAvailability(ctx context.Context, productID string) (*Availability, error)
	Reserve(ctx context.Context, productID string, quantity int) (bool, error)
	Release(ctx context.Context, productID string, quantity int) (bool, error)
}

// internal/pkg/constants/constants.go
package constants

// 服务注册名，与 Nacos 上的注册保持一致。
const (
	InventoryService = "inventory-service"
	OrderService     = "order-service"
	WarehouseService = "warehouse-service"
	PushGateway      = "push-gateway"
)

// 库存服务的调用路径。
const (
	InventoryAvailabilityPath = "/api/v1/inventory/product"
	InventoryReservePath      = "/api/v1/inventory/reserve"
	InventoryReleasePath      = "/api/v1/inventory/release"
)

// Kafka 主题。
const (
	TopicStockEvents     = "stock-events"
	TopicOrderEvents     = "order-events"
	TopicWarehouseEvents = "warehouse-events"
)

// internal/service/inventory/domain/event.go
package domain

import "time"

// 库存事件类型。同一 SKU 的不同事件类型之间不保证顺序。
const (
	EventStockCreated  = "STOCK_CREATED"
	EventStockUpdated  = "STOCK_UPDATED"
	EventStockReserved = "STOCK_RESERVED"
	EventStockReleased = "STOCK_RELEASED"
	EventStockConsumed = "STOCK_CONSUMED"
	EventRestockAlert  = "RESTOCK_ALERT"
)

// StockEvent 是发往事件总线的库存变更通知。
type StockEvent struct {
	SKU              string    `json:"sku"`
	EventType        string    `json:"eventType"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reservedQuantity"`
	Delta            int       `json:"delta,omitempty"`
	WarehouseID      string    `json:"warehouseId,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}

// NewStockEvent 从一条记录生成事件快照。
func NewStockEvent(record *StockRecord, eventType string, delta int) *StockEvent {
	return &StockEvent{
		SKU:              record.SKU,
		EventType:        eventType,
		Quantity:         record.Quantity,
		ReservedQuantity: record.ReservedQuantity,
		Delta:            delta,
		WarehouseID:      record.WarehouseID,
		OccurredAt:       time.Now(),
	}
}

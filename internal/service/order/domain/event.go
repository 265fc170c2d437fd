// internal/service/order/domain/event.go
package domain

import "time"

// 订单事件类型。
const (
	EventOrderCreated       = "ORDER_CREATED"
	EventOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// OrderEvent 是发往事件总线的订单通知。
// 与库存事件一样是尽力而为：发布失败不回滚订单状态。
type OrderEvent struct {
	OrderNumber string    `json:"orderNumber"`
	EventType   string    `json:"eventType"`
	Status      Status    `json:"status"`
	CustomerID  string    `json:"customerId,omitempty"`
	TotalAmount float64   `json:"totalAmount,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// NewOrderEvent 从订单当前状态生成事件。
func NewOrderEvent(order *Order, eventType string) *OrderEvent {
	return &OrderEvent{
		OrderNumber: order.OrderNumber,
		EventType:   eventType,
		Status:      order.Status,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now(),
	}
}

// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义订单聚合的持久化接口，由基础设施层实现。
type OrderRepository interface {
	// Save 保存订单（创建或整体更新，条目一并持久化）。
	Save(ctx context.Context, order *Order) error

	// FindByNumber 按订单号查找。
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByCustomer 列出一个客户的全部订单。
	FindByCustomer(ctx context.Context, customerID string) ([]*Order, error)
}

// EventPublisher 是订单事件的出站端口。
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *OrderEvent)
}

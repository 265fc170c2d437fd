// internal/service/order/domain/order.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderItem 是订单内的一个条目。条目顺序即调用方提交的顺序，
// 预留和补偿都按这个顺序走，创建后不再重排。
type OrderItem struct {
	ProductID   string
	SKU         string
	ProductName string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
}

// Order 是订单聚合的根实体。
type Order struct {
	OrderNumber   string
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	Items         []OrderItem
	Status        Status
	TotalAmount   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrderNumber 生成形如 ORD-1A2B3C4D 的订单号。
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}

// NewOrder 创建一个 PENDING 状态的订单。
// items 必须非空且每个条目的数量为正。单价允许为零，
// 可售校验时会以库存侧的价格覆盖并重算金额。
func NewOrder(customerID, customerName, customerEmail string, items []OrderItem) (*Order, error) {
	if customerID == "" || len(items) == 0 {
		return nil, ErrInvalidOrder
	}
	var total float64
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidOrder
		}
		total += item.TotalPrice
	}
	now := time.Now()
	return &Order{
		OrderNumber:   NewOrderNumber(),
		CustomerID:    customerID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Items:         items,
		Status:        StatusPending,
		TotalAmount:   total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RecalculateTotal 按条目金额重算订单总额。
func (o *Order) RecalculateTotal() {
	var total float64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	o.TotalAmount = total
	o.UpdatedAt = time.Now()
}

// MarkConfirmed 预留全部成功后调用。
func (o *Order) MarkConfirmed() error {
	if o.Status != StatusPending {
		return fmt.Errorf("%w: %s -> CONFIRMED", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusConfirmed
	o.UpdatedAt = time.Now()
	return nil
}

// MarkFailed 预留失败并完成补偿后调用。
func (o *Order) MarkFailed() {
	o.Status = StatusFailed
	o.UpdatedAt = time.Now()
}

// Cancel 取消订单。发货后的订单不可取消。
// 预留的归还由应用层负责，这里只做状态流转。
func (o *Order) Cancel() error {
	if o.Status.IsPostFulfillment() {
		return ErrNotCancellable
	}
	if o.Status == StatusCancelled || o.Status == StatusFailed {
		return fmt.Errorf("%w: %s -> CANCELLED", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// MarkShipped 已确认的订单才能发货。
func (o *Order) MarkShipped() error {
	if o.Status != StatusConfirmed {
		return fmt.Errorf("%w: %s -> SHIPPED", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusShipped
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered 已发货的订单才能签收。
func (o *Order) MarkDelivered() error {
	if o.Status != StatusShipped {
		return fmt.Errorf("%w: %s -> DELIVERED", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}

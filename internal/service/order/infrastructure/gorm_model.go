// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"stockpile/internal/service/order/domain"
)

// OrderModel 是订单表的 GORM 映射。
type OrderModel struct {
	ID            uint             `gorm:"primaryKey;autoIncrement"`
	OrderNumber   string           `gorm:"column:order_number;type:varchar(32);uniqueIndex;not null"`
	CustomerID    string           `gorm:"column:customer_id;type:varchar(64);index;not null"`
	CustomerName  string           `gorm:"column:customer_name;type:varchar(128)"`
	CustomerEmail string           `gorm:"column:customer_email;type:varchar(128)"`
	Status        string           `gorm:"column:status;type:varchar(16);not null"`
	TotalAmount   float64          `gorm:"column:total_amount;not null"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderNumber;references:OrderNumber"`
	CreatedAt     time.Time        `gorm:"column:created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 是订单条目表的 GORM 映射。
// position 保存条目在订单内的原始顺序，读取时按它排序。
type OrderItemModel struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	OrderNumber string  `gorm:"column:order_number;type:varchar(32);index;not null"`
	Position    int     `gorm:"column:position;not null"`
	ProductID   string  `gorm:"column:product_id;type:varchar(64);not null"`
	SKU         string  `gorm:"column:sku;type:varchar(64)"`
	ProductName string  `gorm:"column:product_name;type:varchar(128)"`
	Quantity    int     `gorm:"column:quantity;not null"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	TotalPrice  float64 `gorm:"column:total_price"`
}

func (OrderItemModel) TableName() string { return "order_items" }

func fromDomainOrder(order *domain.Order) *OrderModel {
	items := make([]OrderItemModel, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, OrderItemModel{
			OrderNumber: order.OrderNumber,
			Position:    i,
			ProductID:   item.ProductID,
			SKU:         item.SKU,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return &OrderModel{
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount,
		Items:         items,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func (m *OrderModel) toDomainOrder() *domain.Order {
	items := make([]domain.OrderItem, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			SKU:         item.SKU,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return &domain.Order{
		OrderNumber:   m.OrderNumber,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		Items:         items,
		Status:        domain.Status(m.Status),
		TotalAmount:   m.TotalAmount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

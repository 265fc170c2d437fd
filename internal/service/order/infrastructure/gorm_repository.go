// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"stockpile/internal/service/order/domain"
)

// GormOrderRepository 是订单仓储的 MySQL 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) (*GormOrderRepository, error) {
	if err := db.AutoMigrate(&OrderModel{}, &OrderItemModel{}); err != nil {
		return nil, pkgerrors.Wrap(err, "migrate order tables")
	}
	return &GormOrderRepository{db: db}, nil
}

// Save 以订单号为键做整单落库：订单行 upsert，条目整体重写。
// 条目数量小，整删整插比逐行 diff 简单得多。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := fromDomainOrder(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing OrderModel
		err := tx.Where("order_number = ?", order.OrderNumber).First(&existing).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"status":       model.Status,
				"total_amount": model.TotalAmount,
				"updated_at":   model.UpdatedAt,
			}
			if err := tx.Model(&OrderModel{}).
				Where("order_number = ?", order.OrderNumber).
				Updates(updates).Error; err != nil {
				return err
			}
		case pkgerrors.Is(err, gorm.ErrRecordNotFound):
			orderRow := *model
			orderRow.Items = nil
			if err := tx.Create(&orderRow).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if err := tx.Where("order_number = ?", order.OrderNumber).
			Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "save order %s", order.OrderNumber)
	}
	return nil
}

// FindByNumber 按订单号查找，条目按原始顺序返回。
func (r *GormOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("order_number = ?", orderNumber).
		First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, pkgerrors.Wrapf(err, "find order %s", orderNumber)
	}
	return model.toDomainOrder(), nil
}

// FindByCustomer 列出一个客户的订单，新订单在前。
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find orders for customer %s", customerID)
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, models[i].toDomainOrder())
	}
	return orders, nil
}

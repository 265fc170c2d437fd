// internal/service/order/domain/errors.go
package domain

import "errors"

var (
	// ErrOrderNotFound 订单不存在。
	ErrOrderNotFound = errors.New("order not found")

	// ErrInsufficientInventory 至少一个条目的库存不足，订单以 FAILED 结束。
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrNotCancellable 订单已发货或签收，不可取消，状态不变。
	ErrNotCancellable = errors.New("order can no longer be cancelled")

	// ErrInvalidOrder 请求缺少必填字段或条目非法。
	ErrInvalidOrder = errors.New("invalid order request")

	// ErrInvalidTransition 非法的状态流转。
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// internal/service/inventory/domain/errors.go
package domain

import "errors"

var (
	// ErrStockNotFound SKU 或商品不存在。
	ErrStockNotFound = errors.New("stock record not found")

	// ErrInsufficientStock 可用量不足，属于业务预期内的结果而非系统故障。
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrLockTimeout 在限定时间内没有获取到单 SKU 锁，调用方可整体重试。
	ErrLockTimeout = errors.New("timed out waiting for stock lock")

	// ErrStockExists 创建时 SKU 已存在。
	ErrStockExists = errors.New("stock record already exists")

	// ErrInvalidStock 缺少必填字段。
	ErrInvalidStock = errors.New("invalid stock record")

	// ErrInvalidQuantity 非法数量参数。
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

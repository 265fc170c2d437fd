// internal/service/order/domain/state.go
package domain

// Status 定义订单的生命周期状态。
type Status string

const (
	StatusPending   Status = "PENDING"   // 已落库，预留尚未完成
	StatusConfirmed Status = "CONFIRMED" // 全部条目预留成功
	StatusFailed    Status = "FAILED"    // 预留失败，已补偿
	StatusCancelled Status = "CANCELLED" // 用户取消，预留已归还
	StatusShipped   Status = "SHIPPED"   // 已发货
	StatusDelivered Status = "DELIVERED" // 已签收
)

// terminal 状态不允许取消。
func (s Status) IsPostFulfillment() bool {
	return s == StatusShipped || s == StatusDelivered
}

// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 预留/释放的结果标签。
const (
	ResultOK           = "ok"
	ResultInsufficient = "insufficient"
	ResultNotFound     = "not_found"
	ResultLockTimeout  = "lock_timeout"
	ResultError        = "error"
)

var (
	// StockReservations 按结果统计预留请求。
	StockReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpile_stock_reservations_total",
		Help: "Stock reservation attempts by result.",
	}, []string{"result"})

	// StockReleasedUnits 统计被释放回可用池的库存单位数。
	StockReleasedUnits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockpile_stock_released_units_total",
		Help: "Stock units released back to the available pool.",
	})

	// ReleaseClamped 统计释放量超过已预留量而被截断的次数，
	// 正常情况下应恒为 0，非 0 说明上游存在重复释放。
	ReleaseClamped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockpile_stock_release_clamped_total",
		Help: "Release calls that exceeded the reserved quantity and were clamped.",
	})

	// OrderSagas 按最终结果统计订单编排。
	OrderSagas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpile_order_sagas_total",
		Help: "Order reservation sagas by outcome.",
	}, []string{"outcome"})

	// EventPublishFailures 统计事件发布失败次数（事件是尽力而为，不回滚状态）。
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpile_event_publish_failures_total",
		Help: "Fire-and-forget event publish failures by topic.",
	}, []string{"topic"})
)

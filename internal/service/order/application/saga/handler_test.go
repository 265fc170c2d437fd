package saga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockpile/internal/service/order/domain"
)

// 补偿必须按注册的逆序执行。
func TestTriggerCompensationRunsInReverseOrder(t *testing.T) {
	orderCtx := &OrderContext{Order: &domain.Order{OrderNumber: "ORD-TEST"}}

	var ran []int
	for i := 1; i <= 3; i++ {
		i := i
		orderCtx.AddCompensation(func(context.Context) { ran = append(ran, i) })
	}
	assert.Equal(t, 3, orderCtx.CompensationCount())

	orderCtx.TriggerCompensation(context.Background())
	assert.Equal(t, []int{3, 2, 1}, ran)

	// 触发后列表清空，重复触发是空操作
	assert.Equal(t, 0, orderCtx.CompensationCount())
	orderCtx.TriggerCompensation(context.Background())
	assert.Equal(t, []int{3, 2, 1}, ran)
}

type recordingHandler struct {
	NextHandler
	name string
	log  *[]string
	fail bool
}

func (h *recordingHandler) Handle(orderCtx *OrderContext) error {
	*h.log = append(*h.log, h.name)
	if h.fail {
		return assert.AnError
	}
	return h.executeNext(orderCtx)
}

// 链在第一个失败的步骤处停止，后续步骤不执行。
func TestChainStopsAtFirstFailure(t *testing.T) {
	var log []string
	first := &recordingHandler{name: "first", log: &log}
	second := &recordingHandler{name: "second", log: &log, fail: true}
	third := &recordingHandler{name: "third", log: &log}
	first.SetNext(second).SetNext(third)

	err := first.Handle(&OrderContext{Order: &domain.Order{OrderNumber: "ORD-TEST"}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"first", "second"}, log)
}

package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []OrderItem {
	return []OrderItem{
		{ProductID: "P-A", Quantity: 2, UnitPrice: 5, TotalPrice: 10},
		{ProductID: "P-B", Quantity: 1, UnitPrice: 3, TotalPrice: 3},
	}
}

func TestNewOrder(t *testing.T) {
	order, err := NewOrder("C-1", "Ada", "ada@example.com", testItems())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, 13.0, order.TotalAmount)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Len(t, order.Items, 2)
}

func TestNewOrderValidation(t *testing.T) {
	_, err := NewOrder("", "Ada", "", testItems())
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewOrder("C-1", "Ada", "", nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewOrder("C-1", "Ada", "", []OrderItem{{ProductID: "P-A", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestRecalculateTotal(t *testing.T) {
	order, err := NewOrder("C-1", "Ada", "", testItems())
	require.NoError(t, err)

	order.Items[0].TotalPrice = 20
	order.RecalculateTotal()
	assert.Equal(t, 23.0, order.TotalAmount)
}

func TestStatusTransitions(t *testing.T) {
	order, err := NewOrder("C-1", "Ada", "", testItems())
	require.NoError(t, err)

	// 未确认不能发货
	assert.ErrorIs(t, order.MarkShipped(), ErrInvalidTransition)

	require.NoError(t, order.MarkConfirmed())
	assert.Equal(t, StatusConfirmed, order.Status)

	// 确认是一次性的
	assert.ErrorIs(t, order.MarkConfirmed(), ErrInvalidTransition)

	// 未发货不能签收
	assert.ErrorIs(t, order.MarkDelivered(), ErrInvalidTransition)

	require.NoError(t, order.MarkShipped())
	require.NoError(t, order.MarkDelivered())
	assert.Equal(t, StatusDelivered, order.Status)
}

func TestCancelPendingAndConfirmed(t *testing.T) {
	order, err := NewOrder("C-1", "Ada", "", testItems())
	require.NoError(t, err)
	require.NoError(t, order.Cancel())
	assert.Equal(t, StatusCancelled, order.Status)

	order, err = NewOrder("C-1", "Ada", "", testItems())
	require.NoError(t, err)
	require.NoError(t, order.MarkConfirmed())
	require.NoError(t, order.Cancel())
	assert.Equal(t, StatusCancelled, order.Status)
}

// 发货之后取消被拒绝，状态保持不变。
func TestCancelAfterShipmentRejected(t *testing.T) {
	order, err := NewOrder("C-1", "Ada", "", testItems())
	require.NoError(t, err)
	require.NoError(t, order.MarkConfirmed())
	require.NoError(t, order.MarkShipped())

	assert.ErrorIs(t, order.Cancel(), ErrNotCancellable)
	assert.Equal(t, StatusShipped, order.Status)

	require.NoError(t, order.MarkDelivered())
	assert.ErrorIs(t, order.Cancel(), ErrNotCancellable)
	assert.Equal(t, StatusDelivered, order.Status)
}

func TestCancelTerminalStates(t *testing.T) {
	order, err := NewOrder("C-1", "Ada", "", testItems())
	require.NoError(t, err)
	require.NoError(t, order.Cancel())
	assert.ErrorIs(t, order.Cancel(), ErrInvalidTransition)

	order, err = NewOrder("C-1", "Ada", "", testItems())
	require.NoError(t, err)
	order.MarkFailed()
	assert.ErrorIs(t, order.Cancel(), ErrInvalidTransition)
}

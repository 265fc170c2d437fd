package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, quantity int) *StockRecord {
	t.Helper()
	record, err := NewStockRecord("SKU-001", "P-001", "widget", quantity, 9.99, "WH-1")
	require.NoError(t, err)
	return record
}

func TestNewStockRecordValidation(t *testing.T) {
	_, err := NewStockRecord("", "P-001", "widget", 10, 1, "WH-1")
	assert.ErrorIs(t, err, ErrInvalidStock)

	_, err = NewStockRecord("SKU-001", "", "widget", 10, 1, "WH-1")
	assert.ErrorIs(t, err, ErrInvalidStock)

	_, err = NewStockRecord("SKU-001", "P-001", "widget", -1, 1, "WH-1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReserve(t *testing.T) {
	record := newRecord(t, 10)

	require.NoError(t, record.Reserve(4))
	assert.Equal(t, 4, record.ReservedQuantity)
	assert.Equal(t, 6, record.AvailableQuantity())

	// 可用量不足时整单拒绝，状态不变
	err := record.Reserve(7)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 4, record.ReservedQuantity)
	assert.Equal(t, 10, record.Quantity)

	// 恰好用完可用量是允许的
	require.NoError(t, record.Reserve(6))
	assert.Equal(t, 0, record.AvailableQuantity())

	err = record.Reserve(1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestReserveRejectsNonPositive(t *testing.T) {
	record := newRecord(t, 10)
	assert.ErrorIs(t, record.Reserve(0), ErrInvalidQuantity)
	assert.ErrorIs(t, record.Reserve(-3), ErrInvalidQuantity)
	assert.Equal(t, 0, record.ReservedQuantity)
}

func TestReserveThenReleaseRestoresAvailability(t *testing.T) {
	record := newRecord(t, 10)

	require.NoError(t, record.Reserve(10))
	assert.Equal(t, 0, record.AvailableQuantity())

	released := record.Release(10)
	assert.Equal(t, 10, released)
	assert.Equal(t, 10, record.AvailableQuantity())
	assert.Equal(t, 10, record.Quantity)
}

func TestReleaseClampsAtZero(t *testing.T) {
	record := newRecord(t, 10)
	require.NoError(t, record.Reserve(3))

	// 超量释放不报错，按实际预留量截断
	released := record.Release(5)
	assert.Equal(t, 3, released)
	assert.Equal(t, 0, record.ReservedQuantity)

	// 预留为零时重复释放是空操作
	released = record.Release(5)
	assert.Equal(t, 0, released)
	assert.Equal(t, 0, record.ReservedQuantity)
	assert.Equal(t, 10, record.Quantity)
}

func TestReleaseIgnoresNonPositive(t *testing.T) {
	record := newRecord(t, 10)
	require.NoError(t, record.Reserve(3))
	assert.Equal(t, 0, record.Release(0))
	assert.Equal(t, 0, record.Release(-1))
	assert.Equal(t, 3, record.ReservedQuantity)
}

func TestConsumeRemovesFromBothPools(t *testing.T) {
	record := newRecord(t, 10)
	require.NoError(t, record.Reserve(4))

	consumed := record.Consume(4)
	assert.Equal(t, 4, consumed)
	assert.Equal(t, 6, record.Quantity)
	assert.Equal(t, 0, record.ReservedQuantity)
	assert.Equal(t, 6, record.AvailableQuantity())

	// Consume 同样以预留量为上限
	require.NoError(t, record.Reserve(2))
	consumed = record.Consume(5)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, 4, record.Quantity)
}

func TestIsLowStock(t *testing.T) {
	record := newRecord(t, 10)
	record.ReorderLevel = 5
	assert.False(t, record.IsLowStock())

	record.Quantity = 5
	assert.True(t, record.IsLowStock())
}

// 不变式 0 <= reserved <= quantity 在任意操作序列后都成立。
func TestInvariantHoldsAcrossMixedOperations(t *testing.T) {
	record := newRecord(t, 20)
	ops := []func(){
		func() { _ = record.Reserve(5) },
		func() { record.Release(2) },
		func() { _ = record.Reserve(30) }, // 会被拒绝
		func() { record.Consume(3) },
		func() { record.Release(100) }, // 会被截断
		func() { _ = record.Reserve(1) },
	}
	for _, op := range ops {
		op()
		assert.GreaterOrEqual(t, record.ReservedQuantity, 0)
		assert.LessOrEqual(t, record.ReservedQuantity, record.Quantity)
	}
}

package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpile/internal/service/inventory/domain"
)

func record(quantity, reserved, reorderLevel int, warehouseID string) *domain.StockRecord {
	return &domain.StockRecord{
		SKU:              "SKU-A",
		ProductID:        "P-A",
		Quantity:         quantity,
		ReservedQuantity: reserved,
		ReorderLevel:     reorderLevel,
		WarehouseID:      warehouseID,
	}
}

func TestCompileRejectsBadRule(t *testing.T) {
	_, err := NewCELAlertEngine([]string{"quantity <=="})
	assert.Error(t, err)

	// 未声明的变量同样在编译期失败
	_, err = NewCELAlertEngine([]string{"unknownField > 0"})
	assert.Error(t, err)
}

func TestEmptyRulesFallBackToReorderLevel(t *testing.T) {
	engine, err := NewCELAlertEngine(nil)
	require.NoError(t, err)

	hit, err := engine.ShouldAlert(record(10, 0, 5, "WH-1"))
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = engine.ShouldAlert(record(5, 0, 5, "WH-1"))
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestSingleRule(t *testing.T) {
	engine, err := NewCELAlertEngine([]string{"availableQuantity < 10"})
	require.NoError(t, err)

	hit, err := engine.ShouldAlert(record(20, 5, 0, "WH-1"))
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = engine.ShouldAlert(record(12, 5, 0, "WH-1"))
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestAnyRuleHitAlerts(t *testing.T) {
	engine, err := NewCELAlertEngine([]string{
		"quantity <= reorderLevel",
		"warehouseId == 'WH-EAST' && availableQuantity < 50",
	})
	require.NoError(t, err)

	// 第一条不命中，第二条命中
	hit, err := engine.ShouldAlert(record(100, 60, 5, "WH-EAST"))
	require.NoError(t, err)
	assert.True(t, hit)

	// 两条都不命中
	hit, err = engine.ShouldAlert(record(100, 60, 5, "WH-WEST"))
	require.NoError(t, err)
	assert.False(t, hit)
}

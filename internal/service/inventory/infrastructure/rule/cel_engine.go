// internal/service/inventory/infrastructure/rule/cel_engine.go
package rule

import (
	"fmt"

	"stockpile/internal/service/inventory/domain"

	"github.com/google/cel-go/cel"
)

// CELAlertEngine 是 domain.AlertRuleEngine 的 CEL 实现。
// 补货告警规则以 CEL 表达式的形式下发（本地配置或配置中心），
// 例如 "quantity <= reorderLevel" 或
// "warehouseId == 'WH-EAST' && availableQuantity < 20"。
// 规则在创建时编译一次，之后的评估只是求值。
type CELAlertEngine struct {
	programs []cel.Program
}

// NewCELAlertEngine 编译规则表达式。
// 任何一条编译失败都直接返回错误，坏规则不应该被静默跳过。
func NewCELAlertEngine(expressions []string) (*CELAlertEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("sku", cel.StringType),
		cel.Variable("quantity", cel.IntType),
		cel.Variable("reservedQuantity", cel.IntType),
		cel.Variable("availableQuantity", cel.IntType),
		cel.Variable("reorderLevel", cel.IntType),
		cel.Variable("maxStockLevel", cel.IntType),
		cel.Variable("warehouseId", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	programs := make([]cel.Program, 0, len(expressions))
	for _, expr := range expressions {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("invalid restock rule %q: %w", expr, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to build program for rule %q: %w", expr, err)
		}
		programs = append(programs, prg)
	}
	return &CELAlertEngine{programs: programs}, nil
}

// ShouldAlert 任意一条规则命中即告警。
func (e *CELAlertEngine) ShouldAlert(record *domain.StockRecord) (bool, error) {
	if len(e.programs) == 0 {
		// 没有配置规则时退回内置的补货线判断
		return record.IsLowStock(), nil
	}

	fact := map[string]interface{}{
		"sku":               record.SKU,
		"quantity":          record.Quantity,
		"reservedQuantity":  record.ReservedQuantity,
		"availableQuantity": record.AvailableQuantity(),
		"reorderLevel":      record.ReorderLevel,
		"maxStockLevel":     record.MaxStockLevel,
		"warehouseId":       record.WarehouseID,
	}

	for _, prg := range e.programs {
		out, _, err := prg.Eval(fact)
		if err != nil {
			return false, fmt.Errorf("restock rule evaluation failed: %w", err)
		}
		if hit, ok := out.Value().(bool); ok && hit {
			return true, nil
		}
	}
	return false, nil
}

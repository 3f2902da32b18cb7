// Package benchmark compares actual category spend against industry-standard
// reference ranges.
package benchmark

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// Engine answers variance queries against a validated benchmark table.
type Engine struct {
	table map[string]model.CategoryBenchmark
}

// NewEngine builds an engine from an already-validated table.
func NewEngine(table *Table) *Engine {
	return &Engine{table: table.entries}
}

// Variance computes how actual spend compares to the benchmark for the given
// category. When the exact path has no entry the hierarchy is walked upward
// (stripping trailing segments) until a match is found; if the table is
// exhausted the result has status unknown and no variance value.
func (e *Engine) Variance(categoryPath string, actualSpend decimal.Decimal) model.VarianceResult {
	result := model.VarianceResult{
		CategoryPath: categoryPath,
		ActualSpend:  actualSpend,
		Status:       model.StatusUnknown,
	}

	bench, ok := e.lookup(categoryPath)
	if !ok {
		return result
	}
	result.Benchmark = bench

	// Table validation guarantees typical > 0, so the division is safe.
	variance := actualSpend.Sub(bench.Typical).
		Div(bench.Typical).
		Mul(decimal.NewFromInt(100))
	pct, _ := variance.Float64()
	result.VariancePct = math.Round(pct*10) / 10

	switch {
	case actualSpend.GreaterThan(bench.High):
		result.Status = model.StatusAboveBenchmark
	case actualSpend.LessThan(bench.Low):
		result.Status = model.StatusBelowBenchmark
	default:
		result.Status = model.StatusAtBenchmark
	}

	return result
}

// Lookup returns the benchmark that would be applied to a category, walking
// up the hierarchy as needed.
func (e *Engine) Lookup(categoryPath string) (model.CategoryBenchmark, bool) {
	return e.lookup(categoryPath)
}

func (e *Engine) lookup(categoryPath string) (model.CategoryBenchmark, bool) {
	for path := categoryPath; path != ""; path = model.ParentCategory(path) {
		if bench, ok := e.table[path]; ok {
			return bench, true
		}
	}
	return model.CategoryBenchmark{}, false
}

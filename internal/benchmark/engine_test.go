package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultTable())
}

func TestVariance_AboveBenchmark(t *testing.T) {
	engine := testEngine(t)

	result := engine.Variance("it_services", d(4133715.35))

	assert.Equal(t, model.StatusAboveBenchmark, result.Status)
	assert.InDelta(t, 344.5, result.VariancePct, 0.001)
}

func TestVariance_BelowBenchmark(t *testing.T) {
	engine := testEngine(t)

	result := engine.Variance("it_services", d(100000))

	assert.Equal(t, model.StatusBelowBenchmark, result.Status)
	assert.InDelta(t, -89.2, result.VariancePct, 0.05)
}

func TestVariance_AtBenchmark(t *testing.T) {
	engine := testEngine(t)

	result := engine.Variance("it_services", d(930000))

	assert.Equal(t, model.StatusAtBenchmark, result.Status)
	assert.InDelta(t, 0.0, result.VariancePct, 0.001)

	// Range boundaries are inclusive.
	assert.Equal(t, model.StatusAtBenchmark, engine.Variance("it_services", d(630000)).Status)
	assert.Equal(t, model.StatusAtBenchmark, engine.Variance("it_services", d(1270000)).Status)
}

func TestVariance_HierarchyWalkUp(t *testing.T) {
	engine := testEngine(t)

	// No entry for the leaf; the it_services entry applies.
	result := engine.Variance("it_services/cloud_services/managed_services", d(930000))

	assert.Equal(t, model.StatusAtBenchmark, result.Status)
	assert.Equal(t, "it_services", result.Benchmark.CategoryPath)
}

func TestVariance_UnknownCategory(t *testing.T) {
	engine := testEngine(t)

	result := engine.Variance("hospitality/catering", d(50000))

	assert.Equal(t, model.StatusUnknown, result.Status)
	assert.Zero(t, result.VariancePct)
}

func TestVariance_Monotonic(t *testing.T) {
	engine := testEngine(t)

	prev := engine.Variance("it_services", d(0)).VariancePct
	for spend := 100000.0; spend <= 5000000; spend += 100000 {
		current := engine.Variance("it_services", d(spend)).VariancePct
		assert.GreaterOrEqual(t, current, prev,
			"variance must not decrease as spend grows (spend=%v)", spend)
		prev = current
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name  string
		entry model.CategoryBenchmark
	}{
		{
			name:  "zero typical",
			entry: model.CategoryBenchmark{CategoryPath: "x", Low: d(0), Typical: d(0), High: d(10)},
		},
		{
			name:  "negative typical",
			entry: model.CategoryBenchmark{CategoryPath: "x", Low: d(-20), Typical: d(-10), High: d(10)},
		},
		{
			name:  "low above typical",
			entry: model.CategoryBenchmark{CategoryPath: "x", Low: d(20), Typical: d(10), High: d(30)},
		},
		{
			name:  "typical above high",
			entry: model.CategoryBenchmark{CategoryPath: "x", Low: d(5), Typical: d(40), High: d(30)},
		},
		{
			name:  "empty category",
			entry: model.CategoryBenchmark{Low: d(5), Typical: d(10), High: d(30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable([]model.CategoryBenchmark{tt.entry})
			assert.Error(t, err)
		})
	}
}

func TestNewTable_DuplicateCategory(t *testing.T) {
	entries := []model.CategoryBenchmark{
		{CategoryPath: "x", Low: d(1), Typical: d(2), High: d(3)},
		{CategoryPath: "x", Low: d(1), Typical: d(2), High: d(3)},
	}
	_, err := NewTable(entries)
	assert.Error(t, err)
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.yaml")
	content := `benchmarks:
  - category: it_services
    low: 630000
    typical: 930000
    high: 1270000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)

	engine := NewEngine(table)
	result := engine.Variance("it_services", d(930000))
	assert.Equal(t, model.StatusAtBenchmark, result.Status)
}

func TestLoadTable_InvalidData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.yaml")
	content := `benchmarks:
  - category: it_services
    low: 100
    typical: 0
    high: 200
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadTable(path)
	assert.Error(t, err)
}

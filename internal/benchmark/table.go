package benchmark

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
)

// Table is a validated set of category benchmarks, loaded once at startup
// and treated as read-only reference data.
type Table struct {
	entries map[string]model.CategoryBenchmark
}

// NewTable validates and indexes benchmarks. Zero or negative typical values
// and inverted ranges are load-time errors, never handled at query time.
func NewTable(benchmarks []model.CategoryBenchmark) (*Table, error) {
	entries := make(map[string]model.CategoryBenchmark, len(benchmarks))

	for _, b := range benchmarks {
		if b.CategoryPath == "" {
			return nil, fmt.Errorf("%w: benchmark with empty category path", common.ErrInvalidConfig)
		}
		if !b.Typical.IsPositive() {
			return nil, fmt.Errorf("%w: benchmark %s has non-positive typical value %s",
				common.ErrInvalidConfig, b.CategoryPath, b.Typical)
		}
		if b.Low.GreaterThan(b.Typical) || b.Typical.GreaterThan(b.High) {
			return nil, fmt.Errorf("%w: benchmark %s violates low <= typical <= high (%s/%s/%s)",
				common.ErrInvalidConfig, b.CategoryPath, b.Low, b.Typical, b.High)
		}
		if _, dup := entries[b.CategoryPath]; dup {
			return nil, fmt.Errorf("%w: duplicate benchmark for %s", common.ErrInvalidConfig, b.CategoryPath)
		}
		entries[b.CategoryPath] = b
	}

	return &Table{entries: entries}, nil
}

// Entries returns the benchmarks in the table.
func (t *Table) Entries() []model.CategoryBenchmark {
	out := make([]model.CategoryBenchmark, 0, len(t.entries))
	for _, b := range t.entries {
		out = append(out, b)
	}
	return out
}

// LoadTable reads a benchmark table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark file: %w", err)
	}

	var file struct {
		Benchmarks []struct {
			Category string  `yaml:"category"`
			Low      float64 `yaml:"low"`
			Typical  float64 `yaml:"typical"`
			High     float64 `yaml:"high"`
		} `yaml:"benchmarks"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark file: %w", err)
	}

	benchmarks := make([]model.CategoryBenchmark, 0, len(file.Benchmarks))
	for _, b := range file.Benchmarks {
		benchmarks = append(benchmarks, model.CategoryBenchmark{
			CategoryPath: b.Category,
			Low:          decimal.NewFromFloat(b.Low),
			Typical:      decimal.NewFromFloat(b.Typical),
			High:         decimal.NewFromFloat(b.High),
		})
	}

	return NewTable(benchmarks)
}

// DefaultTable returns the built-in benchmark table: annual spend ranges per
// top-level category for a mid-size IT budget, expressed as absolute currency
// values.
func DefaultTable() *Table {
	d := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

	table, err := NewTable([]model.CategoryBenchmark{
		{CategoryPath: "it_services", Low: d(630_000), Typical: d(930_000), High: d(1_270_000)},
		{CategoryPath: "enterprise_software", Low: d(500_000), Typical: d(760_000), High: d(1_050_000)},
		{CategoryPath: "security_software", Low: d(340_000), Typical: d(510_000), High: d(630_000)},
		{CategoryPath: "development_tools", Low: d(210_000), Typical: d(340_000), High: d(500_000)},
		{CategoryPath: "cloud_services", Low: d(420_000), Typical: d(590_000), High: d(760_000)},
		{CategoryPath: "corporate_software", Low: d(210_000), Typical: d(300_000), High: d(420_000)},
	})
	if err != nil {
		// The built-in table is fixed at compile time.
		panic(err)
	}
	return table
}

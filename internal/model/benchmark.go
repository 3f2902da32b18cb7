package model

import "github.com/shopspring/decimal"

// VarianceStatus classifies actual spend against a benchmark range.
type VarianceStatus string

// Variance status constants.
const (
	StatusAboveBenchmark VarianceStatus = "above_benchmark"
	StatusBelowBenchmark VarianceStatus = "below_benchmark"
	StatusAtBenchmark    VarianceStatus = "at_benchmark"
	StatusUnknown        VarianceStatus = "unknown"
)

// CategoryBenchmark is a reference spend range for one category, sourced from
// industry data. Loaded once at startup and treated as read-only.
type CategoryBenchmark struct {
	CategoryPath string          `json:"category"`
	Low          decimal.Decimal `json:"low"`
	Typical      decimal.Decimal `json:"typical"`
	High         decimal.Decimal `json:"high"`
}

// VarianceResult is the outcome of comparing actual spend against a
// benchmark. VariancePct is meaningful only when Status is not unknown.
type VarianceResult struct {
	CategoryPath string            `json:"category"`
	Benchmark    CategoryBenchmark `json:"benchmark"`
	ActualSpend  decimal.Decimal   `json:"actual_spend"`
	VariancePct  float64           `json:"variance_pct"`
	Status       VarianceStatus    `json:"status"`
}

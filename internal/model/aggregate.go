package model

import "github.com/shopspring/decimal"

// Dimension is an aggregation axis.
type Dimension string

// Aggregation dimensions.
const (
	DimensionVendor   Dimension = "vendor"
	DimensionCompany  Dimension = "company"
	DimensionCategory Dimension = "category"
	DimensionMonth    Dimension = "month"
	DimensionQuarter  Dimension = "quarter"
	DimensionYear     Dimension = "year"
)

// IsPeriod reports whether the dimension buckets records by invoice date.
func (d Dimension) IsPeriod() bool {
	return d == DimensionMonth || d == DimensionQuarter || d == DimensionYear
}

// AllDimensions lists every aggregation axis in presentation order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionVendor, DimensionCompany, DimensionCategory,
		DimensionMonth, DimensionQuarter, DimensionYear,
	}
}

// AggregateBucket is one rollup row produced by the aggregator.
type AggregateBucket struct {
	Dimension         Dimension       `json:"dimension"`
	Key               string          `json:"key"`
	TotalSpend        decimal.Decimal `json:"total_spend"`
	RecordCount       int             `json:"record_count"`
	PercentageOfTotal float64         `json:"percentage_of_total"`
	// GrowthRate is the change versus the previous period, populated only for
	// period dimensions. It is nil when there is no previous period or the
	// previous period total was zero.
	GrowthRate *float64 `json:"growth_rate,omitempty"`
}

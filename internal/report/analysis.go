// Package report assembles pipeline output into an analysis payload and
// renders it as markdown or dashboard JSON.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/aggregate"
	"github.com/spendlens/spendlens/internal/benchmark"
	"github.com/spendlens/spendlens/internal/dedupe"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/recommend"
	"github.com/spendlens/spendlens/internal/service"
)

// Summary is the headline figures of an analysis run.
type Summary struct {
	TotalSpend       decimal.Decimal `json:"total_spend"`
	RecordCount      int             `json:"record_count"`
	VendorCount      int             `json:"vendor_count"`
	CompanyCount     int             `json:"company_count"`
	CategoryCount    int             `json:"category_count"`
	UncategorizedPct float64         `json:"uncategorized_pct"`
	PeriodStart      string          `json:"period_start,omitempty"`
	PeriodEnd        string          `json:"period_end,omitempty"`
}

// DataQuality reports what deduplication and validation did to the input.
type DataQuality struct {
	OriginalCount   int     `json:"original_count"`
	KeptCount       int     `json:"kept_count"`
	RemovedCount    int     `json:"removed_count"`
	DuplicateRate   float64 `json:"duplicate_rate"`
	QualityScore    float64 `json:"quality_score"`
	QuarantinedRows int     `json:"quarantined_rows"`
}

// Analysis is the complete output of one pipeline run. The dashboard server
// and all renderers consume this struct as-is.
type Analysis struct {
	GeneratedAt     time.Time                          `json:"generated_at"`
	Summary         Summary                            `json:"summary"`
	Aggregates      map[string][]model.AggregateBucket `json:"aggregates"`
	Variances       []model.VarianceResult             `json:"benchmark_variances"`
	Recommendations []model.Recommendation             `json:"recommendations"`
	DataQuality     DataQuality                        `json:"data_quality"`
	CacheStats      *service.CacheStats                `json:"cache_stats,omitempty"`
	NeedsReview     []string                           `json:"needs_review,omitempty"`
}

// BuildInput carries the pipeline artifacts the builder consumes.
type BuildInput struct {
	Records         []*model.InvoiceRecord
	DedupeResult    *dedupe.Result
	Engine          *benchmark.Engine
	Recommender     *recommend.Generator
	CacheStats      *service.CacheStats
	NeedsReview     []string
	QuarantinedRows int
}

// Build aggregates kept records across every dimension, computes benchmark
// variances for the category dimension, and derives recommendations.
func Build(in BuildInput) (*Analysis, error) {
	a := &Analysis{
		GeneratedAt: time.Now().UTC(),
		Aggregates:  make(map[string][]model.AggregateBucket, len(model.AllDimensions())),
		CacheStats:  in.CacheStats,
		NeedsReview: in.NeedsReview,
	}

	for _, dim := range model.AllDimensions() {
		buckets, err := aggregate.Aggregate(in.Records, dim)
		if err != nil {
			return nil, fmt.Errorf("aggregating by %s: %w", dim, err)
		}
		a.Aggregates[string(dim)] = buckets
	}

	a.Summary = buildSummary(in.Records, a.Aggregates)

	if in.Engine != nil {
		for _, b := range a.Aggregates[string(model.DimensionCategory)] {
			a.Variances = append(a.Variances, in.Engine.Variance(b.Key, b.TotalSpend))
		}
	}

	if in.Recommender != nil {
		a.Recommendations = in.Recommender.Generate(
			a.Variances,
			a.Aggregates[string(model.DimensionVendor)],
			a.Aggregates[string(model.DimensionCompany)])
	}

	if in.DedupeResult != nil {
		dq := DataQuality{
			OriginalCount:   in.DedupeResult.OriginalCount,
			KeptCount:       len(in.DedupeResult.Kept),
			RemovedCount:    in.DedupeResult.RemovedCount,
			QualityScore:    in.DedupeResult.QualityScore(),
			QuarantinedRows: in.QuarantinedRows,
		}
		if in.DedupeResult.OriginalCount > 0 {
			dq.DuplicateRate = float64(in.DedupeResult.RemovedCount) / float64(in.DedupeResult.OriginalCount)
		}
		a.DataQuality = dq
	}

	return a, nil
}

func buildSummary(records []*model.InvoiceRecord, aggregates map[string][]model.AggregateBucket) Summary {
	s := Summary{RecordCount: len(records)}

	uncategorized := 0
	var minDate, maxDate time.Time
	for _, r := range records {
		s.TotalSpend = s.TotalSpend.Add(r.TotalAmount)
		if r.CategoryPath == "" || r.CategoryPath == model.UncategorizedPath {
			uncategorized++
		}
		if minDate.IsZero() || r.InvoiceDate.Before(minDate) {
			minDate = r.InvoiceDate
		}
		if r.InvoiceDate.After(maxDate) {
			maxDate = r.InvoiceDate
		}
	}
	if len(records) > 0 {
		s.UncategorizedPct = float64(uncategorized) / float64(len(records)) * 100
		s.PeriodStart = minDate.Format("2006-01-02")
		s.PeriodEnd = maxDate.Format("2006-01-02")
	}

	s.VendorCount = len(aggregates[string(model.DimensionVendor)])
	s.CompanyCount = len(aggregates[string(model.DimensionCompany)])
	s.CategoryCount = len(aggregates[string(model.DimensionCategory)])
	return s
}

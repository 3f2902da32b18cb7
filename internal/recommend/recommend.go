// Package recommend derives prioritized cost-optimization suggestions from
// benchmark variance and spend-concentration signals.
package recommend

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// Config holds the thresholds the generator applies. Zero values are
// replaced with defaults by DefaultConfig, so callers usually start there
// and override individual fields.
type Config struct {
	// VendorShareThreshold is the percentage-of-total above which a single
	// vendor triggers a consolidation recommendation.
	VendorShareThreshold float64

	// CompanyShareThreshold is the analogous threshold on the company
	// dimension.
	CompanyShareThreshold float64

	// HighVarianceThreshold is the variance percentage above which a
	// cost-reduction recommendation is marked high priority.
	HighVarianceThreshold float64

	// DiscountRate is the assumed negotiation discount applied to a
	// concentrated vendor's or company's spend when estimating savings.
	DiscountRate float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		VendorShareThreshold:  50.0,
		CompanyShareThreshold: 50.0,
		HighVarianceThreshold: 100.0,
		DiscountRate:          0.10,
	}
}

// Generator turns variance results and dimension rollups into
// recommendations.
type Generator struct {
	cfg Config
}

// NewGenerator builds a Generator with the given thresholds.
func NewGenerator(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.VendorShareThreshold == 0 {
		cfg.VendorShareThreshold = def.VendorShareThreshold
	}
	if cfg.CompanyShareThreshold == 0 {
		cfg.CompanyShareThreshold = def.CompanyShareThreshold
	}
	if cfg.HighVarianceThreshold == 0 {
		cfg.HighVarianceThreshold = def.HighVarianceThreshold
	}
	if cfg.DiscountRate == 0 {
		cfg.DiscountRate = def.DiscountRate
	}
	return &Generator{cfg: cfg}
}

// Generate produces the full recommendation list, ordered by priority (high
// first) then by potential savings descending.
func (g *Generator) Generate(variances []model.VarianceResult, vendorBuckets, companyBuckets []model.AggregateBucket) []model.Recommendation {
	var recs []model.Recommendation
	recs = append(recs, g.costReductions(variances)...)
	recs = append(recs, g.concentration(vendorBuckets, model.KindVendorConsolidation, g.cfg.VendorShareThreshold)...)
	recs = append(recs, g.concentration(companyBuckets, model.KindCompanyReview, g.cfg.CompanyShareThreshold)...)

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority.Rank() < recs[j].Priority.Rank()
		}
		return recs[i].PotentialSavings.GreaterThan(recs[j].PotentialSavings)
	})
	return recs
}

// costReductions emits one recommendation per category spending above its
// benchmark range. Savings is the gap back to typical, clamped at zero.
func (g *Generator) costReductions(variances []model.VarianceResult) []model.Recommendation {
	var recs []model.Recommendation
	for _, v := range variances {
		if v.Status != model.StatusAboveBenchmark {
			continue
		}
		savings := v.ActualSpend.Sub(v.Benchmark.Typical)
		if !savings.IsPositive() {
			continue
		}
		priority := model.PriorityMedium
		if v.VariancePct > g.cfg.HighVarianceThreshold {
			priority = model.PriorityHigh
		}
		recs = append(recs, model.Recommendation{
			Kind:    model.KindCostReduction,
			Subject: v.CategoryPath,
			Message: fmt.Sprintf(
				"Spend in %s is %.1f%% above the typical benchmark; reducing to typical saves %s.",
				v.CategoryPath, v.VariancePct, savings.StringFixed(2)),
			Priority:         priority,
			PotentialSavings: savings,
		})
	}
	return recs
}

// concentration emits a recommendation for every bucket whose share of total
// spend exceeds the threshold. Savings assumes the configured negotiation
// discount on the concentrated spend.
func (g *Generator) concentration(buckets []model.AggregateBucket, kind model.RecommendationKind, threshold float64) []model.Recommendation {
	var recs []model.Recommendation
	for _, b := range buckets {
		if b.PercentageOfTotal <= threshold {
			continue
		}
		savings := b.TotalSpend.Mul(decimal.NewFromFloat(g.cfg.DiscountRate))
		var msg string
		switch kind {
		case model.KindVendorConsolidation:
			msg = fmt.Sprintf(
				"%s accounts for %.1f%% of total spend; consolidating and renegotiating could save %s.",
				b.Key, b.PercentageOfTotal, savings.StringFixed(2))
		default:
			msg = fmt.Sprintf(
				"%s drives %.1f%% of total spend; review its invoices for rate and scope opportunities.",
				b.Key, b.PercentageOfTotal)
		}
		recs = append(recs, model.Recommendation{
			Kind:             kind,
			Subject:          b.Key,
			Message:          msg,
			Priority:         model.PriorityMedium,
			PotentialSavings: savings,
		})
	}
	return recs
}

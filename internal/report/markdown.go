package report

import (
	"fmt"
	"strings"

	"github.com/spendlens/spendlens/internal/model"
)

// RenderMarkdown produces the executive spend report.
func RenderMarkdown(a *Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Vendor Spend Analysis\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", a.GeneratedAt.Format("2006-01-02 15:04 MST"))

	writeSummary(&b, a)
	writeDimensionTable(&b, a, model.DimensionVendor, "Spend by Vendor")
	writeDimensionTable(&b, a, model.DimensionCompany, "Spend by Company")
	writeDimensionTable(&b, a, model.DimensionCategory, "Spend by Category")
	writeDimensionTable(&b, a, model.DimensionMonth, "Monthly Trend")
	writeVariances(&b, a)
	writeRecommendations(&b, a)
	writeDataQuality(&b, a)
	writeCacheStats(&b, a)

	return b.String()
}

func writeSummary(b *strings.Builder, a *Analysis) {
	s := a.Summary
	fmt.Fprintf(b, "## Summary\n\n")
	fmt.Fprintf(b, "- **Total spend:** %s\n", money(s.TotalSpend.StringFixed(2)))
	fmt.Fprintf(b, "- **Invoices:** %d across %d vendors, %d companies, %d categories\n",
		s.RecordCount, s.VendorCount, s.CompanyCount, s.CategoryCount)
	if s.PeriodStart != "" {
		fmt.Fprintf(b, "- **Period:** %s to %s\n", s.PeriodStart, s.PeriodEnd)
	}
	fmt.Fprintf(b, "- **Uncategorized:** %.1f%% of records\n\n", s.UncategorizedPct)
}

func writeDimensionTable(b *strings.Builder, a *Analysis, dim model.Dimension, heading string) {
	buckets := a.Aggregates[string(dim)]
	if len(buckets) == 0 {
		return
	}

	fmt.Fprintf(b, "## %s\n\n", heading)
	hasGrowth := dim.IsPeriod()
	if hasGrowth {
		fmt.Fprintf(b, "| %s | Spend | Share | Invoices | Growth |\n", title(string(dim)))
		fmt.Fprintf(b, "|---|---:|---:|---:|---:|\n")
	} else {
		fmt.Fprintf(b, "| %s | Spend | Share | Invoices |\n", title(string(dim)))
		fmt.Fprintf(b, "|---|---:|---:|---:|\n")
	}

	for _, bucket := range buckets {
		if hasGrowth {
			growth := "n/a"
			if bucket.GrowthRate != nil {
				growth = fmt.Sprintf("%+.1f%%", *bucket.GrowthRate*100)
			}
			fmt.Fprintf(b, "| %s | %s | %.1f%% | %d | %s |\n",
				bucket.Key, money(bucket.TotalSpend.StringFixed(2)),
				bucket.PercentageOfTotal, bucket.RecordCount, growth)
		} else {
			fmt.Fprintf(b, "| %s | %s | %.1f%% | %d |\n",
				bucket.Key, money(bucket.TotalSpend.StringFixed(2)),
				bucket.PercentageOfTotal, bucket.RecordCount)
		}
	}
	fmt.Fprintf(b, "\n")
}

func writeVariances(b *strings.Builder, a *Analysis) {
	if len(a.Variances) == 0 {
		return
	}

	fmt.Fprintf(b, "## Benchmark Variance\n\n")
	fmt.Fprintf(b, "| Category | Actual | Typical | Variance | Status |\n")
	fmt.Fprintf(b, "|---|---:|---:|---:|---|\n")
	for _, v := range a.Variances {
		if v.Status == model.StatusUnknown {
			fmt.Fprintf(b, "| %s | %s | n/a | n/a | no benchmark |\n",
				v.CategoryPath, money(v.ActualSpend.StringFixed(2)))
			continue
		}
		fmt.Fprintf(b, "| %s | %s | %s | %+.1f%% | %s |\n",
			v.CategoryPath,
			money(v.ActualSpend.StringFixed(2)),
			money(v.Benchmark.Typical.StringFixed(2)),
			v.VariancePct,
			strings.ReplaceAll(string(v.Status), "_", " "))
	}
	fmt.Fprintf(b, "\n")
}

func writeRecommendations(b *strings.Builder, a *Analysis) {
	fmt.Fprintf(b, "## Recommendations\n\n")
	if len(a.Recommendations) == 0 {
		fmt.Fprintf(b, "No cost-optimization opportunities identified.\n\n")
		return
	}
	for _, r := range a.Recommendations {
		fmt.Fprintf(b, "- **[%s]** %s (potential savings: %s)\n",
			strings.ToUpper(string(r.Priority)), r.Message,
			money(r.PotentialSavings.StringFixed(2)))
	}
	fmt.Fprintf(b, "\n")
}

func writeDataQuality(b *strings.Builder, a *Analysis) {
	dq := a.DataQuality
	if dq.OriginalCount == 0 && dq.QuarantinedRows == 0 {
		return
	}
	fmt.Fprintf(b, "## Data Quality\n\n")
	fmt.Fprintf(b, "- Records ingested: %d, kept after deduplication: %d (%d duplicates removed)\n",
		dq.OriginalCount, dq.KeptCount, dq.RemovedCount)
	fmt.Fprintf(b, "- Duplicate rate: %.1f%%, quality score: %.3f\n", dq.DuplicateRate*100, dq.QualityScore)
	if dq.QuarantinedRows > 0 {
		fmt.Fprintf(b, "- Quarantined input rows: %d\n", dq.QuarantinedRows)
	}
	if len(a.NeedsReview) > 0 {
		fmt.Fprintf(b, "- Records needing manual categorization review: %d\n", len(a.NeedsReview))
	}
	fmt.Fprintf(b, "\n")
}

func writeCacheStats(b *strings.Builder, a *Analysis) {
	if a.CacheStats == nil {
		return
	}
	cs := a.CacheStats
	fmt.Fprintf(b, "## Categorization Cache\n\n")
	fmt.Fprintf(b, "- Entries: %d, hits: %d, misses: %d\n", cs.Entries, cs.Hits, cs.Misses)
	fmt.Fprintf(b, "- Oracle calls avoided: %d\n\n", cs.AvoidedCalls)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// money adds a currency symbol and thousands separators to a fixed-point
// decimal string.
func money(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "$" + strings.Join(groups, ",") + frac
	if neg {
		out = "-" + out
	}
	return out
}

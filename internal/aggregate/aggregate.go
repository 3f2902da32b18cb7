// Package aggregate rolls up deduplicated invoice records along vendor,
// company, category, and time-period dimensions.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// Aggregate groups kept (post-dedup) records by the requested dimension and
// sums spend. Percentage of total is computed against the grand total of all
// records passed in. Buckets are sorted descending by total spend, ties
// broken by key ascending, so output is reproducible.
//
// Records that failed categorization count toward every dimension except
// category, where only real category assignments participate.
func Aggregate(records []*model.InvoiceRecord, dimension model.Dimension) ([]model.AggregateBucket, error) {
	if !validDimension(dimension) {
		return nil, fmt.Errorf("unknown dimension: %s", dimension)
	}

	grand := decimal.Zero
	for _, r := range records {
		grand = grand.Add(r.TotalAmount)
	}

	type accum struct {
		spend decimal.Decimal
		count int
	}
	buckets := make(map[string]*accum)

	for _, r := range records {
		key, ok, err := bucketKey(r, dimension)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		b := buckets[key]
		if b == nil {
			b = &accum{spend: decimal.Zero}
			buckets[key] = b
		}
		b.spend = b.spend.Add(r.TotalAmount)
		b.count++
	}

	out := make([]model.AggregateBucket, 0, len(buckets))
	for key, b := range buckets {
		bucket := model.AggregateBucket{
			Dimension:   dimension,
			Key:         key,
			TotalSpend:  b.spend,
			RecordCount: b.count,
		}
		if grand.IsPositive() {
			pct, _ := b.spend.Div(grand).Mul(decimal.NewFromInt(100)).Float64()
			bucket.PercentageOfTotal = pct
		}
		out = append(out, bucket)
	}

	sort.Slice(out, func(i, j int) bool {
		cmp := out[i].TotalSpend.Cmp(out[j].TotalSpend)
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].Key < out[j].Key
	})

	if dimension.IsPeriod() {
		applyGrowthRates(out)
	}

	return out, nil
}

func validDimension(d model.Dimension) bool {
	for _, known := range model.AllDimensions() {
		if d == known {
			return true
		}
	}
	return false
}

// bucketKey returns the grouping key for a record, or ok=false when the
// record does not participate in this dimension.
func bucketKey(r *model.InvoiceRecord, dimension model.Dimension) (string, bool, error) {
	switch dimension {
	case model.DimensionVendor:
		return r.VendorNormalized, r.VendorNormalized != "", nil
	case model.DimensionCompany:
		return r.CompanyNormalized, r.CompanyNormalized != "", nil
	case model.DimensionCategory:
		if r.CategoryPath == "" || r.CategoryPath == model.UncategorizedPath {
			return "", false, nil
		}
		return r.CategoryPath, true, nil
	case model.DimensionMonth:
		return r.Month(), true, nil
	case model.DimensionQuarter:
		return r.Quarter(), true, nil
	case model.DimensionYear:
		return r.Year(), true, nil
	default:
		return "", false, fmt.Errorf("unknown dimension: %s", dimension)
	}
}

// applyGrowthRates fills in period-over-period growth. Period keys sort
// chronologically as strings (2006-01, 2006-Q1, 2006), so ordering by key
// gives the timeline. Growth is undefined for the first period and for any
// period following a zero-total period.
func applyGrowthRates(buckets []model.AggregateBucket) {
	byKey := make(map[string]int, len(buckets))
	keys := make([]string, 0, len(buckets))
	for i, b := range buckets {
		byKey[b.Key] = i
		keys = append(keys, b.Key)
	}
	sort.Strings(keys)

	for i := 1; i < len(keys); i++ {
		prev := buckets[byKey[keys[i-1]]].TotalSpend
		if prev.IsZero() {
			continue
		}
		current := buckets[byKey[keys[i]]].TotalSpend
		rate, _ := current.Sub(prev).Div(prev).Float64()
		buckets[byKey[keys[i]]].GrowthRate = &rate
	}
}

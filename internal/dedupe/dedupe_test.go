package dedupe

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/normalize"
)

func makeRecord(t *testing.T, id, vendorRaw string, date time.Time, items []model.LineItem) *model.InvoiceRecord {
	t.Helper()
	n := normalize.New()

	r := &model.InvoiceRecord{
		ID:               id,
		VendorRaw:        vendorRaw,
		VendorNormalized: n.Vendor(vendorRaw),
		InvoiceDate:      date,
		LineItems:        items,
	}
	r.TotalAmount = r.LineItemTotal()
	r.ContentHash = r.GenerateContentHash()
	return r
}

func azureItems() []model.LineItem {
	return []model.LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000.00)},
	}
}

func TestDeduplicate_CollapsesNormalizedVendorVariants(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []*model.InvoiceRecord{
		makeRecord(t, "a", "Synoptek, LLC", date, azureItems()),
		makeRecord(t, "b", "Synoptek", date, azureItems()),
	}

	result := Deduplicate(records)

	require.Len(t, result.Kept, 1)
	assert.Equal(t, "a", result.Kept[0].ID)
	assert.Equal(t, "Synoptek", result.Kept[0].VendorNormalized)
	assert.Equal(t, 1, result.RemovedCount)
	assert.Equal(t, "a", records[1].DuplicateOf)

	require.Len(t, result.DuplicateGroups, 1)
	assert.Len(t, result.DuplicateGroups[0].Removed, 1)
	assert.InDelta(t, 0.5, result.QualityScore(), 1e-9)
}

func TestDeduplicate_DifferingAmountsAreDistinctCharges(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []*model.InvoiceRecord{
		makeRecord(t, "a", "Synoptek", date, azureItems()),
		makeRecord(t, "b", "Synoptek", date, []model.LineItem{
			{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(2000.00)},
		}),
	}

	result := Deduplicate(records)

	assert.Len(t, result.Kept, 2)
	assert.Equal(t, 0, result.RemovedCount)
	assert.Empty(t, result.DuplicateGroups)
	assert.InDelta(t, 1.0, result.QualityScore(), 1e-9)
}

func TestDeduplicate_DifferentDatesAreDistinct(t *testing.T) {
	records := []*model.InvoiceRecord{
		makeRecord(t, "a", "Synoptek", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), azureItems()),
		makeRecord(t, "b", "Synoptek", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), azureItems()),
	}

	result := Deduplicate(records)

	assert.Len(t, result.Kept, 2)
	assert.Equal(t, 0, result.RemovedCount)
}

func TestDeduplicate_KeepsFirstInInputOrder(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []*model.InvoiceRecord{
		makeRecord(t, "first", "Synoptek", date, azureItems()),
		makeRecord(t, "second", "Synoptek", date, azureItems()),
		makeRecord(t, "third", "Synoptek", date, azureItems()),
	}

	result := Deduplicate(records)

	require.Len(t, result.Kept, 1)
	assert.Equal(t, "first", result.Kept[0].ID)
	assert.Equal(t, "first", records[1].DuplicateOf)
	assert.Equal(t, "first", records[2].DuplicateOf)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []*model.InvoiceRecord{
		makeRecord(t, "a", "Synoptek, LLC", date, azureItems()),
		makeRecord(t, "b", "Synoptek", date, azureItems()),
		makeRecord(t, "c", "Microsoft", date, azureItems()),
	}

	first := Deduplicate(records)
	second := Deduplicate(first.Kept)

	assert.Equal(t, 0, second.RemovedCount)
	assert.Equal(t, len(first.Kept), len(second.Kept))
	assert.InDelta(t, 1.0, second.QualityScore(), 1e-9)
}

func TestDeduplicate_Empty(t *testing.T) {
	result := Deduplicate(nil)

	assert.Empty(t, result.Kept)
	assert.Equal(t, 0, result.RemovedCount)
	assert.InDelta(t, 1.0, result.QualityScore(), 1e-9)
}

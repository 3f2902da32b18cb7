package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/normalize"
)

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got)

	// An unset flag means no bound, not the zero time.
	got, err = parseDateFlag("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDateFlag("15/03/2024")
	assert.Error(t, err)
}

func TestNormalizeRecords(t *testing.T) {
	records := []*model.InvoiceRecord{
		{
			VendorRaw:  "Synoptek, LLC",
			CompanyRaw: "Great Gray Trust",
			LineItems: []model.LineItem{
				{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
			},
		},
		{
			VendorRaw: "SYNOPTEK",
			LineItems: []model.LineItem{
				{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
			},
		},
	}

	normalizeRecords(normalize.New(), records)

	assert.Equal(t, "Synoptek", records[0].VendorNormalized)
	assert.Equal(t, "Synoptek", records[1].VendorNormalized)
	assert.NotEmpty(t, records[0].ContentHash)
	// Same vendor and line items yield the same hash regardless of raw
	// formatting.
	assert.Equal(t, records[0].ContentHash, records[1].ContentHash)
}

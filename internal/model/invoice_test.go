package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testRecord(items []LineItem) *InvoiceRecord {
	return &InvoiceRecord{
		ID:               "inv-1",
		VendorRaw:        "Synoptek, LLC",
		VendorNormalized: "synoptek",
		InvoiceDate:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		LineItems:        items,
	}
}

func TestGenerateContentHash_StableUnderReordering(t *testing.T) {
	a := testRecord([]LineItem{
		{Description: "Azure Compute", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000.00)},
		{Description: "Managed Support", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(250.50)},
	})
	b := testRecord([]LineItem{
		{Description: "Managed Support", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(250.50)},
		{Description: "Azure Compute", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000.00)},
	})

	assert.Equal(t, a.GenerateContentHash(), b.GenerateContentHash())
}

func TestGenerateContentHash_StableUnderVendorFormatting(t *testing.T) {
	items := []LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000)},
	}

	a := testRecord(items)
	b := testRecord(items)
	b.VendorRaw = "SYNOPTEK"

	// Raw vendor formatting differences do not matter once normalization
	// produced the same canonical name.
	assert.Equal(t, a.GenerateContentHash(), b.GenerateContentHash())
}

func TestGenerateContentHash_IgnoresSubCentNoise(t *testing.T) {
	a := testRecord([]LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000.001)},
	})
	b := testRecord([]LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000.002)},
	})

	assert.Equal(t, a.GenerateContentHash(), b.GenerateContentHash())
}

func TestGenerateContentHash_ChangesBeyondRoundingTolerance(t *testing.T) {
	a := testRecord([]LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000.00)},
	})
	b := testRecord([]LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1000.05)},
	})
	c := testRecord([]LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(1000.00)},
	})

	assert.NotEqual(t, a.GenerateContentHash(), b.GenerateContentHash())
	assert.NotEqual(t, a.GenerateContentHash(), c.GenerateContentHash())
}

func TestLineItemTotal(t *testing.T) {
	r := testRecord([]LineItem{
		{Description: "Azure", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(100.25)},
		{Description: "Support", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(49.50)},
	})

	assert.True(t, r.LineItemTotal().Equal(decimal.NewFromFloat(250.00)))
}

func TestPeriodKeys(t *testing.T) {
	r := testRecord(nil)

	assert.Equal(t, "2024-03", r.Month())
	assert.Equal(t, "2024-Q1", r.Quarter())
	assert.Equal(t, "2024", r.Year())

	r.InvoiceDate = time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-Q4", r.Quarter())
}

func TestParentCategory(t *testing.T) {
	assert.Equal(t, "it_services/cloud_services", ParentCategory("it_services/cloud_services/managed_services"))
	assert.Equal(t, "it_services", ParentCategory("it_services/cloud_services"))
	assert.Equal(t, "", ParentCategory("it_services"))
}

func TestTopCategory(t *testing.T) {
	assert.Equal(t, "it_services", TopCategory("it_services/cloud_services"))
	assert.Equal(t, "licensing", TopCategory("licensing"))
}

// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single billed line on an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Amount returns quantity * unit price.
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// InvoiceRecord represents one vendor invoice (or invoice line group) flowing
// through the pipeline. Records are created once at ingestion and are
// read-only downstream except for CategoryPath (set by the categorizer) and
// DuplicateOf (set by the deduplicator).
type InvoiceRecord struct {
	InvoiceDate       time.Time
	ID                string
	VendorRaw         string
	VendorNormalized  string
	CompanyRaw        string
	CompanyNormalized string
	CategoryPath      string
	ContentHash       string
	// DuplicateOf holds the ID of the canonical kept record when this record
	// was collapsed as a duplicate. Lookup-only, never cyclic.
	DuplicateOf string
	Status      CategorizationStatus
	LineItems   []LineItem
	TotalAmount decimal.Decimal
}

// GenerateContentHash computes the deterministic content hash used for both
// duplicate detection and categorization-cache keys. The hash is stable under
// line-item reordering and vendor formatting differences: it is computed from
// the normalized vendor plus the sorted normalized line items, with
// quantities and prices rounded to two decimal places.
func (r *InvoiceRecord) GenerateContentHash() string {
	parts := make([]string, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		parts = append(parts, fmt.Sprintf("%s:%s:%s",
			strings.ToLower(strings.TrimSpace(li.Description)),
			li.Quantity.Round(2).String(),
			li.UnitPrice.Round(2).String()))
	}
	sort.Strings(parts)

	data := r.VendorNormalized + "|" + strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// LineItemTotal returns the sum of all line-item amounts.
func (r *InvoiceRecord) LineItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range r.LineItems {
		total = total.Add(li.Amount())
	}
	return total
}

// Month returns the record's billing month in 2006-01 form.
func (r *InvoiceRecord) Month() string {
	return r.InvoiceDate.Format("2006-01")
}

// Quarter returns the record's billing quarter in 2006-Q1 form.
func (r *InvoiceRecord) Quarter() string {
	q := (int(r.InvoiceDate.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", r.InvoiceDate.Year(), q)
}

// Year returns the record's billing year as a string.
func (r *InvoiceRecord) Year() string {
	return r.InvoiceDate.Format("2006")
}

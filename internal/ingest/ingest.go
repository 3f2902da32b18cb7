// Package ingest loads raw invoice line items from CSV and JSON files,
// validates them, and assembles InvoiceRecords. Malformed rows are
// quarantined rather than aborting the load.
package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
)

// csvRow is one line item as it appears in an input CSV. Rows sharing an
// invoice id, vendor, and date are assembled into a single InvoiceRecord.
type csvRow struct {
	InvoiceID   string `csv:"invoice_id"`
	InvoiceDate string `csv:"invoice_date"`
	Vendor      string `csv:"vendor"`
	Company     string `csv:"company"`
	Description string `csv:"description"`
	Quantity    string `csv:"quantity"`
	UnitPrice   string `csv:"unit_price"`
}

// QuarantinedRow records an input row that failed validation, with enough
// context to fix the source data.
type QuarantinedRow struct {
	Source string `json:"source"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the outcome of loading one or more input files.
type Result struct {
	Records     []*model.InvoiceRecord
	Quarantined []QuarantinedRow
	RowsRead    int
}

// Loader reads invoice data files.
type Loader struct {
	logger *slog.Logger
}

// NewLoader returns a Loader. A nil logger defaults to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadFile dispatches on extension: .csv or .json.
func (l *Loader) LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(f, filepath.Base(path))
	case ".json":
		return l.LoadJSON(f, filepath.Base(path))
	default:
		return nil, fmt.Errorf("%w: unsupported input format %q", common.ErrValidation, filepath.Ext(path))
	}
}

// LoadCSV parses line-item rows and assembles them into invoice records.
// Rows that fail validation are quarantined and the load continues.
func (l *Loader) LoadCSV(r io.Reader, source string) (*Result, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing CSV %s: %w", source, err)
	}

	result := &Result{RowsRead: len(rows)}
	// Keyed by invoice identity; order preserved for deterministic output.
	byKey := make(map[string]*model.InvoiceRecord)
	var order []string

	for i, row := range rows {
		// Header is row 1 in the source file.
		rowNum := i + 2

		item, date, err := l.validateRow(row)
		if err != nil {
			result.Quarantined = append(result.Quarantined, QuarantinedRow{
				Source: source,
				Row:    rowNum,
				Reason: err.Error(),
			})
			l.logger.Warn("quarantined input row",
				"source", source, "row", rowNum, "reason", err.Error())
			continue
		}

		key := row.InvoiceID + "|" + strings.TrimSpace(row.Vendor) + "|" + row.InvoiceDate
		rec, ok := byKey[key]
		if !ok {
			rec = &model.InvoiceRecord{
				ID:          recordID(row.InvoiceID, source, rowNum),
				InvoiceDate: date,
				VendorRaw:   strings.TrimSpace(row.Vendor),
				CompanyRaw:  strings.TrimSpace(row.Company),
				Status:      model.StatusUncategorized,
			}
			byKey[key] = rec
			order = append(order, key)
		}
		rec.LineItems = append(rec.LineItems, item)
	}

	for _, key := range order {
		rec := byKey[key]
		rec.TotalAmount = rec.LineItemTotal()
		result.Records = append(result.Records, rec)
	}

	l.logger.Info("loaded CSV input",
		"source", source,
		"rows", result.RowsRead,
		"records", len(result.Records),
		"quarantined", len(result.Quarantined))
	return result, nil
}

// validateRow checks a CSV row and converts its numeric and date fields.
func (l *Loader) validateRow(row *csvRow) (model.LineItem, time.Time, error) {
	var item model.LineItem

	vendor := strings.TrimSpace(row.Vendor)
	if vendor == "" {
		return item, time.Time{}, fmt.Errorf("%w: missing vendor", common.ErrValidation)
	}
	desc := strings.TrimSpace(row.Description)
	if desc == "" {
		return item, time.Time{}, fmt.Errorf("%w: missing description", common.ErrValidation)
	}

	date, err := parseDate(row.InvoiceDate)
	if err != nil {
		return item, time.Time{}, fmt.Errorf("%w: bad invoice_date %q", common.ErrValidation, row.InvoiceDate)
	}

	qty, err := decimal.NewFromString(strings.TrimSpace(row.Quantity))
	if err != nil || !qty.IsPositive() {
		return item, time.Time{}, fmt.Errorf("%w: bad quantity %q", common.ErrValidation, row.Quantity)
	}

	price, err := decimal.NewFromString(cleanAmount(row.UnitPrice))
	if err != nil || price.IsNegative() {
		return item, time.Time{}, fmt.Errorf("%w: bad unit_price %q", common.ErrValidation, row.UnitPrice)
	}

	item = model.LineItem{Description: desc, Quantity: qty, UnitPrice: price}
	return item, date, nil
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006-01-02T15:04:05Z07:00"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// cleanAmount strips currency symbols and thousands separators so exported
// spreadsheets parse without preprocessing.
func cleanAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	return strings.ReplaceAll(s, ",", "")
}

// recordID returns the invoice id from the source, or a synthetic one when
// the source omits it.
func recordID(invoiceID, source string, rowNum int) string {
	if id := strings.TrimSpace(invoiceID); id != "" {
		return id
	}
	return fmt.Sprintf("%s#%d", source, rowNum)
}

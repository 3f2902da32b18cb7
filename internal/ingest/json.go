package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
)

// jsonInvoice mirrors the exported invoice shape: one object per invoice
// with nested line items. Amounts arrive as JSON numbers or strings.
type jsonInvoice struct {
	InvoiceID   string `json:"invoice_id"`
	InvoiceDate string `json:"invoice_date"`
	Vendor      string `json:"vendor"`
	Company     string `json:"company"`
	LineItems   []struct {
		Description string          `json:"description"`
		Quantity    json.Number     `json:"quantity"`
		UnitPrice   json.Number     `json:"unit_price"`
	} `json:"line_items"`
}

// LoadJSON parses an array of invoice objects. Invalid invoices are
// quarantined whole; a parse failure of the document aborts the load.
func (l *Loader) LoadJSON(r io.Reader, source string) (*Result, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var invoices []jsonInvoice
	if err := dec.Decode(&invoices); err != nil {
		return nil, fmt.Errorf("parsing JSON %s: %w", source, err)
	}

	result := &Result{RowsRead: len(invoices)}
	for i, inv := range invoices {
		rec, err := l.convertJSONInvoice(inv, source, i)
		if err != nil {
			result.Quarantined = append(result.Quarantined, QuarantinedRow{
				Source: source,
				Row:    i + 1,
				Reason: err.Error(),
			})
			l.logger.Warn("quarantined invoice",
				"source", source, "index", i, "reason", err.Error())
			continue
		}
		result.Records = append(result.Records, rec)
	}

	l.logger.Info("loaded JSON input",
		"source", source,
		"invoices", result.RowsRead,
		"records", len(result.Records),
		"quarantined", len(result.Quarantined))
	return result, nil
}

func (l *Loader) convertJSONInvoice(inv jsonInvoice, source string, index int) (*model.InvoiceRecord, error) {
	vendor := strings.TrimSpace(inv.Vendor)
	if vendor == "" {
		return nil, fmt.Errorf("%w: missing vendor", common.ErrValidation)
	}
	if len(inv.LineItems) == 0 {
		return nil, fmt.Errorf("%w: invoice has no line items", common.ErrValidation)
	}

	date, err := parseDate(inv.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad invoice_date %q", common.ErrValidation, inv.InvoiceDate)
	}

	rec := &model.InvoiceRecord{
		ID:          recordID(inv.InvoiceID, source, index+1),
		InvoiceDate: date,
		VendorRaw:   vendor,
		CompanyRaw:  strings.TrimSpace(inv.Company),
		Status:      model.StatusUncategorized,
	}

	for _, li := range inv.LineItems {
		desc := strings.TrimSpace(li.Description)
		if desc == "" {
			return nil, fmt.Errorf("%w: line item missing description", common.ErrValidation)
		}
		qty, err := decimal.NewFromString(li.Quantity.String())
		if err != nil || !qty.IsPositive() {
			return nil, fmt.Errorf("%w: bad quantity %q", common.ErrValidation, li.Quantity.String())
		}
		price, err := decimal.NewFromString(li.UnitPrice.String())
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("%w: bad unit_price %q", common.ErrValidation, li.UnitPrice.String())
		}
		rec.LineItems = append(rec.LineItems, model.LineItem{
			Description: desc,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}

	rec.TotalAmount = rec.LineItemTotal()
	return rec, nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

// SaveInvoices stores a batch of invoice records in one transaction.
// Re-importing an existing ID replaces the stored row.
func (s *SQLiteStorage) SaveInvoices(ctx context.Context, records []*model.InvoiceRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO invoices
			(id, content_hash, invoice_date, vendor_raw, vendor_normalized,
			 company_raw, company_normalized, line_items, total_amount,
			 category_path, status, duplicate_of)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, record := range records {
		lineItems, err := json.Marshal(record.LineItems)
		if err != nil {
			return fmt.Errorf("failed to marshal line items for %s: %w", record.ID, err)
		}

		status := record.Status
		if status == "" {
			status = model.StatusUncategorized
		}

		if _, err := stmt.ExecContext(ctx,
			record.ID,
			record.ContentHash,
			record.InvoiceDate.UTC(),
			record.VendorRaw,
			record.VendorNormalized,
			record.CompanyRaw,
			record.CompanyNormalized,
			string(lineItems),
			record.TotalAmount.String(),
			nullString(record.CategoryPath),
			string(status),
			nullString(record.DuplicateOf),
		); err != nil {
			return fmt.Errorf("failed to insert invoice %s: %w", record.ID, err)
		}
	}

	return tx.Commit()
}

// GetInvoices returns stored invoice records matching the filter, ordered by
// invoice date then ID for reproducible output.
func (s *SQLiteStorage) GetInvoices(ctx context.Context, filter service.InvoiceFilter) ([]*model.InvoiceRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, content_hash, invoice_date, vendor_raw, vendor_normalized,
		       company_raw, company_normalized, line_items, total_amount,
		       category_path, status, duplicate_of
		FROM invoices`

	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "invoice_date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	// End date is inclusive: an invoice dated exactly on the bound matches.
	if filter.EndDate != nil {
		conditions = append(conditions, "invoice_date <= ?")
		args = append(args, filter.EndDate.UTC())
	}
	if filter.Vendor != "" {
		conditions = append(conditions, "vendor_normalized = ?")
		args = append(args, filter.Vendor)
	}
	if filter.Uncategorized {
		conditions = append(conditions, "status IN (?, ?)")
		args = append(args, string(model.StatusUncategorized), string(model.StatusCategorizationFailed))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY invoice_date, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*model.InvoiceRecord
	for rows.Next() {
		record, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// UpdateCategory records a categorization outcome for one invoice.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id, categoryPath string, status model.CategorizationStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET category_path = ?, status = ? WHERE id = ?
	`, nullString(categoryPath), string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update category for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %s: %w", id, sql.ErrNoRows)
	}

	return nil
}

func scanInvoice(rows *sql.Rows) (*model.InvoiceRecord, error) {
	var record model.InvoiceRecord
	var lineItems, totalAmount, status string
	var categoryPath, duplicateOf sql.NullString

	if err := rows.Scan(
		&record.ID,
		&record.ContentHash,
		&record.InvoiceDate,
		&record.VendorRaw,
		&record.VendorNormalized,
		&record.CompanyRaw,
		&record.CompanyNormalized,
		&lineItems,
		&totalAmount,
		&categoryPath,
		&status,
		&duplicateOf,
	); err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	if err := json.Unmarshal([]byte(lineItems), &record.LineItems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal line items for %s: %w", record.ID, err)
	}

	amount, err := decimal.NewFromString(totalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount for %s: %w", record.ID, err)
	}
	record.TotalAmount = amount
	record.Status = model.CategorizationStatus(status)
	record.CategoryPath = categoryPath.String
	record.DuplicateOf = duplicateOf.String

	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: nil context", common.ErrValidation)
	}
	return nil
}

func validateString(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be empty", common.ErrValidation, name)
	}
	return nil
}

func validateRecords(records []*model.InvoiceRecord) error {
	if len(records) == 0 {
		return common.ErrNoRecords
	}
	for i, record := range records {
		if record == nil {
			return fmt.Errorf("%w: record %d is nil", common.ErrValidation, i)
		}
		if record.ID == "" {
			return fmt.Errorf("%w: record %d has no ID", common.ErrValidation, i)
		}
		if record.ContentHash == "" {
			return fmt.Errorf("%w: record %s has no content hash", common.ErrValidation, record.ID)
		}
		if record.InvoiceDate.IsZero() {
			return fmt.Errorf("%w: record %s has no invoice date", common.ErrValidation, record.ID)
		}
	}
	return nil
}

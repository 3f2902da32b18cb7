// Package dedupe collapses duplicate invoice records that describe the same
// real-world charge.
package dedupe

import (
	"log/slog"

	"github.com/spendlens/spendlens/internal/model"
)

// Group is one set of records that shared a duplicate key. Kept is the
// canonical record (first encountered in input order); Removed are the
// collapsed duplicates.
type Group struct {
	Key     string
	Kept    *model.InvoiceRecord
	Removed []*model.InvoiceRecord
}

// Result is the outcome of one deduplication pass.
type Result struct {
	Kept            []*model.InvoiceRecord
	DuplicateGroups []Group
	RemovedCount    int
	OriginalCount   int
}

// QualityScore is the fraction of records that survived deduplication.
// 1.0 means no duplicates were found.
func (r Result) QualityScore() float64 {
	if r.OriginalCount == 0 {
		return 1.0
	}
	return float64(len(r.Kept)) / float64(r.OriginalCount)
}

// Deduplicate collapses records sharing the same (normalized vendor, content
// hash, invoice date). The first record of each group, in input order, is
// kept; the rest receive a DuplicateOf back-reference to it. Records with the
// same vendor and date but differing content are distinct legitimate charges
// and never collapse. Input order of kept records is preserved.
func Deduplicate(records []*model.InvoiceRecord) Result {
	result := Result{
		Kept:          make([]*model.InvoiceRecord, 0, len(records)),
		OriginalCount: len(records),
	}

	groupIndex := make(map[string]int)

	for _, record := range records {
		key := record.VendorNormalized + "|" + record.ContentHash + "|" + record.InvoiceDate.Format("2006-01-02")

		idx, seen := groupIndex[key]
		if !seen {
			groupIndex[key] = len(result.DuplicateGroups)
			result.DuplicateGroups = append(result.DuplicateGroups, Group{Key: key, Kept: record})
			result.Kept = append(result.Kept, record)
			continue
		}

		group := &result.DuplicateGroups[idx]
		record.DuplicateOf = group.Kept.ID
		group.Removed = append(group.Removed, record)
		result.RemovedCount++

		slog.Debug("collapsed duplicate invoice",
			"vendor", record.VendorNormalized,
			"date", record.InvoiceDate.Format("2006-01-02"),
			"kept_id", group.Kept.ID,
			"removed_id", record.ID)
	}

	// Drop groups that never collapsed anything.
	groups := result.DuplicateGroups[:0]
	for _, g := range result.DuplicateGroups {
		if len(g.Removed) > 0 {
			groups = append(groups, g)
		}
	}
	result.DuplicateGroups = groups

	return result
}

// Package service defines the interfaces shared between application services.
package service

import (
	"context"
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// CacheEntry is one persisted categorization cache record, keyed by content
// hash and shared across pipeline runs.
type CacheEntry struct {
	CachedAt     time.Time
	ContentHash  string
	CategoryPath string
	Vendor       string
}

// CacheStore is the persistent categorization cache. Entries older than the
// store's TTL are treated as absent. Put must be an atomic upsert so that
// concurrent runs against the same cache file cannot corrupt it.
type CacheStore interface {
	Get(ctx context.Context, contentHash string) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
	ListAll(ctx context.Context) ([]CacheEntry, error)
	Stats(ctx context.Context) (CacheStats, error)
	Close() error
}

// CacheStats tracks cache effectiveness across the lifetime of the store.
type CacheStats struct {
	LastUpdated time.Time
	Entries     int
	Hits        int64
	Misses      int64
	// AvoidedCalls is the number of oracle invocations the cache saved.
	AvoidedCalls int64
}

// InvoiceStore defines the contract for the persistence layer holding
// ingested invoice records.
type InvoiceStore interface {
	SaveInvoices(ctx context.Context, records []*model.InvoiceRecord) error
	GetInvoices(ctx context.Context, filter InvoiceFilter) ([]*model.InvoiceRecord, error)
	UpdateCategory(ctx context.Context, id, categoryPath string, status model.CategorizationStatus) error
	Migrate(ctx context.Context) error
	Close() error
}

// InvoiceFilter defines filtering options for invoice queries.
type InvoiceFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Vendor        string
	Uncategorized bool
	Limit         int
}

// Oracle is the external categorization collaborator consulted when the rule
// table misses. Implementations own their retry policy; the caller supplies
// a per-call timeout through the context.
type Oracle interface {
	Classify(ctx context.Context, vendor string, lineItems []model.LineItem) (string, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// RunStats summarizes one pipeline invocation for reporting.
type RunStats struct {
	Duration          time.Duration
	TotalRecords      int
	KeptRecords       int
	DuplicatesRemoved int
	RuleMatched       int
	CacheHits         int
	OracleCalls       int
	Failed            int
	QualityScore      float64
}

// Package categorize orchestrates invoice categorization: ordered keyword
// rules first, then the persistent content-hash cache, then the external
// oracle for whatever is left.
package categorize

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/rules"
	"github.com/spendlens/spendlens/internal/service"
)

// Config holds categorizer tuning knobs.
type Config struct {
	// Workers bounds the number of concurrent oracle calls.
	Workers int
	// OracleTimeout is the mandatory per-call timeout.
	OracleTimeout time.Duration
	// OnProgress, when set, is invoked after each hash group completes.
	OnProgress func(done, total int)
}

// DefaultConfig returns the default categorizer configuration.
func DefaultConfig() Config {
	return Config{
		Workers:       4,
		OracleTimeout: 30 * time.Second,
	}
}

// Result summarizes one categorization pass. NeedsReview lists records whose
// categorization failed; they are retained as "uncategorized", never dropped.
type Result struct {
	NeedsReview []*model.InvoiceRecord
	RuleMatched int
	CacheHits   int
	OracleCalls int
	Failed      int
}

// Categorizer assigns category paths to invoice records.
type Categorizer struct {
	rules  *rules.Table
	cache  service.CacheStore
	oracle service.Oracle
	logger *slog.Logger
	cfg    Config
}

// New creates a categorizer. The cache and oracle are injected so tests can
// substitute fakes; a nil oracle disables the oracle stage and sends every
// rule-and-cache miss to the review list.
func New(table *rules.Table, cache service.CacheStore, oracle service.Oracle, cfg Config, logger *slog.Logger) *Categorizer {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = DefaultConfig().OracleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Categorizer{
		rules:  table,
		cache:  cache,
		oracle: oracle,
		cfg:    cfg,
		logger: logger,
	}
}

// CategorizeAll runs the full categorization pass over the given records,
// mutating each record's CategoryPath and Status. Oracle calls run on a
// bounded worker pool with at most one call per distinct content hash; a
// failed or slow call affects only its own hash group.
func (c *Categorizer) CategorizeAll(ctx context.Context, records []*model.InvoiceRecord) (Result, error) {
	var result Result

	// Stage 1: rule table, first match wins.
	var pending []*model.InvoiceRecord
	for _, record := range records {
		if record.Status == model.StatusRuleMatched || record.Status == model.StatusCategorized {
			continue
		}
		if path, ok := c.rules.Match(record); ok {
			record.CategoryPath = path
			record.Status = model.StatusRuleMatched
			result.RuleMatched++
			continue
		}
		record.Status = model.StatusOraclePending
		pending = append(pending, record)
	}

	if len(pending) == 0 {
		return result, nil
	}

	// Stage 2+3: cache, then oracle, per distinct content hash. Grouping by
	// hash gives the at-most-one-oracle-call guarantee within a run; the
	// persistent cache extends it across runs.
	groups := groupByHash(pending)

	var mu sync.Mutex
	done := 0
	total := len(groups)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for hash, group := range groups {
		g.Go(func() error {
			outcome := c.categorizeGroup(gctx, hash, group)

			mu.Lock()
			defer mu.Unlock()
			result.CacheHits += outcome.cacheHits
			result.OracleCalls += outcome.oracleCalls
			result.Failed += outcome.failed
			result.NeedsReview = append(result.NeedsReview, outcome.needsReview...)
			done++
			if c.cfg.OnProgress != nil {
				c.cfg.OnProgress(done, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

type groupOutcome struct {
	needsReview []*model.InvoiceRecord
	cacheHits   int
	oracleCalls int
	failed      int
}

func (c *Categorizer) categorizeGroup(ctx context.Context, hash string, group []*model.InvoiceRecord) groupOutcome {
	var outcome groupOutcome
	sample := group[0]

	if entry := c.cacheLookup(ctx, hash); entry != nil {
		for _, record := range group {
			record.CategoryPath = entry.CategoryPath
			record.Status = model.StatusCategorized
		}
		outcome.cacheHits = len(group)
		return outcome
	}

	if c.oracle == nil {
		return c.failGroup(group, outcome)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.OracleTimeout)
	defer cancel()

	path, err := c.oracle.Classify(callCtx, sample.VendorNormalized, sample.LineItems)
	outcome.oracleCalls = 1
	if err != nil {
		c.logger.Warn("oracle categorization failed",
			"vendor", sample.VendorNormalized,
			"content_hash", hash,
			"error", err)
		return c.failGroup(group, outcome)
	}

	// Persist before returning so identical future invoices never re-invoke
	// the oracle.
	c.cachePut(ctx, service.CacheEntry{
		ContentHash:  hash,
		Vendor:       sample.VendorNormalized,
		CategoryPath: path,
	})

	for _, record := range group {
		record.CategoryPath = path
		record.Status = model.StatusCategorized
	}
	return outcome
}

func (c *Categorizer) failGroup(group []*model.InvoiceRecord, outcome groupOutcome) groupOutcome {
	for _, record := range group {
		record.CategoryPath = model.UncategorizedPath
		record.Status = model.StatusCategorizationFailed
	}
	outcome.failed = len(group)
	outcome.needsReview = group
	return outcome
}

// cacheLookup degrades to a permanent miss when the cache store is broken;
// losing memoization must not fail the pipeline.
func (c *Categorizer) cacheLookup(ctx context.Context, hash string) *service.CacheEntry {
	if c.cache == nil {
		return nil
	}
	entry, err := c.cache.Get(ctx, hash)
	if err != nil {
		c.logger.Error("categorization cache unreachable, falling back to oracle for all records",
			"content_hash", hash,
			"error", err)
		return nil
	}
	return entry
}

func (c *Categorizer) cachePut(ctx context.Context, entry service.CacheEntry) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, entry); err != nil {
		c.logger.Error("failed to persist categorization cache entry",
			"content_hash", entry.ContentHash,
			"error", err)
	}
}

// groupByHash preserves at-most-one-oracle semantics: all records with the
// same content hash share one lookup and one (potential) oracle call.
func groupByHash(records []*model.InvoiceRecord) map[string][]*model.InvoiceRecord {
	groups := make(map[string][]*model.InvoiceRecord)
	for _, record := range records {
		groups[record.ContentHash] = append(groups[record.ContentHash], record)
	}
	return groups
}

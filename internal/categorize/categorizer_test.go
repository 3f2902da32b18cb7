package categorize

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/rules"
	"github.com/spendlens/spendlens/internal/service"
)

// memoryCache is an in-memory service.CacheStore for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]service.CacheEntry
	getErr  error
	putErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]service.CacheEntry)}
}

func (m *memoryCache) Get(_ context.Context, hash string) (*service.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if entry, ok := m.entries[hash]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (m *memoryCache) Put(_ context.Context, entry service.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[entry.ContentHash] = entry
	return nil
}

func (m *memoryCache) ListAll(_ context.Context) ([]service.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]service.CacheEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryCache) Stats(_ context.Context) (service.CacheStats, error) {
	return service.CacheStats{}, nil
}

func (m *memoryCache) Close() error { return nil }

// countingOracle scripts responses per vendor and counts invocations.
type countingOracle struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     int
}

func (o *countingOracle) Classify(_ context.Context, vendor string, _ []model.LineItem) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return "", o.err
	}
	if path, ok := o.responses[vendor]; ok {
		return path, nil
	}
	return "", errors.New("unknown vendor")
}

func record(id, vendor, description string) *model.InvoiceRecord {
	r := &model.InvoiceRecord{
		ID:               id,
		VendorRaw:        vendor,
		VendorNormalized: vendor,
		LineItems: []model.LineItem{
			{Description: description, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(500)},
		},
		Status: model.StatusUncategorized,
	}
	r.ContentHash = r.GenerateContentHash()
	return r
}

func newCategorizer(t *testing.T, cache service.CacheStore, oracle service.Oracle) *Categorizer {
	t.Helper()
	table, err := rules.NewTable(rules.DefaultRules())
	require.NoError(t, err)
	return New(table, cache, oracle, DefaultConfig(), nil)
}

func TestCategorizeAll_RuleMatch(t *testing.T) {
	oracle := &countingOracle{}
	c := newCategorizer(t, newMemoryCache(), oracle)

	records := []*model.InvoiceRecord{record("a", "Synoptek", "Azure compute")}
	result, err := c.CategorizeAll(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RuleMatched)
	assert.Equal(t, 0, oracle.calls, "rule match must not consult the oracle")
	assert.Equal(t, "it_services/cloud_services", records[0].CategoryPath)
	assert.Equal(t, model.StatusRuleMatched, records[0].Status)
}

func TestCategorizeAll_OracleFallback(t *testing.T) {
	cache := newMemoryCache()
	oracle := &countingOracle{responses: map[string]string{
		"mystery vendor": "corporate_software/miscellaneous",
	}}
	c := newCategorizer(t, cache, oracle)

	records := []*model.InvoiceRecord{record("a", "mystery vendor", "unlabeled subscription")}
	result, err := c.CategorizeAll(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, result.OracleCalls)
	assert.Equal(t, "corporate_software/miscellaneous", records[0].CategoryPath)
	assert.Equal(t, model.StatusCategorized, records[0].Status)

	// The oracle result was persisted under the record's content hash.
	entry, err := cache.Get(context.Background(), records[0].ContentHash)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "corporate_software/miscellaneous", entry.CategoryPath)
}

func TestCategorizeAll_AtMostOneOracleCallPerHash(t *testing.T) {
	cache := newMemoryCache()
	oracle := &countingOracle{responses: map[string]string{
		"mystery vendor": "corporate_software/miscellaneous",
	}}
	c := newCategorizer(t, cache, oracle)

	// Identical content, so identical hashes.
	records := []*model.InvoiceRecord{
		record("a", "mystery vendor", "unlabeled subscription"),
		record("b", "mystery vendor", "unlabeled subscription"),
	}
	require.Equal(t, records[0].ContentHash, records[1].ContentHash)

	result, err := c.CategorizeAll(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, oracle.calls)
	assert.Equal(t, 1, result.OracleCalls)
	assert.Equal(t, "corporate_software/miscellaneous", records[0].CategoryPath)
	assert.Equal(t, "corporate_software/miscellaneous", records[1].CategoryPath)
}

func TestCategorizeAll_SecondRunHitsCache(t *testing.T) {
	cache := newMemoryCache()
	oracle := &countingOracle{responses: map[string]string{
		"mystery vendor": "corporate_software/miscellaneous",
	}}
	c := newCategorizer(t, cache, oracle)

	first := []*model.InvoiceRecord{record("a", "mystery vendor", "unlabeled subscription")}
	_, err := c.CategorizeAll(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, 1, oracle.calls)

	second := []*model.InvoiceRecord{record("b", "mystery vendor", "unlabeled subscription")}
	result, err := c.CategorizeAll(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 1, oracle.calls, "cache hit must not re-invoke the oracle")
	assert.Equal(t, 1, result.CacheHits)
	assert.Equal(t, model.StatusCategorized, second[0].Status)
}

func TestCategorizeAll_OracleFailureKeepsRecord(t *testing.T) {
	oracle := &countingOracle{err: errors.New("timeout")}
	c := newCategorizer(t, newMemoryCache(), oracle)

	records := []*model.InvoiceRecord{record("a", "mystery vendor", "unlabeled subscription")}
	result, err := c.CategorizeAll(context.Background(), records)
	require.NoError(t, err, "a failed oracle call must not fail the run")

	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.NeedsReview, 1)
	assert.Equal(t, "a", result.NeedsReview[0].ID)
	assert.Equal(t, model.UncategorizedPath, records[0].CategoryPath)
	assert.Equal(t, model.StatusCategorizationFailed, records[0].Status)
}

func TestCategorizeAll_CacheErrorDegradesToOracle(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("disk corrupted")
	oracle := &countingOracle{responses: map[string]string{
		"mystery vendor": "corporate_software/miscellaneous",
	}}
	c := newCategorizer(t, cache, oracle)

	records := []*model.InvoiceRecord{record("a", "mystery vendor", "unlabeled subscription")}
	result, err := c.CategorizeAll(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, result.OracleCalls)
	assert.Equal(t, model.StatusCategorized, records[0].Status)
}

func TestCategorizeAll_NilOracleSendsMissesToReview(t *testing.T) {
	c := newCategorizer(t, newMemoryCache(), nil)

	records := []*model.InvoiceRecord{
		record("a", "Synoptek", "Azure compute"),
		record("b", "mystery vendor", "unlabeled subscription"),
	}
	result, err := c.CategorizeAll(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RuleMatched)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, model.StatusCategorizationFailed, records[1].Status)
}

func TestCategorizeAll_ManyDistinctHashes(t *testing.T) {
	cache := newMemoryCache()
	oracle := &countingOracle{responses: map[string]string{}}
	for _, v := range []string{"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8"} {
		oracle.responses[v] = "corporate_software/miscellaneous"
	}

	var progressCalls int
	table, err := rules.NewTable(rules.DefaultRules())
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.OnProgress = func(done, total int) { progressCalls++ }
	c := New(table, cache, oracle, cfg, nil)

	var records []*model.InvoiceRecord
	for i, v := range []string{"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8"} {
		records = append(records, record(string(rune('a'+i)), v, "widget "+v))
	}

	result, err := c.CategorizeAll(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 8, oracle.calls)
	assert.Equal(t, 8, result.OracleCalls)
	assert.Equal(t, 8, progressCalls)
	for _, r := range records {
		assert.Equal(t, model.StatusCategorized, r.Status)
	}
}

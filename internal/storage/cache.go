package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/service"
)

// Get returns the cached categorization for a content hash, or nil when the
// hash is absent or the entry's TTL has expired. Every lookup updates the
// hit/miss counters.
func (s *SQLiteStorage) Get(ctx context.Context, contentHash string) (*service.CacheEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(contentHash, "contentHash"); err != nil {
		return nil, err
	}

	var entry service.CacheEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash, vendor, category_path, cached_at
		FROM categorization_cache
		WHERE content_hash = ?
	`, contentHash).Scan(&entry.ContentHash, &entry.Vendor, &entry.CategoryPath, &entry.CachedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.recordLookup(ctx, false)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if time.Since(entry.CachedAt) > s.cacheTTL {
		// Expired entries count as misses; a fresh oracle call is permitted.
		s.recordLookup(ctx, false)
		return nil, nil
	}

	s.recordLookup(ctx, true)
	return &entry, nil
}

// Put stores a categorization result. The upsert is atomic so concurrent
// writers for the same hash cannot corrupt the cache; last writer wins.
func (s *SQLiteStorage) Put(ctx context.Context, entry service.CacheEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(entry.ContentHash, "entry.ContentHash"); err != nil {
		return err
	}
	if err := validateString(entry.CategoryPath, "entry.CategoryPath"); err != nil {
		return err
	}

	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categorization_cache (content_hash, vendor, category_path, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			vendor = excluded.vendor,
			category_path = excluded.category_path,
			cached_at = excluded.cached_at
	`, entry.ContentHash, entry.Vendor, entry.CategoryPath, entry.CachedAt)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// ListAll returns every cache entry, including expired ones, for export and
// debugging.
func (s *SQLiteStorage) ListAll(ctx context.Context) ([]service.CacheEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content_hash, vendor, category_path, cached_at
		FROM categorization_cache
		ORDER BY cached_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []service.CacheEntry
	for rows.Next() {
		var entry service.CacheEntry
		if err := rows.Scan(&entry.ContentHash, &entry.Vendor, &entry.CategoryPath, &entry.CachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Stats reports cache size and lifetime effectiveness counters.
func (s *SQLiteStorage) Stats(ctx context.Context) (service.CacheStats, error) {
	if err := validateContext(ctx); err != nil {
		return service.CacheStats{}, err
	}

	var stats service.CacheStats
	err := s.db.QueryRowContext(ctx, `
		SELECT hits, misses, avoided_calls, last_updated FROM cache_stats WHERE id = 1
	`).Scan(&stats.Hits, &stats.Misses, &stats.AvoidedCalls, &stats.LastUpdated)
	if err != nil {
		return service.CacheStats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categorization_cache`).Scan(&stats.Entries); err != nil {
		return service.CacheStats{}, fmt.Errorf("failed to count cache entries: %w", err)
	}

	return stats, nil
}

// ClearCache removes all cache entries. Counters are preserved.
func (s *SQLiteStorage) ClearCache(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM categorization_cache`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// recordLookup bumps the hit/miss counters. Counter failures are swallowed;
// stats must never break a lookup.
func (s *SQLiteStorage) recordLookup(ctx context.Context, hit bool) {
	query := `UPDATE cache_stats SET misses = misses + 1, last_updated = CURRENT_TIMESTAMP WHERE id = 1`
	if hit {
		query = `UPDATE cache_stats SET hits = hits + 1, avoided_calls = avoided_calls + 1, last_updated = CURRENT_TIMESTAMP WHERE id = 1`
	}
	_, _ = s.db.ExecContext(ctx, query)
}

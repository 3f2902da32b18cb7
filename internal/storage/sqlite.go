// Package storage implements the persistence layer: the ingested invoice
// store and the categorization cache, both backed by SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultCacheTTL is applied when no TTL is configured. Entries older than
// the TTL are treated as absent, after which a fresh oracle call is
// permitted.
const DefaultCacheTTL = 30 * 24 * time.Hour

// SQLiteStorage implements service.InvoiceStore and service.CacheStore.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	cacheTTL time.Duration
}

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithCacheTTL overrides the categorization-cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *SQLiteStorage) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL plus a busy timeout lets concurrent pipeline runs share the cache
	// file without corrupting it.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{
		db:       db,
		dbPath:   dbPath,
		cacheTTL: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Migrate brings the schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return runMigrations(ctx, s.db)
}

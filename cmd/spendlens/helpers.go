package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/spendlens/spendlens/internal/benchmark"
	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/llm"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/normalize"
	"github.com/spendlens/spendlens/internal/rules"
	"github.com/spendlens/spendlens/internal/storage"
)

// initStorage opens the SQLite store and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath()

	var opts []storage.Option
	if ttl := viper.GetDuration("cache.ttl"); ttl > 0 {
		opts = append(opts, storage.WithCacheTTL(ttl))
	}

	store, err := storage.NewSQLiteStorage(dbPath, opts...)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// initNormalizer loads the alias table when configured, otherwise the
// built-in aliases.
func initNormalizer() (*normalize.Normalizer, error) {
	if path := viper.GetString("normalize.aliases"); path != "" {
		return normalize.LoadAliases(config.ExpandPath(path))
	}
	return normalize.New(), nil
}

// initRules loads custom rules layered over the defaults.
func initRules() (*rules.Table, error) {
	if path := viper.GetString("rules.path"); path != "" {
		return rules.LoadTable(config.ExpandPath(path))
	}
	return rules.NewTable(rules.DefaultRules())
}

// initBenchmarks loads the benchmark table, falling back to the built-in
// industry defaults.
func initBenchmarks() (*benchmark.Engine, error) {
	if path := viper.GetString("benchmarks.path"); path != "" {
		table, err := benchmark.LoadTable(config.ExpandPath(path))
		if err != nil {
			return nil, err
		}
		return benchmark.NewEngine(table), nil
	}
	return benchmark.NewEngine(benchmark.DefaultTable()), nil
}

// initOracle builds the LLM oracle, or returns nil when no API key is
// configured so the pipeline degrades to rules and cache only.
func initOracle(logger *slog.Logger) (*llm.Oracle, error) {
	cfg := config.LoadOracleConfig()
	if cfg.APIKey == "" {
		logger.Warn("no LLM API key configured; oracle categorization disabled")
		return nil, nil
	}
	return llm.NewOracle(cfg, logger)
}

// loadInputs ingests every given file and merges records and quarantine
// reports.
func loadInputs(paths []string, logger *slog.Logger) (*ingest.Result, error) {
	loader := ingest.NewLoader(logger)
	merged := &ingest.Result{}
	for _, path := range paths {
		res, err := loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged.Records = append(merged.Records, res.Records...)
		merged.Quarantined = append(merged.Quarantined, res.Quarantined...)
		merged.RowsRead += res.RowsRead
	}
	return merged, nil
}

// normalizeRecords applies vendor/company canonicalization and computes
// content hashes in place.
func normalizeRecords(n *normalize.Normalizer, records []*model.InvoiceRecord) {
	for _, r := range records {
		r.VendorNormalized = n.Vendor(r.VendorRaw)
		r.CompanyNormalized = n.Company(r.CompanyRaw)
		r.ContentHash = r.GenerateContentHash()
	}
}

// parseDateFlag converts an optional date flag. An empty value returns nil,
// meaning "no bound" rather than the zero time.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want 2006-01-02)", value)
	}
	return &t, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/storage"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the categorization cache",
	}
	cmd.AddCommand(cacheStatsCmd())
	cmd.AddCommand(cacheExportCmd())
	cmd.AddCommand(cacheClearCmd())
	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache hit rates and avoided oracle calls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Println(cli.FormatTitle("Categorization cache"))
				fmt.Printf("  %s Entries:              %d\n", cli.CacheIcon, stats.Entries)
				fmt.Printf("  Hits:                  %d\n", stats.Hits)
				fmt.Printf("  Misses:                %d\n", stats.Misses)
				fmt.Printf("  Oracle calls avoided:  %d\n", stats.AvoidedCalls)
				if !stats.LastUpdated.IsZero() {
					fmt.Printf("  Last updated:          %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}
}

func cacheExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Dump all cache entries as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				entries, err := store.ListAll(cmd.Context())
				if err != nil {
					return err
				}

				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			})
		},
	}
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached categorizations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.ClearCache(cmd.Context()); err != nil {
					return err
				}
				fmt.Println(cli.FormatSuccess("Cache cleared"))
				return nil
			})
		},
	}
}

// withStorage opens the store, runs fn, and always closes.
func withStorage(cmd *cobra.Command, fn func(*storage.SQLiteStorage) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Default().Error("closing storage", "error", closeErr)
		}
	}()
	return fn(store)
}

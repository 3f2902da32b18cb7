package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/dashboard"
	"github.com/spendlens/spendlens/internal/dedupe"
	"github.com/spendlens/spendlens/internal/recommend"
	"github.com/spendlens/spendlens/internal/report"
	"github.com/spendlens/spendlens/internal/service"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the spend dashboard API",
		Long: `Start the dashboard HTTP server. The analysis is loaded from a saved JSON
payload when --analysis is given, otherwise it is computed from the invoices
in the local database.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("analysis", "", "serve a previously saved analysis JSON file")

	_ = viper.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.analysis", cmd.Flags().Lookup("analysis"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	var analysis *report.Analysis
	if path := viper.GetString("serve.analysis"); path != "" {
		loaded, err := report.LoadJSON(path)
		if err != nil {
			return err
		}
		analysis = loaded
	} else {
		computed, err := buildAnalysisFromStore(cmd)
		if err != nil {
			return err
		}
		analysis = computed
	}

	addr := viper.GetString("serve.addr")
	fmt.Println(cli.FormatTitle(fmt.Sprintf("Dashboard listening on %s", addr)))

	srv := dashboard.NewServer(addr, analysis, logger)
	return srv.ListenAndServe(ctx)
}

func buildAnalysisFromStore(cmd *cobra.Command) (*report.Analysis, error) {
	ctx := cmd.Context()
	logger := slog.Default()

	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("closing storage", "error", closeErr)
		}
	}()

	records, err := store.GetInvoices(ctx, service.InvoiceFilter{})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no invoices in the database; run 'spendlens import' first")
	}

	engine, err := initBenchmarks()
	if err != nil {
		return nil, err
	}

	cacheStats, err := store.Stats(ctx)
	if err != nil {
		logger.Warn("cache stats unavailable", "error", err)
	}

	dd := dedupe.Deduplicate(records)
	return report.Build(report.BuildInput{
		Records:      dd.Kept,
		DedupeResult: &dd,
		Engine:       engine,
		Recommender:  recommend.NewGenerator(recommendConfig()),
		CacheStats:   &cacheStats,
	})
}

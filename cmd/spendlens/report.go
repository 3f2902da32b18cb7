package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/dedupe"
	"github.com/spendlens/spendlens/internal/recommend"
	"github.com/spendlens/spendlens/internal/report"
	"github.com/spendlens/spendlens/internal/service"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a spend report from stored invoices",
		Long: `Build the executive spend report from invoices already imported and
categorized in the local database.`,
		RunE: runReport,
	}

	cmd.Flags().StringP("output", "o", "spend-report.md", "markdown report output path")
	cmd.Flags().String("json", "", "also write the analysis payload as JSON")
	cmd.Flags().String("start-date", "", "only include invoices on or after this date (2006-01-02)")
	cmd.Flags().String("end-date", "", "only include invoices on or before this date (2006-01-02)")

	_ = viper.BindPFlag("report.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("report.json", cmd.Flags().Lookup("json"))
	_ = viper.BindPFlag("report.start_date", cmd.Flags().Lookup("start-date"))
	_ = viper.BindPFlag("report.end_date", cmd.Flags().Lookup("end-date"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	startDate, err := parseDateFlag(viper.GetString("report.start_date"))
	if err != nil {
		return err
	}
	endDate, err := parseDateFlag(viper.GetString("report.end_date"))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("closing storage", "error", closeErr)
		}
	}()

	records, err := store.GetInvoices(ctx, service.InvoiceFilter{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no invoices in the database; run 'spendlens import' first")
	}

	engine, err := initBenchmarks()
	if err != nil {
		return err
	}

	cacheStats, err := store.Stats(ctx)
	if err != nil {
		logger.Warn("cache stats unavailable", "error", err)
	}

	// Stored records are already deduplicated; the result feeds the data
	// quality section.
	dd := dedupe.Deduplicate(records)

	analysis, err := report.Build(report.BuildInput{
		Records:      dd.Kept,
		DedupeResult: &dd,
		Engine:       engine,
		Recommender:  recommend.NewGenerator(recommendConfig()),
		CacheStats:   &cacheStats,
	})
	if err != nil {
		return err
	}

	outputPath := viper.GetString("report.output")
	if err := os.WriteFile(outputPath, []byte(report.RenderMarkdown(analysis)), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Report written to %s", outputPath)))

	if jsonPath := viper.GetString("report.json"); jsonPath != "" {
		if err := report.SaveJSON(jsonPath, analysis); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Analysis JSON written to %s", jsonPath)))
	}
	return nil
}

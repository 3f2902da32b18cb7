package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendlens/spendlens/internal/categorize"
	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/dedupe"
	"github.com/spendlens/spendlens/internal/recommend"
	"github.com/spendlens/spendlens/internal/report"
	"github.com/spendlens/spendlens/internal/service"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Run the full analysis pipeline over invoice files",
		Long: `Run the complete pipeline: ingest the given CSV/JSON invoice files,
normalize vendor and company names, remove duplicates, categorize spend,
compare against industry benchmarks, and write the analysis report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("output", "o", "spend-report.md", "markdown report output path")
	cmd.Flags().String("json", "", "also write the analysis payload as JSON")
	cmd.Flags().Int("workers", 4, "concurrent oracle calls")
	cmd.Flags().Bool("no-oracle", false, "skip LLM categorization (rules and cache only)")

	_ = viper.BindPFlag("analyze.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("analyze.json", cmd.Flags().Lookup("json"))
	_ = viper.BindPFlag("analyze.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("analyze.no_oracle", cmd.Flags().Lookup("no-oracle"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	fmt.Println(cli.FormatTitle("Analyzing invoice spend"))

	// Ingest
	inputs, err := loadInputs(args, logger)
	if err != nil {
		return err
	}
	if len(inputs.Records) == 0 {
		return common.NewUserError(
			fmt.Sprintf("no valid invoice records in %d input rows", inputs.RowsRead),
			common.ErrNoRecords)
	}

	// Normalize
	normalizer, err := initNormalizer()
	if err != nil {
		return err
	}
	normalizeRecords(normalizer, inputs.Records)

	// Deduplicate
	dd := dedupe.Deduplicate(inputs.Records)
	if dd.RemovedCount > 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Removed %d duplicate invoices", dd.RemovedCount)))
	}

	// Categorize
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("closing storage", "error", closeErr)
		}
	}()

	table, err := initRules()
	if err != nil {
		return err
	}

	var oracle service.Oracle
	if !viper.GetBool("analyze.no_oracle") {
		llmOracle, oracleErr := initOracle(logger)
		if oracleErr != nil {
			return oracleErr
		}
		if llmOracle != nil {
			defer llmOracle.Close()
			oracle = llmOracle
		}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Categorizing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	catCfg := categorize.Config{
		Workers: viper.GetInt("analyze.workers"),
		OnProgress: func(done, total int) {
			bar.ChangeMax(total)
			_ = bar.Set(done)
		},
	}
	categorizer := categorize.New(table, store, oracle, catCfg, logger)

	catResult, err := categorizer.CategorizeAll(ctx, dd.Kept)
	if err != nil {
		return fmt.Errorf("categorization: %w", err)
	}
	_ = bar.Finish()

	// Benchmark + recommendations + report
	engine, err := initBenchmarks()
	if err != nil {
		return err
	}

	cacheStats, err := store.Stats(ctx)
	if err != nil {
		logger.Warn("cache stats unavailable", "error", err)
	}

	needsReview := make([]string, 0, len(catResult.NeedsReview))
	for _, r := range catResult.NeedsReview {
		needsReview = append(needsReview, r.ID)
	}

	analysis, err := report.Build(report.BuildInput{
		Records:         dd.Kept,
		DedupeResult:    &dd,
		Engine:          engine,
		Recommender:     recommend.NewGenerator(recommendConfig()),
		CacheStats:      &cacheStats,
		NeedsReview:     needsReview,
		QuarantinedRows: len(inputs.Quarantined),
	})
	if err != nil {
		return err
	}

	// Persist the analyzed records for later report/serve runs.
	if err := store.SaveInvoices(ctx, dd.Kept); err != nil {
		logger.Warn("failed to persist analyzed invoices", "error", err)
	}

	outputPath := viper.GetString("analyze.output")
	if err := os.WriteFile(outputPath, []byte(report.RenderMarkdown(analysis)), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Report written to %s", outputPath)))

	if jsonPath := viper.GetString("analyze.json"); jsonPath != "" {
		if err := report.SaveJSON(jsonPath, analysis); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Analysis JSON written to %s", jsonPath)))
	}

	printRunSummary(analysis, catResult)
	return nil
}

func recommendConfig() recommend.Config {
	cfg := recommend.DefaultConfig()
	if v := viper.GetFloat64("recommend.vendor_share_threshold"); v > 0 {
		cfg.VendorShareThreshold = v
	}
	if v := viper.GetFloat64("recommend.company_share_threshold"); v > 0 {
		cfg.CompanyShareThreshold = v
	}
	if v := viper.GetFloat64("recommend.high_variance_threshold"); v > 0 {
		cfg.HighVarianceThreshold = v
	}
	if v := viper.GetFloat64("recommend.discount_rate"); v > 0 {
		cfg.DiscountRate = v
	}
	return cfg
}

func printRunSummary(a *report.Analysis, cat categorize.Result) {
	fmt.Println()
	fmt.Println(cli.BoldStyle.Render("Run summary"))
	fmt.Printf("  Total spend:      $%s across %d invoices\n",
		a.Summary.TotalSpend.StringFixed(2), a.Summary.RecordCount)
	fmt.Printf("  Categorization:   %d by rule, %d from cache, %d oracle calls\n",
		cat.RuleMatched, cat.CacheHits, cat.OracleCalls)
	if cat.Failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf(
			"  %d records need manual review (kept as uncategorized)", cat.Failed)))
	}
	fmt.Printf("  Recommendations:  %d\n", len(a.Recommendations))
}

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
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize imported invoices",
		Long: `Assign category paths to invoices already in the local database. Rules run
first, then the persistent cache, then the LLM oracle for whatever is left.
Results are written back to the database.`,
		RunE: runCategorize,
	}

	cmd.Flags().Int("workers", 4, "concurrent oracle calls")
	cmd.Flags().Bool("only-uncategorized", true, "restrict to records without a category")
	cmd.Flags().Bool("no-oracle", false, "skip LLM categorization (rules and cache only)")

	_ = viper.BindPFlag("categorize.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("categorize.only_uncategorized", cmd.Flags().Lookup("only-uncategorized"))
	_ = viper.BindPFlag("categorize.no_oracle", cmd.Flags().Lookup("no-oracle"))

	return cmd
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

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
		Uncategorized: viper.GetBool("categorize.only_uncategorized"),
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(cli.FormatInfo("Nothing to categorize"))
		return nil
	}

	table, err := initRules()
	if err != nil {
		return err
	}

	var oracle service.Oracle
	if !viper.GetBool("categorize.no_oracle") {
		llmOracle, oracleErr := initOracle(logger)
		if oracleErr != nil {
			return oracleErr
		}
		if llmOracle != nil {
			defer llmOracle.Close()
			oracle = llmOracle
		}
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Categorizing %d invoices", len(records))))

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Categorizing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	cfg := categorize.Config{
		Workers: viper.GetInt("categorize.workers"),
		OnProgress: func(done, total int) {
			bar.ChangeMax(total)
			_ = bar.Set(done)
		},
	}

	result, err := categorize.New(table, store, oracle, cfg, logger).CategorizeAll(ctx, records)
	if err != nil {
		return fmt.Errorf("categorization: %w", err)
	}
	_ = bar.Finish()

	// Persist updated categories.
	for _, r := range records {
		if r.Status == model.StatusUncategorized {
			continue
		}
		if err := store.UpdateCategory(ctx, r.ID, r.CategoryPath, r.Status); err != nil {
			logger.Error("failed to save category", "id", r.ID, "error", err)
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Categorized %d invoices: %d by rule, %d from cache, %d oracle calls",
		len(records)-result.Failed, result.RuleMatched, result.CacheHits, result.OracleCalls)))
	if result.Failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf(
			"%d invoices need manual review:", result.Failed)))
		for _, r := range result.NeedsReview {
			fmt.Printf("  %s %s (%s)\n", cli.WarningIcon, r.ID, r.VendorNormalized)
		}
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/dedupe"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import invoice files into the local database",
		Long: `Import vendor invoice CSV or JSON files into the local database for later
categorization and reporting. Records are normalized and deduplicated on the
way in; duplicates are dropped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")
	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	fmt.Println(cli.FormatTitle("Importing invoices"))

	inputs, err := loadInputs(args, logger)
	if err != nil {
		return err
	}

	normalizer, err := initNormalizer()
	if err != nil {
		return err
	}
	normalizeRecords(normalizer, inputs.Records)

	dd := dedupe.Deduplicate(inputs.Records)

	if len(inputs.Quarantined) > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf(
			"%d input rows quarantined (see log for details)", len(inputs.Quarantined))))
	}

	if viper.GetBool("import.dry_run") {
		fmt.Println(cli.FormatInfo(fmt.Sprintf(
			"Dry run: would import %d records (%d duplicates skipped)",
			len(dd.Kept), dd.RemovedCount)))
		return nil
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

	if err := store.SaveInvoices(ctx, dd.Kept); err != nil {
		return fmt.Errorf("saving invoices: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Imported %d records (%d duplicates skipped, %d rows quarantined)",
		len(dd.Kept), dd.RemovedCount, len(inputs.Quarantined))))
	return nil
}

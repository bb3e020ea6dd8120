package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/underbudget/internal/budget"
	"github.com/Veraticus/underbudget/internal/cli"
	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/config"
	"github.com/Veraticus/underbudget/internal/engine"
	"github.com/Veraticus/underbudget/internal/importer"
	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/report"
	"github.com/Veraticus/underbudget/internal/service"
	"github.com/Veraticus/underbudget/internal/sheets"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a budget against the ledger",
		Long: `Assign every ledger transaction in the budget period to exactly one estimate,
then report estimated, actual and expected amounts with the resulting balances.

Without --transactions the ledger is read from the local database.`,
		Example: `  # Summary for the budget's own period
  underbudget analyze --budget ~/budgets/2024-01.yaml

  # Every table, from a bank export, as if it were January 20th
  underbudget analyze --budget jan.yaml --transactions jan.ofx --reports all --as-of 2024-01-20

  # Keep a copy in a workbook and in the analysis history
  underbudget analyze --budget jan.yaml --export jan.xlsx --save`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("budget", "b", "", "Budget file (YAML)")
	cmd.Flags().StringP("transactions", "t", "", "Ledger file (.csv, .ofx, .qfx, .xlsx) instead of the database")
	cmd.Flags().StringP("reports", "r", "summary", "Report sections to show (summary, comparison, allocation, worksheet, all)")
	cmd.Flags().BoolP("long", "l", false, "Include totals, rationale and running balances")
	cmd.Flags().String("as-of", "", "Analyze as of this date (format: 2006-01-02, default: today)")
	cmd.Flags().String("export", "", "Also write the report to an .xlsx workbook")
	cmd.Flags().Bool("sheets", false, "Also export the report to Google Sheets")
	cmd.Flags().Bool("save", false, "Record the analysis in the database history")
	cmd.Flags().Bool("no-progress", false, "Hide the progress bar")

	// Bind to viper
	_ = viper.BindPFlag("analyze.reports", cmd.Flags().Lookup("reports"))
	_ = viper.BindPFlag("analyze.long", cmd.Flags().Lookup("long"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	budgetPath, err := budgetPathFlag(cmd)
	if err != nil {
		return err
	}
	ledgerPath, _ := cmd.Flags().GetString("transactions")
	exportPath, _ := cmd.Flags().GetString("export")
	toSheets, _ := cmd.Flags().GetBool("sheets")
	save, _ := cmd.Flags().GetBool("save")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	sections, err := report.ParseSections(viper.GetString("analyze.reports"))
	if err != nil {
		return err
	}

	engineConfig := engine.DefaultConfig()
	if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
		if engineConfig.AsOf, err = parseDate("as-of", asOf); err != nil {
			return err
		}
	}

	// Sheets credentials are checked before any work is done
	var sheetsConfig *sheets.Config
	if toSheets {
		if sheetsConfig, err = config.LoadSheetsConfig(); err != nil {
			return common.NewUserError("Google Sheets is not configured; run 'underbudget auth sheets' first", err)
		}
	}

	interrupts := cli.NewInterruptHandler(out, "Analysis")
	ctx, stop := interrupts.HandleInterrupts(cmd.Context(), "Nothing was saved; rerun the analysis when ready.")
	defer stop()

	b, txns, err := loadInputs(ctx, budgetPath, ledgerPath)
	if err != nil {
		return err
	}

	if !noProgress {
		engineConfig.Progress = cli.NewProgressBar(cmd.ErrOrStderr(), "Analyzing "+b.Name)
	}
	eng, err := engine.NewWithConfig(engineConfig)
	if err != nil {
		return err
	}

	results, err := eng.Analyze(ctx, b, txns)
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return fmt.Errorf("analysis failed: %w", err)
	}
	for _, d := range results.Rules.Diagnostics {
		common.LogWarn("Skipped rule", common.Fields{
			"estimate": d.Estimate,
			"rule":     d.Rule.String(),
			"reason":   d.Message,
		})
	}

	rep := report.Build(results, report.Options{Long: viper.GetBool("analyze.long")})
	if _, err := fmt.Fprintln(out, report.NewCLIFormatter().Format(rep, sections)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	var exporters []service.ReportExporter
	if exportPath != "" {
		exporters = append(exporters, report.NewXLSXExporter(config.ExpandPath(exportPath)))
	}
	if sheetsConfig != nil {
		writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		exporters = append(exporters, writer)
	}
	if err := exportReport(ctx, out, rep, exporters); err != nil {
		return err
	}

	if save {
		return saveRun(ctx, out, results)
	}
	return nil
}

// budgetPathFlag returns --budget, falling back to the configured default budget.
func budgetPathFlag(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("budget")
	if path == "" {
		path = viper.GetString("budget.path")
	}
	if path == "" {
		return "", common.NewUserError("no budget given; pass --budget or set budget.path in the config", common.ErrMissingConfig)
	}
	return config.ExpandPath(path), nil
}

// loadInputs reads the budget and the ledger concurrently. Without a ledger
// file the transactions of the budget period come from the database.
func loadInputs(ctx context.Context, budgetPath, ledgerPath string) (*model.Budget, []model.Transaction, error) {
	var (
		b      *model.Budget
		parsed []model.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = budget.Load(budgetPath)
		return err
	})
	if ledgerPath != "" {
		g.Go(func() error {
			var err error
			parsed, err = importer.ImportFile(gctx, config.ExpandPath(ledgerPath), importer.Options{})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if ledgerPath != "" {
		return b, importer.Filter(parsed, b.Period), nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = store.Close() }()

	filter := service.TransactionFilter{}
	if b.Period != nil {
		start, end := b.Period.Start(), b.Period.End()
		filter.StartDate, filter.EndDate = &start, &end
	}
	txns, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	slog.Info("Loaded ledger from database", "transactions", len(txns), "database", databasePath())
	return b, txns, nil
}

func exportReport(ctx context.Context, out io.Writer, rep *service.Report, exporters []service.ReportExporter) error {
	for _, exporter := range exporters {
		if err := exporter.Export(ctx, rep); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		switch e := exporter.(type) {
		case *report.XLSXExporter:
			fmt.Fprintln(out, cli.FormatSuccess("Report written to "+e.Path))
		case *sheets.Writer:
			fmt.Fprintln(out, cli.FormatSuccess("Report exported to spreadsheet "+e.SpreadsheetID()))
		}
	}
	return nil
}

func saveRun(ctx context.Context, out io.Writer, results *engine.Results) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run := engine.NewAnalysisRun(results)
	if err := store.SaveAnalysisRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Analysis saved as "+run.ID.String()))
	return nil
}

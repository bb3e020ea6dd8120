package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/underbudget/internal/budget"
	"github.com/Veraticus/underbudget/internal/cli"
	"github.com/Veraticus/underbudget/internal/config"
	"github.com/Veraticus/underbudget/internal/importer"
	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/ofx"
)

const maxConcurrentImports = 4

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import ledger files into the database",
		Long: `Import transactions from CSV, OFX/QFX or XLSX exports into the local database.

With --budget only transactions inside the budget period are kept.
Transactions already in the database are skipped automatically.`,
		Example: `  # Import a month of bank exports
  underbudget import checking.ofx savings.qfx

  # Keep only what falls in January's budget
  underbudget import ~/Downloads/2024.csv --budget jan.yaml

  # See which accounts an OFX file contains
  underbudget import statement.ofx --list-accounts`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("budget", "b", "", "Only keep transactions within this budget's period")
	cmd.Flags().Bool("list-accounts", false, "List the accounts in OFX files without importing")
	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	paths := make([]string, len(args))
	for i, arg := range args {
		paths[i] = config.ExpandPath(arg)
	}

	if listAccounts, _ := cmd.Flags().GetBool("list-accounts"); listAccounts {
		return printAccounts(ctx, cmd, paths)
	}

	opts := importer.Options{}
	if budgetPath, _ := cmd.Flags().GetString("budget"); budgetPath != "" {
		b, err := budget.Load(config.ExpandPath(budgetPath))
		if err != nil {
			return err
		}
		opts.Period = b.Period
		slog.Info("Filtering import by budget period", "period", b.Period.String())
	}

	txns, err := importFiles(ctx, paths, opts)
	if err != nil {
		return err
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Would import %d transactions (dry run)", len(txns))))
		for _, txn := range txns {
			fmt.Fprintf(out, "  %s  %-30s %12s\n", txn.Date.Format(dateLayout), txn.Payee, cli.FormatAmount(txn.Amount))
		}
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	saved, err := store.SaveTransactions(ctx, txns)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions", saved)))
	if skipped := len(txns) - saved; skipped > 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("  %d already in the database", skipped)))
	}
	return nil
}

// importFiles parses every file concurrently and returns the transactions in argument order.
func importFiles(ctx context.Context, paths []string, opts importer.Options) ([]model.Transaction, error) {
	results := make([][]model.Transaction, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentImports)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			txns, err := importer.ImportFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = txns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Transaction
	for _, txns := range results {
		all = append(all, txns...)
	}
	return all, nil
}

func printAccounts(ctx context.Context, cmd *cobra.Command, paths []string) error {
	parser := ofx.NewParser()
	seen := make(map[string]bool)

	for _, path := range paths {
		if ext := strings.ToLower(filepath.Ext(path)); ext != ".ofx" && ext != ".qfx" {
			slog.Warn("Skipping non-OFX file", "path", path)
			continue
		}
		f, err := os.Open(path) //nolint:gosec // user-supplied ledger path
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		accounts, err := parser.GetAccounts(ctx, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		for _, account := range accounts {
			seen[account] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for account := range seen {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	out := cmd.OutOrStdout()
	if len(accounts) == 0 {
		fmt.Fprintln(out, cli.SubtitleStyle.Render("No accounts found."))
		return nil
	}
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d accounts", len(accounts))))
	for _, account := range accounts {
		fmt.Fprintln(out, "  "+cli.InfoStyle.Render(account))
	}
	return nil
}

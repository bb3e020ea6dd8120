package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/underbudget/internal/cli"
	"github.com/Veraticus/underbudget/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

A checkpoint is taken automatically before pending migrations are applied.`,
		RunE: runMigrate,
	}

	// Flags
	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")
	cmd.Flags().Bool("no-checkpoint", false, "Skip the automatic checkpoint before migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	status, _ := cmd.Flags().GetBool("status")
	noCheckpoint, _ := cmd.Flags().GetBool("no-checkpoint")

	dbPath := databasePath()
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	pending, err := store.PendingMigrations(ctx)
	if err != nil {
		return err
	}

	if status {
		fmt.Fprintln(out, cli.FormatTitle(cli.ChartIcon+" Database Migration Status"))
		fmt.Fprintln(out, cli.FormatField("Database", 16, dbPath))
		fmt.Fprintln(out, cli.FormatField("Current version", 16, fmt.Sprint(current)))
		fmt.Fprintln(out, cli.FormatField("Latest version", 16, fmt.Sprint(storage.ExpectedSchemaVersion)))
		for _, m := range pending {
			fmt.Fprintf(out, "  pending v%d: %s\n", m.Version, m.Description)
		}
		return nil
	}

	if len(pending) == 0 {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database is up to date (version %d)", current)))
		return nil
	}

	if current > 0 && !noCheckpoint {
		manager, err := storage.NewCheckpointManager(store)
		if err != nil {
			return err
		}
		info, err := manager.AutoCheckpoint(ctx, "pre-migrate")
		if err != nil {
			return fmt.Errorf("failed to checkpoint before migrating: %w", err)
		}
		slog.Info("Created checkpoint before migration", "checkpoint", info.ID)
	}

	slog.Info("Running database migrations", "database", dbPath, "from", current, "pending", len(pending))
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database migrated to version %d", storage.ExpectedSchemaVersion)))
	return nil
}

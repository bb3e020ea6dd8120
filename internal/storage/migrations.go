package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/underbudget/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					hash TEXT PRIMARY KEY,
					id TEXT,
					date TEXT NOT NULL,
					payee TEXT NOT NULL DEFAULT '',
					memo TEXT NOT NULL DEFAULT '',
					amount TEXT NOT NULL,
					withdrawal TEXT NOT NULL DEFAULT '',
					deposit TEXT NOT NULL DEFAULT '',
					source TEXT NOT NULL DEFAULT '',
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
			}
			return execAll(tx, queries)
		},
	},
	{
		Version:     2,
		Description: "Add analysis history",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS analysis_runs (
					id TEXT PRIMARY KEY,
					budget_name TEXT NOT NULL,
					period TEXT NOT NULL,
					period_start TEXT NOT NULL,
					period_end TEXT NOT NULL,
					as_of TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					transaction_count INTEGER NOT NULL DEFAULT 0,
					initial_balance TEXT NOT NULL DEFAULT '0',
					estimated_income TEXT NOT NULL,
					actual_income TEXT NOT NULL,
					expected_income TEXT NOT NULL,
					estimated_expense TEXT NOT NULL,
					actual_expense TEXT NOT NULL,
					expected_expense TEXT NOT NULL
				)`,
				`CREATE INDEX idx_analysis_runs_created ON analysis_runs(created_at)`,
				`CREATE TABLE IF NOT EXISTS analysis_entries (
					run_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					estimate_id TEXT NOT NULL,
					name TEXT NOT NULL,
					polarity TEXT NOT NULL,
					rationale TEXT NOT NULL,
					estimated TEXT NOT NULL,
					actual TEXT NOT NULL,
					expected TEXT NOT NULL,
					PRIMARY KEY (run_id, position),
					FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
				)`,
			}
			return execAll(tx, queries)
		},
	},
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// PendingMigrations returns the migrations not yet applied to the database.
func (s *SQLiteStorage) PendingMigrations(ctx context.Context) ([]Migration, error) {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, m := range migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("%w: schema version %d is newer than supported version %d",
			common.ErrDatabaseCorrupted, currentVersion, ExpectedSchemaVersion)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// Package testutil provides test utilities for the underbudget project.
// It offers type-safe APIs, proper test isolation, and elegant abstractions for test data management.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/service"
	"github.com/Veraticus/underbudget/internal/storage"
	"github.com/Veraticus/underbudget/internal/testutil/estimates"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage      service.Storage
	Budget       *model.Budget
	t            *testing.T
	Transactions []model.Transaction
}

// SetupTestDB creates a new in-memory test database seeded with the given transactions.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		estimates.Txn(t, "2024-01-03", "-42.00", "Market", ""),
//	)
func SetupTestDB(t *testing.T, txns ...model.Transaction) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Transactions: txns})
}

// SetupHouseholdDB creates a test database holding the household fixture ledger.
// The matching budget is available as db.Budget.
func SetupHouseholdDB(t *testing.T) *TestDB {
	t.Helper()
	budget, txns := estimates.FixtureHousehold(t)
	db := SetupTestDBWithOptions(t, TestDBOptions{Transactions: txns})
	db.Budget = budget
	return db
}

// MustTransactions returns every stored transaction or fails the test.
func (db *TestDB) MustTransactions() []model.Transaction {
	db.t.Helper()
	txns, err := db.Storage.GetTransactions(context.Background(), service.TransactionFilter{})
	if err != nil {
		db.t.Fatalf("failed to load transactions: %v", err)
	}
	return txns
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Transactions   []model.Transaction
	Runs           []*model.AnalysisRun
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Transactions) > 0 {
		if _, err := store.SaveTransactions(ctx, opts.Transactions); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
	}

	for _, run := range opts.Runs {
		if err := store.SaveAnalysisRun(ctx, run); err != nil {
			t.Fatalf("failed to seed analysis run %s: %v", run.ID, err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:      store,
		Transactions: opts.Transactions,
		t:            t,
	}
}

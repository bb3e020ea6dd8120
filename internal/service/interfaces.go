// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/underbudget/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Ledger operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByHash(ctx context.Context, hash string) (*model.Transaction, error)

	// Analysis history
	SaveAnalysisRun(ctx context.Context, run *model.AnalysisRun) error
	GetAnalysisRuns(ctx context.Context, limit int) ([]model.AnalysisRun, error)
	GetAnalysisRun(ctx context.Context, id uuid.UUID) (*model.AnalysisRun, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReportExporter publishes analysis results outside the terminal.
type ReportExporter interface {
	Export(ctx context.Context, report *Report) error
}

// Report is the flattened, presentation-ready form of an analysis.
type Report struct {
	GeneratedAt time.Time
	Title       string
	Period      string
	Summary     [][]string
	Comparison  [][]string
	Worksheet   [][]string
	Allocation  [][]string
}

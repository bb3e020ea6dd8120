package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

const runColumns = `id, budget_name, period, period_start, period_end, as_of, created_at,
	transaction_count, initial_balance,
	estimated_income, actual_income, expected_income,
	estimated_expense, actual_expense, expected_expense`

// SaveAnalysisRun stores an analysis run and its entries.
func (s *SQLiteStorage) SaveAnalysisRun(ctx context.Context, run *model.AnalysisRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO analysis_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(),
		run.Budget,
		run.Period,
		run.PeriodStart.Format(dateLayout),
		run.PeriodEnd.Format(dateLayout),
		run.AsOf.Format(time.RFC3339),
		createdAt.UTC(),
		run.TransactionCount,
		run.InitialBalance.String(),
		run.EstimatedIncome.String(),
		run.ActualIncome.String(),
		run.ExpectedIncome.String(),
		run.EstimatedExpense.String(),
		run.ActualExpense.String(),
		run.ExpectedExpense.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO analysis_entries (
			run_id, position, estimate_id, name, polarity, rationale, estimated, actual, expected
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range run.Entries {
		if _, err := stmt.ExecContext(ctx,
			run.ID.String(), i, e.EstimateID.String(), e.Name, string(e.Polarity), e.Rationale,
			e.Estimated.String(), e.Actual.String(), e.Expected.String(),
		); err != nil {
			return fmt.Errorf("failed to insert entry %q: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

// GetAnalysisRuns returns the most recent runs without their entries, newest first.
func (s *SQLiteStorage) GetAnalysisRuns(ctx context.Context, limit int) ([]model.AnalysisRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetAnalysisRun returns a single run including its entries.
func (s *SQLiteStorage) GetAnalysisRun(ctx context.Context, id uuid.UUID) (*model.AnalysisRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE id = ?`, id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	entries, err := s.getEntries(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	run.Entries = entries
	return run, nil
}

func (s *SQLiteStorage) getEntries(ctx context.Context, q queryable, runID uuid.UUID) ([]model.AnalysisEntry, error) {
	rows, err := q.QueryContext(ctx, `SELECT estimate_id, name, polarity, rationale, estimated, actual, expected
		FROM analysis_entries WHERE run_id = ? ORDER BY position`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AnalysisEntry
	for rows.Next() {
		var (
			e                           model.AnalysisEntry
			estimateID, polarity        string
			estimated, actual, expected string
		)
		if err := rows.Scan(&estimateID, &e.Name, &polarity, &e.Rationale, &estimated, &actual, &expected); err != nil {
			return nil, fmt.Errorf("failed to scan analysis entry: %w", err)
		}
		if e.EstimateID, err = uuid.Parse(estimateID); err != nil {
			return nil, fmt.Errorf("%w: bad estimate id %q", common.ErrDatabaseCorrupted, estimateID)
		}
		e.Polarity = model.Polarity(polarity)
		if err := parseAmounts(runID.String(),
			amountField{&e.Estimated, estimated},
			amountField{&e.Actual, actual},
			amountField{&e.Expected, expected},
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanRun(row rowScanner) (*model.AnalysisRun, error) {
	var (
		run                                model.AnalysisRun
		id, start, end, asOf               string
		initial                            string
		estIncome, actIncome, expIncome    string
		estExpense, actExpense, expExpense string
	)
	if err := row.Scan(&id, &run.Budget, &run.Period, &start, &end, &asOf, &run.CreatedAt,
		&run.TransactionCount, &initial,
		&estIncome, &actIncome, &expIncome,
		&estExpense, &actExpense, &expExpense,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan analysis run: %w", err)
	}

	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad run id %q", common.ErrDatabaseCorrupted, id)
	}
	if run.PeriodStart, err = time.ParseInLocation(dateLayout, start, time.Local); err != nil {
		return nil, fmt.Errorf("%w: bad period start %q", common.ErrDatabaseCorrupted, start)
	}
	if run.PeriodEnd, err = time.ParseInLocation(dateLayout, end, time.Local); err != nil {
		return nil, fmt.Errorf("%w: bad period end %q", common.ErrDatabaseCorrupted, end)
	}
	if run.AsOf, err = time.Parse(time.RFC3339, asOf); err != nil {
		return nil, fmt.Errorf("%w: bad as-of %q", common.ErrDatabaseCorrupted, asOf)
	}

	if err := parseAmounts(id,
		amountField{&run.InitialBalance, initial},
		amountField{&run.EstimatedIncome, estIncome},
		amountField{&run.ActualIncome, actIncome},
		amountField{&run.ExpectedIncome, expIncome},
		amountField{&run.EstimatedExpense, estExpense},
		amountField{&run.ActualExpense, actExpense},
		amountField{&run.ExpectedExpense, expExpense},
	); err != nil {
		return nil, err
	}
	return &run, nil
}

type amountField struct {
	dst *decimal.Decimal
	raw string
}

func parseAmounts(runID string, fields ...amountField) error {
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return fmt.Errorf("%w: bad amount %q in run %s", common.ErrDatabaseCorrupted, f.raw, runID)
		}
		*f.dst = d
	}
	return nil
}

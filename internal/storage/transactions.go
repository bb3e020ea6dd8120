package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/service"
)

const dateLayout = "2006-01-02"

const transactionColumns = `hash, id, date, payee, memo, amount, withdrawal, deposit, source`

// SaveTransactions saves multiple transactions to the database.
// Transactions whose hash is already stored are skipped; the number actually inserted is returned.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := s.saveTransactionsTx(ctx, tx, transactions)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transactions: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		hash := txn.Hash
		if hash == "" {
			hash = txn.GenerateHash()
		}

		result, err := stmt.ExecContext(ctx,
			hash,
			txn.ID,
			txn.Date.Format(dateLayout),
			txn.Payee,
			txn.Memo,
			txn.Amount.String(),
			txn.Withdrawal.FullName(),
			txn.Deposit.FullName(),
			txn.Source,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", hash, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			slog.Debug("Skipping duplicate transaction", "hash", hash, "payee", txn.Payee)
		}
		inserted += int(n)
	}

	return inserted, nil
}

// GetTransactions retrieves transactions matching the filter, ordered by date.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, ErrInvalidDateRange
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.EndDate.Format(dateLayout))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, rowid"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}

	return transactions, rows.Err()
}

// GetTransactionByHash retrieves a single transaction by its duplicate-detection hash.
func (s *SQLiteStorage) GetTransactionByHash(ctx context.Context, hash string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE hash = ?`, hash)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", hash, common.ErrNotFound)
	}
	return txn, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn                 model.Transaction
		id                  sql.NullString
		date, amount        string
		withdrawal, deposit string
	)
	if err := row.Scan(&txn.Hash, &id, &date, &txn.Payee, &txn.Memo, &amount, &withdrawal, &deposit, &txn.Source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q for %s", common.ErrDatabaseCorrupted, date, txn.Hash)
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q for %s", common.ErrDatabaseCorrupted, amount, txn.Hash)
	}

	txn.ID = id.String
	txn.Date = parsed
	txn.Amount = value
	txn.Withdrawal = model.NewAccount(withdrawal)
	txn.Deposit = model.NewAccount(deposit)
	return &txn, nil
}

// Package storage provides the data persistence layer for underbudget.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/underbudget/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidRun         = errors.New("invalid analysis run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Payee == "" && txn.Memo == "" {
		return fmt.Errorf("%w: missing payee and memo", ErrInvalidTransaction)
	}
	return nil
}

// validateRun validates an analysis run before it is stored.
func validateRun(run *model.AnalysisRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.ID == uuid.Nil {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if strings.TrimSpace(run.Budget) == "" {
		return fmt.Errorf("%w: missing budget name", ErrInvalidRun)
	}
	if run.PeriodEnd.Before(run.PeriodStart) {
		return fmt.Errorf("%w: %w", ErrInvalidRun, ErrInvalidDateRange)
	}
	for i, e := range run.Entries {
		if e.EstimateID == uuid.Nil {
			return fmt.Errorf("%w: entry %d has no estimate ID", ErrInvalidRun, i)
		}
	}
	return nil
}

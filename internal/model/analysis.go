package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalysisRun is a stored summary of one budget analysis.
type AnalysisRun struct {
	CreatedAt        time.Time
	PeriodStart      time.Time
	PeriodEnd        time.Time
	AsOf             time.Time
	Budget           string
	Period           string
	Entries          []AnalysisEntry
	InitialBalance   decimal.Decimal
	EstimatedIncome  decimal.Decimal
	ActualIncome     decimal.Decimal
	ExpectedIncome   decimal.Decimal
	EstimatedExpense decimal.Decimal
	ActualExpense    decimal.Decimal
	ExpectedExpense  decimal.Decimal
	TransactionCount int
	ID               uuid.UUID
}

// ExpectedEndingBalance is the initial balance plus expected income minus expected expense.
func (r AnalysisRun) ExpectedEndingBalance() decimal.Decimal {
	return r.InitialBalance.Add(r.ExpectedIncome).Sub(r.ExpectedExpense)
}

// ActualEndingBalance is the initial balance plus actual income minus actual expense.
func (r AnalysisRun) ActualEndingBalance() decimal.Decimal {
	return r.InitialBalance.Add(r.ActualIncome).Sub(r.ActualExpense)
}

// AnalysisEntry is the stored outcome for one leaf estimate.
type AnalysisEntry struct {
	Name       string
	Polarity   Polarity
	Rationale  string
	Estimated  decimal.Decimal
	Actual     decimal.Decimal
	Expected   decimal.Decimal
	EstimateID uuid.UUID
}

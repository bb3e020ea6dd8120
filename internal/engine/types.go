package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/model"
)

// EstimateRule pairs a rule with the leaf it claims transactions for.
type EstimateRule struct {
	Estimate *model.Leaf
	Polarity model.Polarity
	Rule     model.Rule
}

// Diagnostic records a rule that was skipped during prioritization.
type Diagnostic struct {
	Estimate string
	Message  string
	Rule     model.Rule
}

// Prioritized is the ordered rule list produced from a budget.
type Prioritized struct {
	Rules       []EstimateRule
	Diagnostics []Diagnostic
}

// AllocationEntry records which estimate claimed a transaction and through which rule.
type AllocationEntry struct {
	Estimate    *model.Leaf
	Polarity    model.Polarity
	Rule        model.Rule
	Transaction model.Transaction
}

// Rationale explains why an expected amount was chosen.
type Rationale string

// Rationales, highest priority first.
const (
	RationalePeriodElapsed    Rationale = "period elapsed"
	RationaleFinal            Rationale = "estimate marked final"
	RationaleActualExceeds    Rationale = "actual exceeds estimated"
	RationaleEstimatedCovered Rationale = "estimated exceeds or matches actual"
)

// BalanceTotal holds the six running sums of an analysis.
type BalanceTotal struct {
	EstimatedIncome  decimal.Decimal
	ActualIncome     decimal.Decimal
	ExpectedIncome   decimal.Decimal
	EstimatedExpense decimal.Decimal
	ActualExpense    decimal.Decimal
	ExpectedExpense  decimal.Decimal
}

// EstimatedNetChange is estimated income minus estimated expense.
func (b BalanceTotal) EstimatedNetChange() decimal.Decimal {
	return b.EstimatedIncome.Sub(b.EstimatedExpense)
}

// ActualNetChange is actual income minus actual expense.
func (b BalanceTotal) ActualNetChange() decimal.Decimal {
	return b.ActualIncome.Sub(b.ActualExpense)
}

// ExpectedNetChange is expected income minus expected expense.
func (b BalanceTotal) ExpectedNetChange() decimal.Decimal {
	return b.ExpectedIncome.Sub(b.ExpectedExpense)
}

func (b BalanceTotal) add(p model.Polarity, estimated, actual, expected decimal.Decimal) BalanceTotal {
	if p == model.PolarityIncome {
		b.EstimatedIncome = b.EstimatedIncome.Add(estimated)
		b.ActualIncome = b.ActualIncome.Add(actual)
		b.ExpectedIncome = b.ExpectedIncome.Add(expected)
	} else {
		b.EstimatedExpense = b.EstimatedExpense.Add(estimated)
		b.ActualExpense = b.ActualExpense.Add(actual)
		b.ExpectedExpense = b.ExpectedExpense.Add(expected)
	}
	return b
}

// ReportEntry is the outcome for one leaf estimate.
type ReportEntry struct {
	Estimate  *model.Leaf
	Polarity  model.Polarity
	Rationale Rationale
	Estimated decimal.Decimal
	Actual    decimal.Decimal
	Expected  decimal.Decimal
	Running   BalanceTotal // totals after this entry was added
	Depth     int
}

// CategoryTotal is the recursive sum over a category's leaves.
type CategoryTotal struct {
	Category  *model.Category
	Polarity  model.Polarity
	Estimated decimal.Decimal
	Actual    decimal.Decimal
	Expected  decimal.Decimal
}

// Balance is the result of aggregating an allocation over the estimate trees.
type Balance struct {
	Categories map[uuid.UUID]CategoryTotal
	Entries    []ReportEntry
	Total      BalanceTotal
	Elapsed    bool
}

// Entry returns the report entry for a leaf.
func (b Balance) Entry(id uuid.UUID) (ReportEntry, bool) {
	for _, e := range b.Entries {
		if e.Estimate.ID == id {
			return e, true
		}
	}
	return ReportEntry{}, false
}

// Results is everything produced by one analysis run.
type Results struct {
	StartedAt  time.Time
	AsOf       time.Time
	Period     model.Period
	Budget     *model.Budget
	Allocation *Allocation
	Rules      Prioritized
	Balance    Balance
	Duration   time.Duration
}

// EndingBalances applies the net changes to the budget's initial balance.
func (r *Results) EndingBalances() (estimated, actual, expected decimal.Decimal) {
	initial := decimal.Zero
	if r.Budget != nil {
		initial = r.Budget.InitialBalance
	}
	t := r.Balance.Total
	return initial.Add(t.EstimatedNetChange()), initial.Add(t.ActualNetChange()), initial.Add(t.ExpectedNetChange())
}

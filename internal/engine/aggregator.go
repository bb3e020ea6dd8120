package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

// Aggregator rolls an allocation up into per-estimate and overall totals.
type Aggregator struct {
	period model.Period
	asOf   time.Time
}

// NewAggregator creates an aggregator for one budgeting period as seen on asOf.
// A nil period never elapses.
func NewAggregator(period model.Period, asOf time.Time) *Aggregator {
	return &Aggregator{period: period, asOf: asOf}
}

type aggregation struct {
	alloc   *Allocation
	seen    map[uuid.UUID]bool
	balance Balance
	elapsed bool
}

type amounts struct {
	estimated decimal.Decimal
	actual    decimal.Decimal
	expected  decimal.Decimal
}

// Aggregate computes the balance for both estimate trees and the two
// unbudgeted catch-alls, in that order.
func (a *Aggregator) Aggregate(income, expense model.Estimate, alloc *Allocation) (Balance, error) {
	if err := model.Validate(income); err != nil {
		return Balance{}, fmt.Errorf("income: %w", err)
	}
	if err := model.Validate(expense); err != nil {
		return Balance{}, fmt.Errorf("expense: %w", err)
	}
	if alloc == nil {
		alloc = NewAllocation()
	}

	run := &aggregation{
		alloc:   alloc,
		seen:    make(map[uuid.UUID]bool),
		elapsed: a.period != nil && model.Elapsed(a.period, a.asOf),
		balance: Balance{Categories: make(map[uuid.UUID]CategoryTotal)},
	}
	run.balance.Elapsed = run.elapsed

	roots := []struct {
		root     model.Estimate
		polarity model.Polarity
	}{
		{income, model.PolarityIncome},
		{expense, model.PolarityExpense},
		{model.NewUnbudgetedIncome(), model.PolarityIncome},
		{model.NewUnbudgetedExpense(), model.PolarityExpense},
	}
	for _, r := range roots {
		if r.root == nil {
			continue
		}
		if _, err := run.visit(r.root, r.polarity, 0); err != nil {
			return Balance{}, err
		}
	}

	return run.balance, nil
}

func (run *aggregation) visit(e model.Estimate, polarity model.Polarity, depth int) (amounts, error) {
	zero := amounts{estimated: decimal.Zero, actual: decimal.Zero, expected: decimal.Zero}

	id := e.Info().ID
	if run.seen[id] {
		return zero, nil
	}
	run.seen[id] = true

	switch node := e.(type) {
	case *model.Leaf:
		return run.visitLeaf(node, polarity, depth), nil
	case *model.Category:
		sum := zero
		for _, child := range node.Children {
			got, err := run.visit(child, polarity, depth+1)
			if err != nil {
				return zero, err
			}
			sum.estimated = sum.estimated.Add(got.estimated)
			sum.actual = sum.actual.Add(got.actual)
			sum.expected = sum.expected.Add(got.expected)
		}
		run.balance.Categories[id] = CategoryTotal{
			Category:  node,
			Polarity:  polarity,
			Estimated: sum.estimated,
			Actual:    sum.actual,
			Expected:  sum.expected,
		}
		return sum, nil
	default:
		return zero, fmt.Errorf("%w: unknown estimate type %T", common.ErrInvalidBudget, e)
	}
}

func (run *aggregation) visitLeaf(leaf *model.Leaf, polarity model.Polarity, depth int) amounts {
	estimated := leaf.Amount
	actual := run.alloc.Actual(leaf.ID)
	expected, rationale := ExpectedAmount(estimated, actual, leaf.Final, run.elapsed)

	run.balance.Total = run.balance.Total.add(polarity, estimated, actual, expected)
	run.balance.Entries = append(run.balance.Entries, ReportEntry{
		Estimate:  leaf,
		Polarity:  polarity,
		Estimated: estimated,
		Actual:    actual,
		Expected:  expected,
		Rationale: rationale,
		Running:   run.balance.Total,
		Depth:     depth,
	})

	return amounts{estimated: estimated, actual: actual, expected: expected}
}

// ExpectedAmount picks the amount a leaf is expected to end the period at.
// Once the period has elapsed, the estimate is final, or spending has overrun
// the estimate, the actual amount is expected; otherwise the estimate stands.
func ExpectedAmount(estimated, actual decimal.Decimal, final, elapsed bool) (decimal.Decimal, Rationale) {
	switch {
	case elapsed:
		return actual, RationalePeriodElapsed
	case final:
		return actual, RationaleFinal
	case actual.GreaterThan(estimated):
		return actual, RationaleActualExceeds
	default:
		return estimated, RationaleEstimatedCovered
	}
}

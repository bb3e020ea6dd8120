package engine

import (
	"github.com/google/uuid"

	"github.com/Veraticus/underbudget/internal/model"
)

// NewAnalysisRun flattens results into the record kept in analysis history.
func NewAnalysisRun(r *Results) *model.AnalysisRun {
	run := &model.AnalysisRun{
		ID:               uuid.New(),
		CreatedAt:        r.StartedAt,
		AsOf:             r.AsOf,
		EstimatedIncome:  r.Balance.Total.EstimatedIncome,
		ActualIncome:     r.Balance.Total.ActualIncome,
		ExpectedIncome:   r.Balance.Total.ExpectedIncome,
		EstimatedExpense: r.Balance.Total.EstimatedExpense,
		ActualExpense:    r.Balance.Total.ActualExpense,
		ExpectedExpense:  r.Balance.Total.ExpectedExpense,
		Period:           periodName(r.Period),
		Entries:          make([]model.AnalysisEntry, 0, len(r.Balance.Entries)),
	}
	if r.Budget != nil {
		run.Budget = r.Budget.Name
		run.InitialBalance = r.Budget.InitialBalance
	}
	if r.Period != nil {
		run.PeriodStart = r.Period.Start()
		run.PeriodEnd = r.Period.End()
	}
	if r.Allocation != nil {
		run.TransactionCount = r.Allocation.Len()
	}

	for _, e := range r.Balance.Entries {
		run.Entries = append(run.Entries, model.AnalysisEntry{
			EstimateID: e.Estimate.ID,
			Name:       e.Estimate.Name,
			Polarity:   e.Polarity,
			Rationale:  string(e.Rationale),
			Estimated:  e.Estimated,
			Actual:     e.Actual,
			Expected:   e.Expected,
		})
	}
	return run
}

package report

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/engine"
	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/service"
)

const (
	dateFormat = "2006-01-02"
	indent     = "  "
)

// Options controls how much detail the tables carry.
type Options struct {
	Long bool // adds the six totals to the summary and rationale and running totals to the worksheet
}

// Build flattens analysis results into report tables.
// The first row of each table is its header.
func Build(r *engine.Results, opts Options) *service.Report {
	rep := &service.Report{
		GeneratedAt: r.StartedAt,
		Title:       "Budget Analysis",
		Period:      periodLabel(r.Period),
	}
	if r.Budget != nil && r.Budget.Name != "" {
		rep.Title = r.Budget.Name
	}

	rep.Summary = summaryTable(r, opts)
	rep.Comparison = comparisonTable(r)
	rep.Allocation = allocationTable(r)
	rep.Worksheet = worksheetTable(r, opts)
	return rep
}

func summaryTable(r *engine.Results, opts Options) [][]string {
	t := r.Balance.Total
	estimated, actual, expected := r.EndingBalances()
	initial := decimal.Zero
	if r.Budget != nil {
		initial = r.Budget.InitialBalance
	}

	rows := [][]string{
		{"Item", "Amount"},
		{"Period", periodLabel(r.Period)},
		{"As of", r.AsOf.Format(dateFormat)},
		{"Initial balance", money(initial)},
	}
	if opts.Long {
		rows = append(rows,
			[]string{"Estimated income", money(t.EstimatedIncome)},
			[]string{"Actual income", money(t.ActualIncome)},
			[]string{"Expected income", money(t.ExpectedIncome)},
			[]string{"Estimated expense", money(t.EstimatedExpense)},
			[]string{"Actual expense", money(t.ActualExpense)},
			[]string{"Expected expense", money(t.ExpectedExpense)},
			[]string{"Estimated net change", money(t.EstimatedNetChange())},
			[]string{"Actual net change", money(t.ActualNetChange())},
			[]string{"Expected net change", money(t.ExpectedNetChange())},
		)
	}
	rows = append(rows,
		[]string{"Estimated ending balance", money(estimated)},
		[]string{"Actual ending balance", money(actual)},
		[]string{"Expected ending balance", money(expected)},
	)
	return rows
}

func comparisonTable(r *engine.Results) [][]string {
	rows := [][]string{{"Estimate", "Type", "Estimated", "Actual", "Difference"}}
	add := func(name string, polarity model.Polarity, depth int, estimated, actual decimal.Decimal) {
		rows = append(rows, []string{
			strings.Repeat(indent, depth) + name,
			string(polarity),
			money(estimated),
			money(actual),
			money(actual.Sub(estimated)),
		})
	}

	roots := []model.Estimate{nil, nil, model.NewUnbudgetedIncome(), model.NewUnbudgetedExpense()}
	if r.Budget != nil {
		roots[0], roots[1] = r.Budget.Income, r.Budget.Expense
	}
	emitted := make(map[uuid.UUID]bool)
	for _, root := range roots {
		if root == nil {
			continue
		}
		_ = model.Walk(root, func(e model.Estimate, depth int) error {
			if emitted[e.Info().ID] {
				return nil
			}
			emitted[e.Info().ID] = true
			switch node := e.(type) {
			case *model.Category:
				if total, ok := r.Balance.Categories[node.ID]; ok {
					add(node.Name, total.Polarity, depth, total.Estimated, total.Actual)
				}
			case *model.Leaf:
				if entry, ok := r.Balance.Entry(node.ID); ok {
					add(node.Name, entry.Polarity, depth, entry.Estimated, entry.Actual)
				}
			}
			return nil
		})
	}
	return rows
}

func allocationTable(r *engine.Results) [][]string {
	rows := [][]string{{"Date", "Payee", "Memo", "Amount", "Estimate", "Rule"}}
	if r.Allocation == nil {
		return rows
	}
	for _, e := range r.Allocation.Entries() {
		rows = append(rows, []string{
			e.Transaction.Date.Format(dateFormat),
			e.Transaction.Payee,
			e.Transaction.Memo,
			money(e.Transaction.Amount),
			e.Estimate.Name,
			e.Rule.String(),
		})
	}
	return rows
}

func worksheetTable(r *engine.Results, opts Options) [][]string {
	header := []string{"Estimate", "Type", "Estimated", "Actual", "Expected"}
	if opts.Long {
		header = append(header, "Rationale", "Estimated Net", "Actual Net", "Expected Net")
	}
	rows := [][]string{header}

	for _, e := range r.Balance.Entries {
		row := []string{
			strings.Repeat(indent, e.Depth) + e.Estimate.Name,
			string(e.Polarity),
			money(e.Estimated),
			money(e.Actual),
			money(e.Expected),
		}
		if opts.Long {
			row = append(row,
				string(e.Rationale),
				money(e.Running.EstimatedNetChange()),
				money(e.Running.ActualNetChange()),
				money(e.Running.ExpectedNetChange()),
			)
		}
		rows = append(rows, row)
	}
	return rows
}

func periodLabel(p model.Period) string {
	if p == nil {
		return "unbounded"
	}
	return p.String() + " (" + p.Start().Format(dateFormat) + " to " + p.End().Format(dateFormat) + ")"
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

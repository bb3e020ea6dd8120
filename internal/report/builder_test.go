package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/underbudget/internal/engine"
	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/service"
	"github.com/Veraticus/underbudget/internal/testutil/estimates"
)

func analyzeHousehold(t *testing.T) *engine.Results {
	t.Helper()
	budget, txns := estimates.FixtureHousehold(t)

	config := engine.DefaultConfig()
	config.AsOf = time.Date(2024, time.January, 20, 9, 0, 0, 0, time.Local)
	e, err := engine.NewWithConfig(config)
	require.NoError(t, err)

	results, err := e.Analyze(context.Background(), budget, txns)
	require.NoError(t, err)
	return results
}

func column(rows [][]string, first string) []string {
	for _, row := range rows {
		if len(row) > 0 && row[0] == first {
			return row
		}
	}
	return nil
}

func TestBuild_Summary(t *testing.T) {
	results := analyzeHousehold(t)

	tests := []struct {
		name     string
		wantRows int
		opts     Options
	}{
		{name: "short", opts: Options{}, wantRows: 7},
		{name: "long", opts: Options{Long: true}, wantRows: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Build(results, tt.opts)
			assert.Equal(t, "Household", rep.Title)
			assert.Contains(t, rep.Period, "January 2024")
			assert.Len(t, rep.Summary, tt.wantRows)

			assert.Equal(t, []string{"Initial balance", "1000.00"}, column(rep.Summary, "Initial balance"))
			assert.Equal(t, []string{"Estimated ending balance", "2550.00"}, column(rep.Summary, "Estimated ending balance"))
			assert.Equal(t, []string{"Actual ending balance", "2765.00"}, column(rep.Summary, "Actual ending balance"))
			assert.Equal(t, []string{"Expected ending balance", "2485.00"}, column(rep.Summary, "Expected ending balance"))

			if tt.opts.Long {
				assert.Equal(t, []string{"Expected expense", "1515.00"}, column(rep.Summary, "Expected expense"))
			} else {
				assert.Nil(t, column(rep.Summary, "Expected expense"))
			}
		})
	}
}

func TestBuild_Comparison(t *testing.T) {
	rep := Build(analyzeHousehold(t), Options{})

	require.Len(t, rep.Comparison, 10)
	assert.Equal(t, []string{"Estimate", "Type", "Estimated", "Actual", "Difference"}, rep.Comparison[0])
	assert.Equal(t, []string{"Income", "income", "3000.00", "3000.00", "0.00"}, rep.Comparison[1])
	assert.Equal(t, []string{"Expenses", "expense", "1450.00", "1190.00", "-260.00"}, rep.Comparison[3])
	assert.Equal(t, []string{"  Housing", "expense", "1050.00", "1070.00", "20.00"}, rep.Comparison[4])
	assert.Equal(t, []string{"    Utilities", "expense", "150.00", "170.00", "20.00"}, rep.Comparison[6])
	assert.Equal(t, []string{"Unbudgeted Expense", "expense", "0.00", "45.00", "45.00"}, rep.Comparison[9])
}

func TestBuild_ComparisonListsSharedLeafOnce(t *testing.T) {
	shared := estimates.NewLeaf(t, "Shared", "100", estimates.Payee(model.OperatorEquals, "Shop"))
	budget := &model.Budget{
		Name:    "Shared",
		Period:  model.LiteralMonth{Year: 2024, Month: time.January},
		Expense: estimates.NewBuilder(t, "Expenses").With(shared).With(shared).Build(),
	}

	config := engine.DefaultConfig()
	config.AsOf = time.Date(2024, time.January, 20, 9, 0, 0, 0, time.Local)
	e, err := engine.NewWithConfig(config)
	require.NoError(t, err)
	results, err := e.Analyze(context.Background(), budget,
		[]model.Transaction{estimates.Txn(t, "2024-01-02", "-30", "Shop", "")})
	require.NoError(t, err)

	rep := Build(results, Options{})

	count := 0
	for _, row := range rep.Comparison {
		if strings.TrimSpace(row[0]) == "Shared" {
			count++
			assert.Equal(t, []string{"  Shared", "expense", "100.00", "30.00", "-70.00"}, row)
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuild_AllocationAndWorksheet(t *testing.T) {
	results := analyzeHousehold(t)

	short := Build(results, Options{})
	require.Len(t, short.Allocation, 7)
	assert.Equal(t, []string{"2024-01-03", "Oak Street Apartments", "rent", "-900.00", "Rent", `payee begins-with "Oak Street"`}, column(short.Allocation, "2024-01-03"))
	assert.Equal(t, "any expense", column(short.Allocation, "2024-01-20")[5])

	require.Len(t, short.Worksheet, 7)
	assert.Len(t, short.Worksheet[0], 5)
	assert.Equal(t, []string{"    Utilities", "expense", "150.00", "170.00", "170.00"}, short.Worksheet[3])

	long := Build(results, Options{Long: true})
	assert.Len(t, long.Worksheet[0], 9)
	last := long.Worksheet[len(long.Worksheet)-1]
	assert.Equal(t, "Unbudgeted Expense", last[0])
	assert.Equal(t, string(engine.RationaleActualExceeds), last[5])
	assert.Equal(t, "1485.00", last[8], "running expected net after every entry")
}

func TestBuild_EmptyResults(t *testing.T) {
	rep := Build(&engine.Results{}, Options{})
	assert.Equal(t, "Budget Analysis", rep.Title)
	assert.Equal(t, "unbounded", rep.Period)
	assert.Len(t, rep.Allocation, 1)
	assert.Len(t, rep.Comparison, 1)
	assert.IsType(t, &service.Report{}, rep)
}

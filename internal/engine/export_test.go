package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/testutil/estimates"
)

func TestNewAnalysisRun(t *testing.T) {
	budget, txns := estimates.FixtureHousehold(t)
	asOf := time.Date(2024, time.January, 20, 9, 0, 0, 0, time.Local)

	results, err := newTestEngine(t, asOf, nil).Analyze(context.Background(), budget, txns)
	require.NoError(t, err)

	run := NewAnalysisRun(results)
	assert.NotEqual(t, run.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "Household", run.Budget)
	assert.Equal(t, "January 2024", run.Period)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local), run.PeriodStart)
	assert.Equal(t, asOf, run.AsOf)
	assert.Equal(t, len(txns), run.TransactionCount)
	assert.True(t, run.ExpectedExpense.Equal(dec("1515")))
	assert.True(t, run.ExpectedEndingBalance().Equal(dec("2485")))
	assert.True(t, run.ActualEndingBalance().Equal(dec("2765")))

	require.Len(t, run.Entries, len(results.Balance.Entries))
	last := run.Entries[len(run.Entries)-1]
	assert.Equal(t, model.UnbudgetedExpenseName, last.Name)
	assert.Equal(t, model.PolarityExpense, last.Polarity)
	assert.Equal(t, string(RationaleActualExceeds), last.Rationale)
}

func TestNewAnalysisRun_NoPeriod(t *testing.T) {
	run := NewAnalysisRun(&Results{})
	assert.Equal(t, "none", run.Period)
	assert.True(t, run.PeriodStart.IsZero())
	assert.Empty(t, run.Budget)
	assert.Empty(t, run.Entries)
}

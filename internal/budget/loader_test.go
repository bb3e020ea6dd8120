package budget

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

const householdYAML = `
name: Household
initial_balance: "1000.50"
period:
  type: paydate-monthly
  year: 2024
  month: 1
income:
  name: Salary
  amount: 3000
  rules:
    - field: payee
      operator: equals
      text: ACME Payroll
expense:
  name: Expenses
  children:
    - name: Housing
      notes: fixed costs
      children:
        - name: Rent
          amount: "900"
          final: true
          rules:
            - {field: payee, operator: Begins-With, text: Oak Street}
    - name: Groceries
      amount: 400.25
      rules:
        - {field: any, operator: contains, text: market}
`

func TestParse(t *testing.T) {
	b, err := Parse([]byte(householdYAML))
	require.NoError(t, err)

	assert.Equal(t, "Household", b.Name)
	assert.Equal(t, "1000.5", b.InitialBalance.String())
	assert.Equal(t, model.PaydateMonth{Year: 2024, Month: time.January}, b.Period)

	salary, ok := b.Income.(*model.Leaf)
	require.True(t, ok)
	assert.Equal(t, "3000", salary.Amount.String())
	require.Len(t, salary.Rules, 1)
	assert.Equal(t, model.OperatorEquals, salary.Rules[0].Operator)

	leaves := model.Leaves(b.Expense)
	require.Len(t, leaves, 2)
	assert.Equal(t, "Rent", leaves[0].Name)
	assert.True(t, leaves[0].Final)
	assert.Equal(t, model.OperatorBeginsWith, leaves[0].Rules[0].Operator)
	assert.Equal(t, "400.25", leaves[1].Amount.String())

	housing := b.Expense.(*model.Category).Children[0].(*model.Category)
	assert.Equal(t, "fixed costs", housing.Notes)
}

func TestParse_StableIdentifiers(t *testing.T) {
	first, err := Parse([]byte(householdYAML))
	require.NoError(t, err)
	second, err := Parse([]byte(householdYAML))
	require.NoError(t, err)

	assert.Equal(t, model.Leaves(first.Expense)[0].ID, model.Leaves(second.Expense)[0].ID)
	assert.NotEqual(t, model.Leaves(first.Expense)[0].ID, model.Leaves(first.Expense)[1].ID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name:   "malformed yaml",
			yaml:   "name: [unclosed",
			errMsg: "failed to parse YAML",
		},
		{
			name:   "category with amount",
			yaml:   "period: {year: 2024, month: 1}\nexpense: {name: Food, amount: 10, children: [{name: Snacks}]}",
			errMsg: "cannot have an amount",
		},
		{
			name:   "unnamed estimate",
			yaml:   "period: {year: 2024, month: 1}\nexpense: {name: Food, children: [{amount: 5}]}",
			errMsg: "has no name",
		},
		{
			name:   "bad amount",
			yaml:   "period: {year: 2024, month: 1}\nexpense: {name: Food, amount: lots}",
			errMsg: "invalid amount",
		},
		{
			name:   "bad month",
			yaml:   "period: {type: monthly, year: 2024, month: 13}",
			errMsg: "month between 1 and 12",
		},
		{
			name:   "unknown period",
			yaml:   "period: {type: fortnightly}",
			errMsg: "unknown period type",
		},
		{
			name:   "inverted custom period",
			yaml:   "period: {type: custom, start: 2024-03-01, end: 2024-02-01}",
			errMsg: "before it starts",
		},
		{
			name: "repeated explicit id",
			yaml: "period: {year: 2024, month: 1}\nexpense: {name: Food, children: [" +
				"{name: Snacks, id: 5d1f0c1e-8d0a-4b8e-9a57-0c2f4f3e6a11}, " +
				"{name: Treats, id: 5d1f0c1e-8d0a-4b8e-9a57-0c2f4f3e6a11}]}",
			errMsg: "share id",
		},
		{
			name:   "bad id",
			yaml:   "period: {year: 2024, month: 1}\nexpense: {name: Food, id: not-a-uuid}",
			errMsg: "invalid id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidBudget), "got %v", err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParse_RepeatedExplicitID(t *testing.T) {
	_, err := Parse([]byte("period: {year: 2024, month: 1}\nexpense: {name: Food, children: [" +
		"{name: Snacks, id: 5d1f0c1e-8d0a-4b8e-9a57-0c2f4f3e6a11}, " +
		"{name: Snacks, id: 5d1f0c1e-8d0a-4b8e-9a57-0c2f4f3e6a11}]}"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateEntry), "got %v", err)
	assert.True(t, errors.Is(err, common.ErrInvalidBudget), "got %v", err)
}

func TestParse_RepeatedSiblingNames(t *testing.T) {
	doc := "period: {year: 2024, month: 1}\n" +
		"expense: {name: Spending, children: [{name: Misc, amount: 10}, {name: Misc, amount: 20}]}"

	b, err := Parse([]byte(doc))
	require.NoError(t, err)

	leaves := model.Leaves(b.Expense)
	require.Len(t, leaves, 2)
	assert.NotEqual(t, leaves[0].ID, leaves[1].ID)
	assert.Equal(t, "10", leaves[0].Amount.String())
	assert.Equal(t, "20", leaves[1].Amount.String())

	again, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, leaves[0].ID, model.Leaves(again.Expense)[0].ID)
	assert.Equal(t, leaves[1].ID, model.Leaves(again.Expense)[1].ID)
}

func TestParse_CustomAndYearlyPeriods(t *testing.T) {
	b, err := Parse([]byte("period: {type: custom, start: 2024-03-10, end: 2024-04-09}"))
	require.NoError(t, err)
	assert.Equal(t, model.PeriodCustom, b.Period.Type())
	assert.Equal(t, 10, b.Period.Start().Day())
	assert.Nil(t, b.Income)
	assert.Nil(t, b.Expense)

	b, err = Parse([]byte("period: {type: yearly, year: 2025}"))
	require.NoError(t, err)
	assert.Equal(t, model.Yearly{Year: 2025}, b.Period)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "budget.yaml")
	original := Template(time.Date(2024, time.May, 17, 0, 0, 0, 0, time.Local))

	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Name, loaded.Name)
	assert.Equal(t, original.Period, loaded.Period)

	want := model.Leaves(original.Expense)
	got := model.Leaves(loaded.Expense)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.True(t, want[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, want[i].Final, got[i].Final)
		assert.Equal(t, want[i].Rules, got[i].Rules)
	}
	assert.Equal(t, original.Expense.Info().ID, loaded.Expense.Info().ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

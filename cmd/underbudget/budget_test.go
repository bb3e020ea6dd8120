package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/underbudget/internal/budget"
)

func TestBudgetNewCmd(t *testing.T) {
	ws := newWorkspace(t)
	path := filepath.Join(ws.dir, "budgets", "starter.yaml")

	output, err := ws.run(t, "", "budget", "new", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Created budget")

	b, err := budget.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "My Budget", b.Name)

	_, err = ws.run(t, "", "budget", "new", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = ws.run(t, "", "budget", "new", path, "--force")
	require.NoError(t, err)
}

func TestBudgetValidateCmd(t *testing.T) {
	ws := newWorkspace(t)

	output, err := ws.run(t, "", "budget", "validate", ws.budget)
	require.NoError(t, err)
	assert.Contains(t, output, "Household (January 2024) looks good")

	bad := filepath.Join(ws.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`name: Broken
period:
  type: monthly
  year: 2024
  month: 1
income:
  name: Income
  amount: "100"
  rules:
    - field: payee
      operator: begins-wiht
      text: ACME
expense:
  name: Expenses
  amount: "50"
`), 0o600))

	output, err = ws.run(t, "", "budget", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 rule errors")
	assert.Contains(t, output, `did you mean "begins-with"`)
}

func TestBudgetRulesCmd(t *testing.T) {
	ws := newWorkspace(t)

	output, err := ws.run(t, "", "budget", "rules", ws.budget)
	require.NoError(t, err)
	assert.Contains(t, output, `payee begins-with "Oak Street"`)
	assert.Contains(t, output, "Groceries")
	assert.Contains(t, output, "any income")
	assert.Contains(t, output, "any expense")

	_, err = ws.run(t, "", "budget", "rules", filepath.Join(ws.dir, "missing.yaml"))
	assert.Error(t, err)
}

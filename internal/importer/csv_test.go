package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/underbudget/internal/common"
)

const gnuCashExport = `"Date","Account","Category","Payee","Notes","Amount","Type"
"1/05/2024","Assets:Checking","Expenses:Food:Groceries","Corner Market","weekly shop","42.10","debit"
"1/06/2024","Assets:Checking","Income:Salary","ACME Payroll","","3,000.00","credit"
`

func TestCSVParser_ParseFile(t *testing.T) {
	txns, err := NewCSVParser().ParseFile(context.Background(), strings.NewReader(gnuCashExport))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	groceries := txns[0]
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.Local), groceries.Date)
	assert.Equal(t, "Corner Market", groceries.Payee)
	assert.Equal(t, "weekly shop", groceries.Memo)
	assert.True(t, groceries.Amount.Equal(decimal.RequireFromString("-42.10")))
	assert.Equal(t, "Checking", groceries.Withdrawal.Name)
	assert.Equal(t, "Groceries", groceries.Deposit.Name)
	assert.Equal(t, []string{"Expenses", "Food"}, groceries.Deposit.Path)

	salary := txns[1]
	assert.True(t, salary.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "Salary", salary.Withdrawal.Name)
	assert.Equal(t, "Checking", salary.Deposit.Name)
}

func TestCSVParser_SignedAmounts(t *testing.T) {
	data := "date,description,amount\n2024-02-01,Refund,15.00\n2024-02-02,Coffee,(4.50)\n2024-02-03,Bakery,-$7\n\n"

	txns, err := NewCSVParser().ParseFile(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.True(t, txns[0].IsIncome())
	assert.True(t, txns[1].Amount.Equal(decimal.RequireFromString("-4.5")))
	assert.True(t, txns[2].Amount.Equal(decimal.NewFromInt(-7)))
	assert.Equal(t, "Bakery", txns[2].Payee)
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		errMsg string
	}{
		{name: "missing amount column", data: "date,payee\n1/1/2024,Shop\n", errMsg: "needs a date and an amount"},
		{name: "bad date", data: "date,amount\nyesterday,5\n", errMsg: `unrecognized date "yesterday"`},
		{name: "bad amount", data: "date,amount\n1/1/2024,five\n", errMsg: `invalid amount "five"`},
		{name: "short row", data: "date,amount,payee\n1/1/2024,5\n", errMsg: "line 2 has 2 values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVParser().ParseFile(context.Background(), strings.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidRecord), "got %v", err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCSVParser_Empty(t *testing.T) {
	txns, err := NewCSVParser().ParseFile(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, txns)
}

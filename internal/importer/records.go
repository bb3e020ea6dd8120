package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

type column int

const (
	columnNone column = iota
	columnDate
	columnValue
	columnMemo
	columnPayee
	columnCategory
	columnAccount
	columnType
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{"1/2/2006", "01/02/2006", "2006-01-02", "2006/01/02"}

// columnMapping maps spreadsheet columns to transaction fields by header name.
type columnMapping []column

func newColumnMapping(header []string) (columnMapping, error) {
	mapping := make(columnMapping, len(header))
	var hasDate, hasValue bool

	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch {
		case strings.Contains(name, "date"):
			mapping[i] = columnDate
			hasDate = true
		case strings.Contains(name, "value"), strings.Contains(name, "amount"):
			mapping[i] = columnValue
			hasValue = true
		case strings.Contains(name, "memo"), strings.Contains(name, "notes"):
			mapping[i] = columnMemo
		case strings.Contains(name, "payee"), strings.HasPrefix(name, "description"):
			mapping[i] = columnPayee
		case strings.Contains(name, "category"):
			mapping[i] = columnCategory
		case strings.Contains(name, "account"):
			mapping[i] = columnAccount
		case strings.Contains(name, "type"):
			mapping[i] = columnType
		}
	}

	if !hasDate || !hasValue {
		return nil, fmt.Errorf("%w: header needs a date and an amount column, got %q",
			common.ErrInvalidRecord, strings.Join(header, ","))
	}
	return mapping, nil
}

// transaction converts one row. A "debit" type makes the amount an outflow and a
// "credit" type an inflow; without a type column the sign of the amount decides.
// Money leaves the withdrawal account and arrives in the deposit account.
func (m columnMapping) transaction(row []string, line int) (model.Transaction, error) {
	if len(row) != len(m) {
		return model.Transaction{}, fmt.Errorf("%w: line %d has %d values, expected %d",
			common.ErrInvalidRecord, line, len(row), len(m))
	}

	var (
		txn               model.Transaction
		category, account string
		kind              string
	)
	for i, col := range m {
		value := strings.TrimSpace(row[i])
		switch col {
		case columnDate:
			date, err := parseDate(value)
			if err != nil {
				return model.Transaction{}, fmt.Errorf("%w: line %d: %v", common.ErrInvalidRecord, line, err)
			}
			txn.Date = date
		case columnValue:
			amount, err := parseAmount(value)
			if err != nil {
				return model.Transaction{}, fmt.Errorf("%w: line %d: %v", common.ErrInvalidRecord, line, err)
			}
			txn.Amount = amount
		case columnMemo:
			txn.Memo = value
		case columnPayee:
			txn.Payee = value
		case columnCategory:
			category = value
		case columnAccount:
			account = value
		case columnType:
			kind = strings.ToLower(value)
		}
	}

	switch kind {
	case "debit":
		txn.Amount = txn.Amount.Abs().Neg()
	case "credit":
		txn.Amount = txn.Amount.Abs()
	}

	if txn.IsIncome() {
		txn.Withdrawal = model.NewAccount(category)
		txn.Deposit = model.NewAccount(account)
	} else {
		txn.Withdrawal = model.NewAccount(account)
		txn.Deposit = model.NewAccount(category)
	}
	return txn, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = strings.Trim(cleaned, "()")
		negative = true
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

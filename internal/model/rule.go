package model

import (
	"fmt"
	"strings"
)

// Field selects the transaction text a rule is evaluated against.
type Field string

// Transaction field constants.
const (
	FieldAny        Field = "any"
	FieldMemo       Field = "memo"
	FieldPayee      Field = "payee"
	FieldWithdrawal Field = "withdrawal"
	FieldDeposit    Field = "deposit"
)

// Fields returns every recognized field.
func Fields() []Field {
	return []Field{FieldAny, FieldMemo, FieldPayee, FieldWithdrawal, FieldDeposit}
}

// Valid reports whether f is a recognized field.
func (f Field) Valid() bool {
	for _, known := range Fields() {
		if f == known {
			return true
		}
	}
	return false
}

// Operator is the comparison a rule applies to the field text.
type Operator string

// Comparison operator constants, from most to least exact.
const (
	OperatorEqualsCase Operator = "equals-case"
	OperatorEquals     Operator = "equals"
	OperatorBeginsWith Operator = "begins-with"
	OperatorEndsWith   Operator = "ends-with"
	OperatorContains   Operator = "contains"
)

// Operators returns every recognized operator.
func Operators() []Operator {
	return []Operator{OperatorEqualsCase, OperatorEquals, OperatorBeginsWith, OperatorEndsWith, OperatorContains}
}

// Valid reports whether o is a recognized operator.
func (o Operator) Valid() bool {
	for _, known := range Operators() {
		if o == known {
			return true
		}
	}
	return false
}

type catchAll int

const (
	catchNone catchAll = iota
	catchIncome
	catchExpense
)

// Rule matches transactions whose field text compares to Text under Operator.
type Rule struct {
	Field    Field
	Operator Operator
	Text     string
	catchAll catchAll
}

// NewRule creates a rule.
func NewRule(field Field, operator Operator, text string) Rule {
	return Rule{Field: field, Operator: operator, Text: text}
}

// UnbudgetedIncomeRule matches any transaction bringing money in.
func UnbudgetedIncomeRule() Rule {
	return Rule{Field: FieldAny, catchAll: catchIncome}
}

// UnbudgetedExpenseRule matches any transaction.
func UnbudgetedExpenseRule() Rule {
	return Rule{Field: FieldAny, catchAll: catchExpense}
}

// IsCatchAll reports whether the rule is one of the unbudgeted catch-alls.
func (r Rule) IsCatchAll() bool {
	return r.catchAll != catchNone
}

// Matches reports whether the transaction satisfies the rule.
func (r Rule) Matches(txn Transaction) bool {
	switch r.catchAll {
	case catchIncome:
		return txn.IsIncome()
	case catchExpense:
		return true
	}

	if !r.Field.Valid() {
		return false
	}

	lhs := txn.FieldText(r.Field)
	rhs := r.Text

	if r.Operator == OperatorEqualsCase {
		return lhs == rhs
	}

	lhs, rhs = strings.ToLower(lhs), strings.ToLower(rhs)
	switch r.Operator {
	case OperatorEquals:
		return lhs == rhs
	case OperatorBeginsWith:
		return strings.HasPrefix(lhs, rhs)
	case OperatorEndsWith:
		return strings.HasSuffix(lhs, rhs)
	case OperatorContains:
		return strings.Contains(lhs, rhs)
	default:
		return false
	}
}

func (r Rule) String() string {
	switch r.catchAll {
	case catchIncome:
		return "any income"
	case catchExpense:
		return "any expense"
	}
	return fmt.Sprintf("%s %s %q", r.Field, r.Operator, r.Text)
}

package estimates

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/model"
)

// Builder provides a fluent interface for constructing a category estimate.
type Builder struct {
	t        *testing.T
	name     string
	children []model.Estimate
}

// NewBuilder creates a builder for a category with the given name.
func NewBuilder(t *testing.T, name string) *Builder {
	t.Helper()
	return &Builder{t: t, name: name}
}

// Leaf adds a leaf estimate. The amount is parsed as a decimal and fails the test if malformed.
func (b *Builder) Leaf(name, amount string, rules ...model.Rule) *Builder {
	b.t.Helper()
	b.children = append(b.children, NewLeaf(b.t, name, amount, rules...))
	return b
}

// FinalLeaf adds a leaf estimate marked final.
func (b *Builder) FinalLeaf(name, amount string, rules ...model.Rule) *Builder {
	b.t.Helper()
	leaf := NewLeaf(b.t, name, amount, rules...)
	leaf.Final = true
	b.children = append(b.children, leaf)
	return b
}

// With adds an already constructed estimate.
func (b *Builder) With(e model.Estimate) *Builder {
	b.children = append(b.children, e)
	return b
}

// Category adds a nested category configured by fn.
func (b *Builder) Category(name string, fn func(*Builder)) *Builder {
	b.t.Helper()
	child := NewBuilder(b.t, name)
	fn(child)
	b.children = append(b.children, child.Build())
	return b
}

// Build creates the category, failing the test if it is invalid.
func (b *Builder) Build() *model.Category {
	b.t.Helper()
	cat, err := model.NewCategory(b.name, b.children...)
	if err != nil {
		b.t.Fatalf("failed to build category %q: %v", b.name, err)
	}
	return cat
}

// NewLeaf creates a leaf estimate, failing the test if amount is not a decimal.
func NewLeaf(t *testing.T, name, amount string, rules ...model.Rule) *model.Leaf {
	t.Helper()
	return model.NewLeaf(name, Amount(t, amount), rules...)
}

// Amount parses a decimal or fails the test.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid amount %q: %v", s, err)
	}
	return d
}

// Payee is a rule on the payee field.
func Payee(op model.Operator, text string) model.Rule {
	return model.NewRule(model.FieldPayee, op, text)
}

// Memo is a rule on the memo field.
func Memo(op model.Operator, text string) model.Rule {
	return model.NewRule(model.FieldMemo, op, text)
}

// Any is a rule on every field at once.
func Any(op model.Operator, text string) model.Rule {
	return model.NewRule(model.FieldAny, op, text)
}

// Txn creates a transaction on the given day. Positive amounts are income.
func Txn(t *testing.T, date, amount, payee, memo string) model.Transaction {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		t.Fatalf("invalid date %q: %v", date, err)
	}
	txn := model.Transaction{
		Date:   d,
		Payee:  payee,
		Memo:   memo,
		Amount: Amount(t, amount),
	}
	if txn.IsIncome() {
		txn.Deposit = model.NewAccount("Assets:Checking")
	} else {
		txn.Withdrawal = model.NewAccount("Assets:Checking")
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

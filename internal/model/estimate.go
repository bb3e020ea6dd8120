package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/common"
)

// Polarity says whether an estimate counts toward income or expense totals.
// It follows from the root a leaf descends from, never from the sign of an amount.
type Polarity string

const (
	// PolarityIncome marks estimates under the income root.
	PolarityIncome Polarity = "income"
	// PolarityExpense marks estimates under the expense root.
	PolarityExpense Polarity = "expense"
)

// Names of the synthetic catch-all estimates.
const (
	UnbudgetedIncomeName  = "Unbudgeted Income"
	UnbudgetedExpenseName = "Unbudgeted Expense"
)

var catchAllNamespace = uuid.MustParse("6f1c7a52-0d7e-4c2b-9a8e-3b1f0f6a9c11")

// EstimateInfo holds the attributes shared by categories and leaves.
type EstimateInfo struct {
	ID    uuid.UUID
	Name  string
	Notes string
}

// Info returns the shared attributes.
func (i EstimateInfo) Info() EstimateInfo {
	return i
}

// Estimate is a budget tree node: either a *Category or a *Leaf.
type Estimate interface {
	Info() EstimateInfo
	isEstimate()
}

// Category groups child estimates. It never carries rules or an amount.
type Category struct {
	Children []Estimate
	EstimateInfo
}

// Leaf is an estimated amount with the rules that claim transactions for it.
type Leaf struct {
	Rules []Rule
	EstimateInfo
	Amount decimal.Decimal
	Final  bool // no more transactions are expected
}

func (*Category) isEstimate() {}
func (*Leaf) isEstimate()     {}

// NewLeaf creates a leaf estimate with a fresh identifier.
func NewLeaf(name string, amount decimal.Decimal, rules ...Rule) *Leaf {
	return &Leaf{
		EstimateInfo: EstimateInfo{ID: uuid.New(), Name: name},
		Amount:       amount,
		Rules:        rules,
	}
}

// NewCategory creates a category estimate. A category must have at least one child.
func NewCategory(name string, children ...Estimate) (*Category, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: category %q has no children", common.ErrInvalidBudget, name)
	}
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%w: category %q has a nil child at position %d", common.ErrInvalidBudget, name, i)
		}
	}
	return &Category{
		EstimateInfo: EstimateInfo{ID: uuid.New(), Name: name},
		Children:     children,
	}, nil
}

// NewUnbudgetedIncome returns the catch-all leaf for income no rule claims.
// Its identifier is the same on every call.
func NewUnbudgetedIncome() *Leaf {
	return &Leaf{
		EstimateInfo: EstimateInfo{
			ID:   uuid.NewSHA1(catchAllNamespace, []byte(UnbudgetedIncomeName)),
			Name: UnbudgetedIncomeName,
		},
		Rules: []Rule{UnbudgetedIncomeRule()},
	}
}

// NewUnbudgetedExpense returns the catch-all leaf for expenses no rule claims.
// Its identifier is the same on every call.
func NewUnbudgetedExpense() *Leaf {
	return &Leaf{
		EstimateInfo: EstimateInfo{
			ID:   uuid.NewSHA1(catchAllNamespace, []byte(UnbudgetedExpenseName)),
			Name: UnbudgetedExpenseName,
		},
		Rules: []Rule{UnbudgetedExpenseRule()},
	}
}

// WalkFunc is called for every node visited by Walk.
type WalkFunc func(e Estimate, depth int) error

// Walk visits root and its descendants depth-first in document order.
func Walk(root Estimate, fn WalkFunc) error {
	return walk(root, 0, fn)
}

func walk(e Estimate, depth int, fn WalkFunc) error {
	if err := fn(e, depth); err != nil {
		return err
	}
	if c, ok := e.(*Category); ok {
		for _, child := range c.Children {
			if err := walk(child, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate checks the category/leaf invariant for the tree under root.
// A nil root is an empty tree and is valid.
func Validate(root Estimate) error {
	if root == nil {
		return nil
	}
	return Walk(root, func(e Estimate, _ int) error {
		switch node := e.(type) {
		case *Category:
			if node == nil {
				return fmt.Errorf("%w: nil category", common.ErrInvalidBudget)
			}
			if len(node.Children) == 0 {
				return fmt.Errorf("%w: category %q has no children", common.ErrInvalidBudget, node.Name)
			}
			for i, child := range node.Children {
				if child == nil {
					return fmt.Errorf("%w: category %q has a nil child at position %d", common.ErrInvalidBudget, node.Name, i)
				}
			}
			if node.ID == uuid.Nil {
				return fmt.Errorf("%w: category %q has no identifier", common.ErrInvalidBudget, node.Name)
			}
		case *Leaf:
			if node == nil {
				return fmt.Errorf("%w: nil leaf", common.ErrInvalidBudget)
			}
			if node.ID == uuid.Nil {
				return fmt.Errorf("%w: estimate %q has no identifier", common.ErrInvalidBudget, node.Name)
			}
		default:
			return fmt.Errorf("%w: unknown estimate type %T", common.ErrInvalidBudget, e)
		}
		return nil
	})
}

// Leaves returns the leaves under root in depth-first order.
func Leaves(root Estimate) []*Leaf {
	var leaves []*Leaf
	if root == nil {
		return leaves
	}
	_ = Walk(root, func(e Estimate, _ int) error {
		if leaf, ok := e.(*Leaf); ok {
			leaves = append(leaves, leaf)
		}
		return nil
	})
	return leaves
}

// EstimatedTotal is the stated amount of a leaf, or the sum over a category's leaves.
func EstimatedTotal(e Estimate) decimal.Decimal {
	switch node := e.(type) {
	case *Leaf:
		return node.Amount
	case *Category:
		total := decimal.Zero
		for _, child := range node.Children {
			total = total.Add(EstimatedTotal(child))
		}
		return total
	default:
		return decimal.Zero
	}
}

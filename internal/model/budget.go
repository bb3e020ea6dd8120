package model

import "github.com/shopspring/decimal"

// Budget is the estimate tree for one budgeting period.
// Either root may be nil for an empty side.
type Budget struct {
	Period         Period
	Income         Estimate
	Expense        Estimate
	Name           string
	InitialBalance decimal.Decimal
}

// Validate checks both estimate trees.
func (b *Budget) Validate() error {
	if err := Validate(b.Income); err != nil {
		return err
	}
	return Validate(b.Expense)
}

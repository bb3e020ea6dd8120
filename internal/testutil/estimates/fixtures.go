package estimates

import (
	"testing"
	"time"

	"github.com/Veraticus/underbudget/internal/model"
)

// FixtureHousehold returns a monthly budget for January 2024 and the
// transactions recorded against it.
//
// Expected outcome while the period is open:
//
//	Salary      est 3000  act 3000
//	Rent        est  900  act  900
//	Utilities   est  150  act  170  (actual exceeds estimated)
//	Groceries   est  400  act  120
//	Unbudgeted Expense    act   45
func FixtureHousehold(t *testing.T) (*model.Budget, []model.Transaction) {
	t.Helper()

	income := NewBuilder(t, "Income").
		Leaf("Salary", "3000", Payee(model.OperatorEquals, "ACME Payroll")).
		Build()

	expense := NewBuilder(t, "Expenses").
		Category("Housing", func(b *Builder) {
			b.Leaf("Rent", "900", Payee(model.OperatorBeginsWith, "Oak Street"))
			b.Leaf("Utilities", "150",
				Payee(model.OperatorContains, "electric"),
				Payee(model.OperatorContains, "water"))
		}).
		Leaf("Groceries", "400", Any(model.OperatorContains, "market")).
		Build()

	budget := &model.Budget{
		Name:           "Household",
		Period:         model.LiteralMonth{Year: 2024, Month: time.January},
		Income:         income,
		Expense:        expense,
		InitialBalance: Amount(t, "1000"),
	}

	txns := []model.Transaction{
		Txn(t, "2024-01-02", "3000", "ACME Payroll", "January salary"),
		Txn(t, "2024-01-03", "-900", "Oak Street Apartments", "rent"),
		Txn(t, "2024-01-10", "-110", "City Electric", ""),
		Txn(t, "2024-01-12", "-60", "City Water", ""),
		Txn(t, "2024-01-14", "-120", "Corner Market", "weekly shop"),
		Txn(t, "2024-01-20", "-45", "Cinema", "movie night"),
	}
	return budget, txns
}

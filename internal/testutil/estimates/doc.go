// Package estimates provides test infrastructure for building budget estimate
// trees and ledger transactions with a fluent, type-safe API.
//
// # Basic Usage
//
//	func TestMyFeature(t *testing.T) {
//		expense := estimates.NewBuilder(t, "Expenses").
//			Leaf("Rent", "900", estimates.Payee(model.OperatorEquals, "Landlord")).
//			Category("Food", func(b *estimates.Builder) {
//				b.Leaf("Groceries", "300", estimates.Memo(model.OperatorContains, "market"))
//			}).
//			Build()
//	}
//
// # Fixtures
//
// FixtureHousehold returns a small complete budget with income, nested expense
// categories and a matching month of transactions:
//
//	budget, txns := estimates.FixtureHousehold(t)
package estimates

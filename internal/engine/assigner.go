package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

// Allocation maps estimates to the transactions assigned to them.
// It is not safe for concurrent use.
type Allocation struct {
	byEstimate map[uuid.UUID][]model.Transaction
	entries    []AllocationEntry
}

// NewAllocation creates an empty allocation.
func NewAllocation() *Allocation {
	return &Allocation{byEstimate: make(map[uuid.UUID][]model.Transaction)}
}

// Transactions returns the transactions assigned to an estimate, in assignment order.
func (a *Allocation) Transactions(id uuid.UUID) []model.Transaction {
	return a.byEstimate[id]
}

// Actual is the sum of transfer amounts assigned to an estimate.
func (a *Allocation) Actual(id uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range a.byEstimate[id] {
		total = total.Add(txn.TransferAmount())
	}
	return total
}

// Entries returns every assignment in the order it was made.
func (a *Allocation) Entries() []AllocationEntry {
	return a.entries
}

// Len returns the number of assigned transactions.
func (a *Allocation) Len() int {
	return len(a.entries)
}

// Reset clears all assignments. Assigning the same transactions twice
// without a reset counts them twice.
func (a *Allocation) Reset() {
	a.byEstimate = make(map[uuid.UUID][]model.Transaction)
	a.entries = nil
}

// Assign allocates every transaction to the first rule that matches it.
func Assign(txns []model.Transaction, rules []EstimateRule) (*Allocation, error) {
	alloc := NewAllocation()
	if err := AssignInto(alloc, txns, rules); err != nil {
		return nil, err
	}
	return alloc, nil
}

// AssignInto adds the assignments for txns to an existing allocation.
// Nothing is added if any transaction is left unmatched.
func AssignInto(alloc *Allocation, txns []model.Transaction, rules []EstimateRule) error {
	matched := make([]AllocationEntry, 0, len(txns))
	for _, txn := range txns {
		entry, ok := firstMatch(txn, rules)
		if !ok {
			return fmt.Errorf("%w: %s %s %q", common.ErrUnmatchedTransaction,
				txn.Date.Format("2006-01-02"), txn.Amount.StringFixed(2), txn.Payee)
		}
		matched = append(matched, entry)
	}

	if alloc.byEstimate == nil {
		alloc.byEstimate = make(map[uuid.UUID][]model.Transaction)
	}
	for _, entry := range matched {
		id := entry.Estimate.ID
		alloc.byEstimate[id] = append(alloc.byEstimate[id], entry.Transaction)
		alloc.entries = append(alloc.entries, entry)
	}
	return nil
}

func firstMatch(txn model.Transaction, rules []EstimateRule) (AllocationEntry, bool) {
	for _, r := range rules {
		if r.Rule.Matches(txn) {
			return AllocationEntry{
				Estimate:    r.Estimate,
				Polarity:    r.Polarity,
				Rule:        r.Rule,
				Transaction: txn,
			}, true
		}
	}
	return AllocationEntry{}, false
}

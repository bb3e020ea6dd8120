package engine

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/pattern"
)

// DefaultBucketOrder returns the operator precedence used when none is configured.
// More exact operators are tried before looser ones.
func DefaultBucketOrder() []model.Operator {
	return []model.Operator{
		model.OperatorEqualsCase,
		model.OperatorEquals,
		model.OperatorBeginsWith,
		model.OperatorEndsWith,
		model.OperatorContains,
	}
}

// ValidateBucketOrder checks that order names every operator exactly once.
func ValidateBucketOrder(order []model.Operator) error {
	if len(order) != len(model.Operators()) {
		return fmt.Errorf("%w: bucket order must list all %d operators, got %d",
			common.ErrInvalidConfig, len(model.Operators()), len(order))
	}
	seen := make(map[model.Operator]bool, len(order))
	for _, op := range order {
		if !op.Valid() {
			return fmt.Errorf("%w: bucket order: %v", common.ErrInvalidConfig, pattern.CheckRule(model.NewRule(model.FieldAny, op, "")))
		}
		if seen[op] {
			return fmt.Errorf("%w: bucket order lists %q twice", common.ErrInvalidConfig, op)
		}
		seen[op] = true
	}
	return nil
}

// Prioritizer flattens estimate trees into an ordered rule list.
type Prioritizer struct {
	index map[model.Operator]int
	order []model.Operator
}

// NewPrioritizer creates a prioritizer. A nil order selects DefaultBucketOrder.
func NewPrioritizer(order []model.Operator) (*Prioritizer, error) {
	if order == nil {
		order = DefaultBucketOrder()
	}
	if err := ValidateBucketOrder(order); err != nil {
		return nil, err
	}
	index := make(map[model.Operator]int, len(order))
	for i, op := range order {
		index[op] = i
	}
	return &Prioritizer{order: order, index: index}, nil
}

// Prioritize walks the income tree and then the expense tree depth-first and
// buckets every rule by operator. Within a bucket, field-specific rules are
// placed ahead of those already collected and "any" rules behind them.
// The unbudgeted income and expense catch-alls always come last.
func Prioritize(income, expense model.Estimate) (Prioritized, error) {
	p, err := NewPrioritizer(nil)
	if err != nil {
		return Prioritized{}, err
	}
	return p.Prioritize(income, expense)
}

// Prioritize implements the ordering described on the package-level Prioritize.
func (p *Prioritizer) Prioritize(income, expense model.Estimate) (Prioritized, error) {
	if err := model.Validate(income); err != nil {
		return Prioritized{}, fmt.Errorf("income: %w", err)
	}
	if err := model.Validate(expense); err != nil {
		return Prioritized{}, fmt.Errorf("expense: %w", err)
	}

	buckets := make([][]EstimateRule, len(p.order))
	var result Prioritized

	collect := func(root model.Estimate, polarity model.Polarity) {
		for _, leaf := range model.Leaves(root) {
			for _, rule := range leaf.Rules {
				if err := pattern.CheckRule(rule); err != nil {
					p.skip(&result, leaf, rule, err.Error())
					continue
				}
				idx := p.index[rule.Operator]
				pair := EstimateRule{Estimate: leaf, Polarity: polarity, Rule: rule}
				if rule.Field == model.FieldAny {
					buckets[idx] = append(buckets[idx], pair)
				} else {
					buckets[idx] = append([]EstimateRule{pair}, buckets[idx]...)
				}
			}
		}
	}
	collect(income, model.PolarityIncome)
	collect(expense, model.PolarityExpense)

	for _, bucket := range buckets {
		result.Rules = append(result.Rules, bucket...)
	}

	unbudgetedIncome := model.NewUnbudgetedIncome()
	unbudgetedExpense := model.NewUnbudgetedExpense()
	result.Rules = append(result.Rules,
		EstimateRule{Estimate: unbudgetedIncome, Polarity: model.PolarityIncome, Rule: unbudgetedIncome.Rules[0]},
		EstimateRule{Estimate: unbudgetedExpense, Polarity: model.PolarityExpense, Rule: unbudgetedExpense.Rules[0]},
	)

	slog.Debug("Prioritized rules",
		"rules", len(result.Rules),
		"skipped", len(result.Diagnostics))
	return result, nil
}

func (p *Prioritizer) skip(result *Prioritized, leaf *model.Leaf, rule model.Rule, msg string) {
	slog.Warn("Skipping rule",
		"estimate", leaf.Name,
		"rule", rule.String(),
		"reason", msg)
	result.Diagnostics = append(result.Diagnostics, Diagnostic{
		Estimate: leaf.Name,
		Rule:     rule,
		Message:  msg,
	})
}

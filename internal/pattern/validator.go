package pattern

import (
	"fmt"

	"github.com/Veraticus/underbudget/internal/model"
)

// Ensure Validator implements RuleChecker interface.
var _ RuleChecker = (*Validator)(nil)

// CheckRule reports why a rule can never be evaluated, or nil when it can.
// The message carries a "did you mean" hint for near-miss spellings.
func CheckRule(r model.Rule) error {
	if r.IsCatchAll() {
		return nil
	}
	if !r.Field.Valid() {
		if s, ok := SuggestField(string(r.Field)); ok {
			return fmt.Errorf("unknown field %q (did you mean %q?)", r.Field, s)
		}
		return fmt.Errorf("unknown field %q", r.Field)
	}
	if !r.Operator.Valid() {
		if s, ok := SuggestOperator(string(r.Operator)); ok {
			return fmt.Errorf("unknown operator %q (did you mean %q?)", r.Operator, s)
		}
		return fmt.Errorf("unknown operator %q", r.Operator)
	}
	return nil
}

// Validator looks for rules that are malformed or behave surprisingly.
type Validator struct{}

// NewValidator creates a new rule validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Check returns every issue found under both roots.
func (v *Validator) Check(income, expense model.Estimate) []Issue {
	var issues []Issue
	owners := make(map[model.Rule]string)

	for _, root := range []model.Estimate{income, expense} {
		for _, leaf := range model.Leaves(root) {
			for _, rule := range leaf.Rules {
				issues = append(issues, v.checkRule(leaf, rule, owners)...)
			}
		}
	}
	return issues
}

func (v *Validator) checkRule(leaf *model.Leaf, rule model.Rule, owners map[model.Rule]string) []Issue {
	if err := CheckRule(rule); err != nil {
		return []Issue{{
			Estimate: leaf.Name,
			Rule:     rule,
			Severity: SeverityError,
			Message:  err.Error(),
		}}
	}

	var issues []Issue
	if rule.Text == "" && rule.Operator != model.OperatorEquals && rule.Operator != model.OperatorEqualsCase {
		issues = append(issues, Issue{
			Estimate: leaf.Name,
			Rule:     rule,
			Severity: SeverityWarning,
			Message:  "empty text matches every transaction",
		})
	}

	if owner, ok := owners[rule]; ok && owner != leaf.Name {
		issues = append(issues, Issue{
			Estimate: leaf.Name,
			Rule:     rule,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("same rule is also claimed by %q", owner),
		})
	} else if !ok {
		owners[rule] = leaf.Name
	}
	return issues
}

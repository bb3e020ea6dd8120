// Package pattern checks budget rules for mistakes before they reach the engine.
package pattern

import "github.com/Veraticus/underbudget/internal/model"

// Severity ranks how serious an issue is.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes a problem with one rule of one estimate.
type Issue struct {
	Estimate string
	Message  string
	Severity Severity
	Rule     model.Rule
}

// RuleChecker inspects the rules of a budget's estimate trees.
type RuleChecker interface {
	// Check returns every issue found, in tree order. Income is checked before expense.
	Check(income, expense model.Estimate) []Issue
}

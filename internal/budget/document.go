// Package budget reads and writes budget files.
package budget

// Document is the on-disk YAML form of a budget.
type Document struct {
	Period         PeriodDocument `yaml:"period"`
	Income         *NodeDocument  `yaml:"income,omitempty"`
	Expense        *NodeDocument  `yaml:"expense,omitempty"`
	Name           string         `yaml:"name"`
	InitialBalance string         `yaml:"initial_balance,omitempty"`
}

// PeriodDocument selects the budgeting period.
// Monthly and paydate-monthly periods use Year and Month, yearly periods use
// Year, and custom periods use Start and End (YYYY-MM-DD).
type PeriodDocument struct {
	Type  string `yaml:"type"`
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`
	Year  int    `yaml:"year,omitempty"`
	Month int    `yaml:"month,omitempty"`
}

// NodeDocument is one estimate. A node with children is a category and must
// not carry an amount, rules or the final flag.
type NodeDocument struct {
	ID       string          `yaml:"id,omitempty"`
	Name     string          `yaml:"name"`
	Notes    string          `yaml:"notes,omitempty"`
	Amount   string          `yaml:"amount,omitempty"`
	Rules    []RuleDocument  `yaml:"rules,omitempty"`
	Children []*NodeDocument `yaml:"children,omitempty"`
	Final    bool            `yaml:"final,omitempty"`
}

// RuleDocument is one matching rule.
type RuleDocument struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Text     string `yaml:"text"`
}

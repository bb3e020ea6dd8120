package budget

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/underbudget/internal/model"
)

// Marshal encodes a budget as YAML.
func Marshal(b *model.Budget) ([]byte, error) {
	data, err := yaml.Marshal(NewDocument(b))
	if err != nil {
		return nil, fmt.Errorf("failed to encode budget: %w", err)
	}
	return data, nil
}

// Save writes a budget file, creating parent directories as needed.
func Save(path string, b *model.Budget) error {
	data, err := Marshal(b)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create budget directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write budget file: %w", err)
	}
	return nil
}

// NewDocument converts a budget into its YAML form.
func NewDocument(b *model.Budget) *Document {
	doc := &Document{
		Name:    b.Name,
		Income:  newNode(b.Income),
		Expense: newNode(b.Expense),
	}
	if !b.InitialBalance.IsZero() {
		doc.InitialBalance = b.InitialBalance.String()
	}

	switch p := b.Period.(type) {
	case model.LiteralMonth:
		doc.Period = PeriodDocument{Type: p.Type(), Year: p.Year, Month: int(p.Month)}
	case model.PaydateMonth:
		doc.Period = PeriodDocument{Type: p.Type(), Year: p.Year, Month: int(p.Month)}
	case model.Yearly:
		doc.Period = PeriodDocument{Type: p.Type(), Year: p.Year}
	case model.Custom:
		doc.Period = PeriodDocument{
			Type:  p.Type(),
			Start: p.From.Format(dateLayout),
			End:   p.To.Format(dateLayout),
		}
	}
	return doc
}

func newNode(e model.Estimate) *NodeDocument {
	switch node := e.(type) {
	case *model.Category:
		doc := &NodeDocument{ID: node.ID.String(), Name: node.Name, Notes: node.Notes}
		for _, child := range node.Children {
			doc.Children = append(doc.Children, newNode(child))
		}
		return doc
	case *model.Leaf:
		doc := &NodeDocument{
			ID:     node.ID.String(),
			Name:   node.Name,
			Notes:  node.Notes,
			Amount: node.Amount.StringFixed(2),
			Final:  node.Final,
		}
		for _, r := range node.Rules {
			doc.Rules = append(doc.Rules, RuleDocument{
				Field:    string(r.Field),
				Operator: string(r.Operator),
				Text:     r.Text,
			})
		}
		return doc
	default:
		return nil
	}
}

// Template returns a starter budget for the month containing now.
func Template(now time.Time) *model.Budget {
	income, _ := model.NewCategory("Income",
		model.NewLeaf("Salary", decimal.NewFromInt(3000),
			model.NewRule(model.FieldPayee, model.OperatorContains, "payroll")),
	)

	rent := model.NewLeaf("Rent", decimal.NewFromInt(1200),
		model.NewRule(model.FieldPayee, model.OperatorEquals, "Landlord"))
	rent.Final = true
	housing, _ := model.NewCategory("Housing",
		rent,
		model.NewLeaf("Utilities", decimal.NewFromInt(150),
			model.NewRule(model.FieldPayee, model.OperatorContains, "electric"),
			model.NewRule(model.FieldPayee, model.OperatorContains, "water")),
	)
	expense, _ := model.NewCategory("Expenses",
		housing,
		model.NewLeaf("Groceries", decimal.NewFromInt(400),
			model.NewRule(model.FieldAny, model.OperatorContains, "market")),
	)

	return &model.Budget{
		Name:    "My Budget",
		Period:  model.LiteralMonth{Year: now.Year(), Month: now.Month()},
		Income:  income,
		Expense: expense,
	}
}

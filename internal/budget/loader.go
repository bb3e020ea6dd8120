package budget

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

const dateLayout = "2006-01-02"

// idNamespace derives stable estimate identifiers from their position in the tree
// so that the same budget file yields the same identifiers on every load.
var idNamespace = uuid.MustParse("0b6c9f3e-5a47-4d5e-8f0e-2f7c1d9a4b60")

// Load reads and parses a budget file.
func Load(path string) (*model.Budget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read budget file: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a YAML budget document.
func Parse(data []byte) (*model.Budget, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", common.ErrInvalidBudget, err)
	}
	return doc.Budget()
}

// Budget converts the document into a validated budget.
func (d *Document) Budget() (*model.Budget, error) {
	period, err := d.Period.Period()
	if err != nil {
		return nil, err
	}

	initial := decimal.Zero
	if d.InitialBalance != "" {
		initial, err = decimal.NewFromString(strings.TrimSpace(d.InitialBalance))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid initial_balance %q", common.ErrInvalidBudget, d.InitialBalance)
		}
	}

	b := &model.Budget{
		Name:           d.Name,
		Period:         period,
		InitialBalance: initial,
	}
	if d.Income != nil {
		if b.Income, err = d.Income.estimate("income", "income"); err != nil {
			return nil, err
		}
	}
	if d.Expense != nil {
		if b.Expense, err = d.Expense.estimate("expense", "expense"); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := checkUniqueIDs(b); err != nil {
		return nil, err
	}
	return b, nil
}

func checkUniqueIDs(b *model.Budget) error {
	seen := make(map[uuid.UUID]string)
	for _, root := range []model.Estimate{b.Income, b.Expense} {
		if root == nil {
			continue
		}
		err := model.Walk(root, func(e model.Estimate, _ int) error {
			info := e.Info()
			if other, ok := seen[info.ID]; ok {
				return fmt.Errorf("%w: estimates %q and %q share id %s: %w",
					common.ErrInvalidBudget, other, info.Name, info.ID, common.ErrDuplicateEntry)
			}
			seen[info.ID] = info.Name
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Period converts the period section. An empty type means monthly.
func (p PeriodDocument) Period() (model.Period, error) {
	switch strings.ToLower(p.Type) {
	case "", model.PeriodLiteralMonth:
		month, err := p.month()
		if err != nil {
			return nil, err
		}
		return model.LiteralMonth{Year: p.Year, Month: month}, nil
	case model.PeriodPaydateMonth:
		month, err := p.month()
		if err != nil {
			return nil, err
		}
		return model.PaydateMonth{Year: p.Year, Month: month}, nil
	case model.PeriodYearly:
		if p.Year == 0 {
			return nil, fmt.Errorf("%w: yearly period needs a year", common.ErrInvalidBudget)
		}
		return model.Yearly{Year: p.Year}, nil
	case model.PeriodCustom:
		start, err := time.ParseInLocation(dateLayout, p.Start, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid period start %q", common.ErrInvalidBudget, p.Start)
		}
		end, err := time.ParseInLocation(dateLayout, p.End, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid period end %q", common.ErrInvalidBudget, p.End)
		}
		custom, err := model.NewCustom(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidBudget, err)
		}
		return custom, nil
	default:
		return nil, fmt.Errorf("%w: unknown period type %q", common.ErrInvalidBudget, p.Type)
	}
}

func (p PeriodDocument) month() (time.Month, error) {
	if p.Year == 0 || p.Month < 1 || p.Month > 12 {
		return 0, fmt.Errorf("%w: %s period needs a year and a month between 1 and 12",
			common.ErrInvalidBudget, p.Type)
	}
	return time.Month(p.Month), nil
}

// estimate converts a node. path names the node in errors, key locates it
// among its siblings so that derived IDs stay distinct for repeated names.
func (n *NodeDocument) estimate(path, key string) (model.Estimate, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: empty node under %s", common.ErrInvalidBudget, path)
	}
	name := strings.TrimSpace(n.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: estimate under %s has no name", common.ErrInvalidBudget, path)
	}
	path = path + "/" + name
	key = key + "/" + name

	id, err := n.id(path, key)
	if err != nil {
		return nil, err
	}
	info := model.EstimateInfo{ID: id, Name: name, Notes: n.Notes}

	if len(n.Children) > 0 {
		if n.Amount != "" || len(n.Rules) > 0 || n.Final {
			return nil, fmt.Errorf("%w: category %q cannot have an amount, rules or the final flag",
				common.ErrInvalidBudget, path)
		}
		children := make([]model.Estimate, 0, len(n.Children))
		for i, child := range n.Children {
			e, err := child.estimate(path, key+"#"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			children = append(children, e)
		}
		return &model.Category{EstimateInfo: info, Children: children}, nil
	}

	amount := decimal.Zero
	if n.Amount != "" {
		amount, err = decimal.NewFromString(strings.TrimSpace(n.Amount))
		if err != nil {
			return nil, fmt.Errorf("%w: estimate %q has invalid amount %q", common.ErrInvalidBudget, path, n.Amount)
		}
	}

	rules := make([]model.Rule, 0, len(n.Rules))
	for _, r := range n.Rules {
		rules = append(rules, model.NewRule(
			model.Field(strings.ToLower(strings.TrimSpace(r.Field))),
			model.Operator(strings.ToLower(strings.TrimSpace(r.Operator))),
			r.Text))
	}

	return &model.Leaf{EstimateInfo: info, Amount: amount, Rules: rules, Final: n.Final}, nil
}

func (n *NodeDocument) id(path, key string) (uuid.UUID, error) {
	if n.ID == "" {
		return uuid.NewSHA1(idNamespace, []byte(key)), nil
	}
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: estimate %q has invalid id %q", common.ErrInvalidBudget, path, n.ID)
	}
	return id, nil
}

// Package engine reconciles a budget's estimate trees against ledger transactions.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

// Engine runs budget analyses.
type Engine struct {
	progress    ProgressSink
	prioritizer *Prioritizer
	now         func() time.Time
	config      Config
}

// Config holds configuration options for the analysis engine.
type Config struct {
	Period      model.Period // overrides the budget's own period when set
	AsOf        time.Time    // zero means the time the analysis starts
	Progress    ProgressSink
	BucketOrder []model.Operator
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BucketOrder: DefaultBucketOrder(),
	}
}

// New creates a new analysis engine with the default configuration.
func New() *Engine {
	e, _ := NewWithConfig(DefaultConfig())
	return e
}

// NewWithConfig creates a new analysis engine with custom configuration.
func NewWithConfig(config Config) (*Engine, error) {
	prioritizer, err := NewPrioritizer(config.BucketOrder)
	if err != nil {
		return nil, err
	}
	return &Engine{
		config:      config,
		prioritizer: prioritizer,
		progress:    config.Progress,
		now:         time.Now,
	}, nil
}

// Analyze validates the budget, prioritizes its rules, assigns every
// transaction to an estimate and aggregates the balances.
// Results are returned only once every stage has completed.
func (e *Engine) Analyze(ctx context.Context, budget *model.Budget, txns []model.Transaction) (*Results, error) {
	if budget == nil {
		return nil, fmt.Errorf("%w: no budget given", common.ErrInvalidBudget)
	}

	started := e.now()
	asOf := e.config.AsOf
	if asOf.IsZero() {
		asOf = started
	}
	period := e.config.Period
	if period == nil {
		period = budget.Period
	}

	common.LogInfo("Starting analysis", common.Fields{
		"budget":       budget.Name,
		"period":       periodName(period),
		"transactions": len(txns),
		"as_of":        asOf.Format("2006-01-02"),
	})

	if err := budget.Validate(); err != nil {
		common.LogError(err, "Budget failed validation", common.Fields{"budget": budget.Name})
		return nil, fmt.Errorf("failed to validate budget: %w", err)
	}

	prioritized, err := e.prioritizer.Prioritize(budget.Income, budget.Expense)
	if err != nil {
		common.LogError(err, "Rule prioritization failed", common.Fields{"budget": budget.Name})
		return nil, fmt.Errorf("failed to prioritize rules: %w", err)
	}
	common.LogDebug("Rules prioritized", common.Fields{
		"rules":   len(prioritized.Rules),
		"skipped": len(prioritized.Diagnostics),
	})
	e.report(ProgressPrioritized)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alloc, err := Assign(txns, prioritized.Rules)
	if err != nil {
		common.LogError(err, "Transaction assignment failed", common.Fields{"transactions": len(txns)})
		return nil, fmt.Errorf("failed to assign transactions: %w", err)
	}
	common.LogDebug("Transactions assigned", common.Fields{"assigned": alloc.Len()})
	e.report(ProgressAssigned)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	balance, err := NewAggregator(period, asOf).Aggregate(budget.Income, budget.Expense, alloc)
	if err != nil {
		common.LogError(err, "Balance aggregation failed", common.Fields{"budget": budget.Name})
		return nil, fmt.Errorf("failed to aggregate balances: %w", err)
	}
	common.LogDebug("Balances aggregated", common.Fields{
		"entries": len(balance.Entries),
		"elapsed": balance.Elapsed,
	})
	e.report(ProgressAggregated)

	results := &Results{
		Budget:     budget,
		Period:     period,
		AsOf:       asOf,
		StartedAt:  started,
		Rules:      prioritized,
		Allocation: alloc,
		Balance:    balance,
		Duration:   e.now().Sub(started),
	}

	slog.Info("Analysis complete",
		"rules", len(prioritized.Rules),
		"skipped_rules", len(prioritized.Diagnostics),
		"assigned", alloc.Len(),
		"expected_net_change", balance.Total.ExpectedNetChange().StringFixed(2),
		"duration", results.Duration)

	return results, nil
}

func (e *Engine) report(percent int) {
	if e.progress != nil {
		e.progress.Progress(percent)
	}
}

func periodName(p model.Period) string {
	if p == nil {
		return "none"
	}
	return p.String()
}

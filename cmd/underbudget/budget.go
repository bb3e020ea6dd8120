package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/underbudget/internal/budget"
	"github.com/Veraticus/underbudget/internal/cli"
	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/config"
	"github.com/Veraticus/underbudget/internal/engine"
	"github.com/Veraticus/underbudget/internal/pattern"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Create and check budget files",
		Long: `Create a starter budget, check a budget for rule mistakes,
and list its rules in the order the analysis applies them.`,
	}

	cmd.AddCommand(budgetNewCmd())
	cmd.AddCommand(budgetValidateCmd())
	cmd.AddCommand(budgetRulesCmd())

	return cmd
}

func budgetNewCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new FILE",
		Short: "Write a starter budget for the current month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandPath(args[0])
			if _, err := os.Stat(path); err == nil && !force {
				return common.NewUserError(path+" already exists; use --force to overwrite", fs.ErrExist)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check budget file: %w", err)
			}

			if err := budget.Save(path, budget.Template(time.Now())); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Created budget "+path))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func budgetValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a budget for structural and rule problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			b, err := budget.Load(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			issues := pattern.NewValidator().Check(b.Income, b.Expense)
			if len(issues) == 0 {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s (%s) looks good", b.Name, b.Period)))
				return nil
			}

			errorCount := 0
			for _, issue := range issues {
				line := fmt.Sprintf("%s: %s (%s)", issue.Estimate, issue.Message, issue.Rule)
				if issue.Severity == pattern.SeverityError {
					errorCount++
					fmt.Fprintln(out, cli.FormatError(line))
				} else {
					fmt.Fprintln(out, cli.FormatWarning(line))
				}
			}
			if errorCount > 0 {
				return fmt.Errorf("%w: %d rule errors", common.ErrInvalidBudget, errorCount)
			}
			return nil
		},
	}
}

func budgetRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules FILE",
		Short: "List rules in the order transactions are matched against them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			b, err := budget.Load(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			prioritized, err := engine.Prioritize(b.Income, b.Expense)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tESTIMATE\tTYPE\tRULE")
			for i, r := range prioritized.Rules {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, r.Estimate.Name, r.Polarity, r.Rule)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write rules: %w", err)
			}

			for _, d := range prioritized.Diagnostics {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("skipped %s on %s: %s", d.Rule, d.Estimate, d.Message)))
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/underbudget/internal/cli"
	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [RUN-ID]",
		Short: "Show saved analyses",
		Long: `List analyses saved with 'analyze --save', newest first.
Pass a run ID to see the estimates recorded for that analysis.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return common.NewUserError("invalid run ID "+args[0], err)
				}
				run, err := store.GetAnalysisRun(ctx, id)
				if err != nil {
					return err
				}
				return printRun(cmd, run)
			}

			runs, err := store.GetAnalysisRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No saved analyses. Run 'underbudget analyze --save' to record one."))
				return nil
			}

			now := time.Now()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSAVED\tBUDGET\tPERIOD\tTRANSACTIONS\tEXPECTED END")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					run.ID,
					formatRelativeTime(run.CreatedAt, now),
					run.Budget,
					run.Period,
					run.TransactionCount,
					run.ExpectedEndingBalance().StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of analyses to show (0 for all)")

	return cmd
}

func printRun(cmd *cobra.Command, run *model.AnalysisRun) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s - %s", run.Budget, run.Period)))
	fmt.Fprintln(out, cli.FormatField("Saved", 18, run.CreatedAt.Format("2006-01-02 15:04")))
	fmt.Fprintln(out, cli.FormatField("As of", 18, run.AsOf.Format(dateLayout)))
	fmt.Fprintln(out, cli.FormatField("Transactions", 18, fmt.Sprint(run.TransactionCount)))
	fmt.Fprintln(out, cli.FormatField("Initial balance", 18, cli.FormatAmount(run.InitialBalance)))
	fmt.Fprintln(out, cli.FormatField("Actual ending", 18, cli.FormatAmount(run.ActualEndingBalance())))
	fmt.Fprintln(out, cli.FormatField("Expected ending", 18, cli.FormatAmount(run.ExpectedEndingBalance())))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "ESTIMATE\tTYPE\tESTIMATED\tACTUAL\tEXPECTED\t")
	for _, e := range run.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			e.Name, e.Polarity,
			e.Estimated.StringFixed(2), e.Actual.StringFixed(2), e.Expected.StringFixed(2))
	}
	return w.Flush()
}

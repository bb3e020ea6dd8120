package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/underbudget/internal/cli"
	"github.com/Veraticus/underbudget/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints allow you to save the current state of your ledger before a large
import, and restore to a previous state if needed.`,
		Example: `  # Create a checkpoint before importing a year of statements
  underbudget checkpoint create --tag "pre-2024-import"

  # List all checkpoints
  underbudget checkpoint list

  # Restore from a checkpoint
  underbudget checkpoint restore pre-2024-import

  # Delete an old checkpoint
  underbudget checkpoint delete old-checkpoint`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// openCheckpoints opens the database and a checkpoint manager for it.
// The returned storage must be closed by the caller.
func openCheckpoints(ctx context.Context) (*storage.SQLiteStorage, *storage.CheckpointManager, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	manager, err := storage.NewCheckpointManager(store)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return store, manager, nil
}

func findCheckpoint(ctx context.Context, manager *storage.CheckpointManager, id string) (*storage.CheckpointInfo, error) {
	checkpoints, err := manager.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range checkpoints {
		if checkpoints[i].ID == id {
			return &checkpoints[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrCheckpointNotFound, id)
}

// confirm asks a yes/no question on the command's streams. Anything but y/yes declines.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N) ", question)
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y")
}

func createCheckpointCmd() *cobra.Command {
	var tag string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Long:  `Create a snapshot of the current database state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			info, err := manager.Create(ctx, tag, description)
			if err != nil {
				return fmt.Errorf("failed to create checkpoint: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Created checkpoint %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(info.ID),
				formatFileSize(info.FileSize))

			if info.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  Description: %s\n", info.Description)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint tag/name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Long:  `Display all available checkpoints with their metadata.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			checkpoints, err := manager.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list checkpoints: %w", err)
			}

			if len(checkpoints) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No checkpoints found."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

			// Header
			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
			fmt.Fprintln(w, strings.Join([]string{
				headerStyle.Render("NAME"),
				headerStyle.Render("CREATED"),
				headerStyle.Render("SIZE"),
				headerStyle.Render("TRANSACTIONS"),
				headerStyle.Render("ANALYSES"),
				headerStyle.Render("TYPE"),
			}, "\t"))

			// Rows
			now := time.Now()
			for _, cp := range checkpoints {
				typeLabel := "manual"
				if cp.IsAuto {
					typeLabel = "auto"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					cli.InfoStyle.Render(cp.ID),
					formatRelativeTime(cp.CreatedAt, now),
					formatFileSize(cp.FileSize),
					cp.Transactions,
					cp.AnalysisRuns,
					cli.SubtitleStyle.Render(typeLabel),
				)
			}

			return w.Flush()
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore database from a checkpoint",
		Long:  `Replace the current database with a checkpoint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			checkpointID := args[0]

			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			// Restore closes the database itself; a second close is harmless
			defer func() { _ = store.Close() }()

			info, err := findCheckpoint(ctx, manager, checkpointID)
			if err != nil {
				return err
			}

			if !force {
				fmt.Fprintf(out, "%s This will replace your current database with checkpoint %s.\n",
					cli.WarningStyle.Render(cli.WarningIcon),
					cli.InfoStyle.Render(checkpointID))
				fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
				if info.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				if !confirm(cmd, "\nContinue?") {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("Restore cancelled."))
					return nil
				}
			}

			if err := manager.Restore(ctx, checkpointID); err != nil {
				return fmt.Errorf("failed to restore checkpoint: %w", err)
			}

			fmt.Fprintf(out, "%s Restored from checkpoint %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(checkpointID))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Long:  `Permanently remove a checkpoint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			checkpointID := args[0]

			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			info, err := findCheckpoint(ctx, manager, checkpointID)
			if err != nil {
				return err
			}

			if !force {
				fmt.Fprintf(out, "%s This will permanently delete checkpoint %s.\n",
					cli.WarningStyle.Render(cli.WarningIcon),
					cli.InfoStyle.Render(checkpointID))
				fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "  Size: %s\n", formatFileSize(info.FileSize))
				if !confirm(cmd, "\nContinue?") {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("Deletion cancelled."))
					return nil
				}
			}

			if err := manager.Delete(ctx, checkpointID); err != nil {
				return fmt.Errorf("failed to delete checkpoint: %w", err)
			}

			fmt.Fprintf(out, "%s Deleted checkpoint %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(checkpointID))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDeleteCmd creates the 'delete' subcommand.
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task_id>",
		Short: "Delete a task from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Tasks.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("task deleted: %s\n", args[0])
			return nil
		},
	}
}

// newClearCmd creates the 'clear' subcommand: drop all finished tasks.
func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all completed and failed tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := a.Tasks.ClearTerminal()
			if err != nil {
				return err
			}
			fmt.Printf("removed %d finished tasks\n", removed)
			return nil
		},
	}
}

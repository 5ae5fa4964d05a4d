package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// newListCmd creates the 'list' subcommand.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks with their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			summary := a.Tasks.Summary()
			fmt.Printf("tasks: %d total (%d pending, %d running, %d completed, %d failed)\n\n",
				summary.Total, summary.Pending, summary.Running, summary.Completed, summary.Failed)

			for _, t := range a.Tasks.List() {
				fmt.Printf("[%s] %-10s %s\n", t.ID, t.Status, t.Name)
				fmt.Printf("    url: %s\n", t.StartURL)
				switch t.Status {
				case crawler.TaskStatusCompleted:
					fmt.Printf("    result: %d pages, %d products -> %s\n",
						t.PagesVisited, t.ProductsFound, t.ResultRef)
				case crawler.TaskStatusFailed:
					fmt.Printf("    error: %s\n", t.Error)
				}
			}
			return nil
		},
	}
}

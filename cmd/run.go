package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// newRunCmd creates the 'run' subcommand: execute pending tasks, or one
// specific task by id.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [task_id]",
		Short: "Run pending crawl tasks",
		Long: `Runs all pending tasks with the configured concurrency bound, or just the
named task. Interrupting the run is safe: every unit of progress is persisted
before the next begins, and a later run resumes from the last checkpoint.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scheduler := a.Scheduler()

			if len(args) == 1 {
				t, err := a.Tasks.Get(args[0])
				if err != nil {
					return err
				}
				if t.Status != crawler.TaskStatusPending {
					return fmt.Errorf("task %s is %s, only pending tasks can run", t.ID, t.Status)
				}
				scheduler.Execute(ctx, t)
				return nil
			}

			scheduler.RunPending(ctx)
			summary := a.Tasks.Summary()
			fmt.Printf("done: %d completed, %d failed, %d pending\n",
				summary.Completed, summary.Failed, summary.Pending)
			return nil
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// newAddCmd creates the 'add' subcommand: register one pending task.
func newAddCmd() *cobra.Command {
	var (
		taskID    string
		name      string
		startURL  string
		template  string
		maxDepth  int
		maxPages  int
		patterns  []string
		batchSize int
		recursive bool
		headless  bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a crawl task to the queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			if taskID == "" {
				taskID, err = a.IDs.NewID()
				if err != nil {
					return fmt.Errorf("generate task id: %w", err)
				}
			}

			t := crawler.Task{
				ID:          taskID,
				Name:        name,
				StartURL:    startURL,
				TemplateRef: template,
				Status:      crawler.TaskStatusPending,
				CreatedAt:   a.Clock.Now(),
				Config: crawler.TaskConfig{
					MaxDepth:        maxDepth,
					MaxPages:        maxPages,
					URLPatterns:     patterns,
					BatchSize:       batchSize,
					EnableRecursive: recursive,
					UseHeadless:     headless,
					ForceStage1:     force,
				},
			}
			if err := a.Tasks.Add(t); err != nil {
				return fmt.Errorf("add task: %w", err)
			}
			fmt.Printf("task added: %s (%s)\n", t.ID, t.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskID, "task-id", "", "task id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "task name, also the output directory name")
	cmd.Flags().StringVar(&startURL, "url", "", "start URL")
	cmd.Flags().StringVar(&template, "template", "", "extraction template file path")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "stage-1 depth bound (0 = configured default)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stage-1 page budget (0 = configured default)")
	cmd.Flags().StringSliceVar(&patterns, "pattern", nil, "URL pattern; substring or regex:<expr> (repeatable)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "stage-2 batch cap (0 = all candidates)")
	cmd.Flags().BoolVar(&recursive, "recursive", true, "follow links beyond the start page")
	cmd.Flags().BoolVar(&headless, "headless", false, "use the rendering fetcher for this task")
	cmd.Flags().BoolVar(&force, "force-stage1", false, "re-run link discovery even if already completed")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

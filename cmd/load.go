package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evepupil/onaho-crawler/internal/app"
	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// taskFileEntry is one task definition in a bulk-load file. The stage1 and
// stage2 blocks mirror the task file layout used by earlier crawl setups.
type taskFileEntry struct {
	TaskID      string             `json:"task_id"`
	Name        string             `json:"name"`
	StartURL    string             `json:"start_url"`
	TemplateRef string             `json:"template_ref"`
	Config      crawler.TaskConfig `json:"config"`
	Stage1      *struct {
		MaxDepth int `json:"max_depth"`
		MaxPages int `json:"max_pages"`
	} `json:"stage1,omitempty"`
	Stage2 *struct {
		URLPatterns []string `json:"url_patterns"`
		BatchSize   int      `json:"batch_size"`
	} `json:"stage2,omitempty"`
}

type taskFile struct {
	Tasks []taskFileEntry `json:"tasks"`
}

// newLoadCmd creates the 'load' subcommand: bulk-register tasks from a file.
func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Load tasks from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read task file: %w", err)
			}
			var doc taskFile
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse task file: %w", err)
			}
			if len(doc.Tasks) == 0 {
				return fmt.Errorf("task file contains no tasks")
			}

			for _, entry := range doc.Tasks {
				t, err := entryToTask(a, entry)
				if err != nil {
					return err
				}
				if err := a.Tasks.Add(t); err != nil {
					return fmt.Errorf("add task %s: %w", t.ID, err)
				}
				fmt.Printf("task added: %s (%s)\n", t.ID, t.Name)
			}
			return nil
		},
	}
}

func entryToTask(a *app.App, entry taskFileEntry) (crawler.Task, error) {
	if entry.StartURL == "" {
		return crawler.Task{}, fmt.Errorf("task %q has no start_url", entry.Name)
	}
	if entry.TemplateRef == "" {
		return crawler.Task{}, fmt.Errorf("task %q has no template_ref", entry.Name)
	}

	id := entry.TaskID
	if id == "" {
		var err error
		if id, err = a.IDs.NewID(); err != nil {
			return crawler.Task{}, fmt.Errorf("generate task id: %w", err)
		}
	}
	name := entry.Name
	if name == "" {
		name = id
	}

	cfg := entry.Config
	if entry.Stage1 != nil {
		cfg.MaxDepth = entry.Stage1.MaxDepth
		cfg.MaxPages = entry.Stage1.MaxPages
		cfg.EnableRecursive = true
	}
	if entry.Stage2 != nil {
		cfg.URLPatterns = entry.Stage2.URLPatterns
		cfg.BatchSize = entry.Stage2.BatchSize
	}

	return crawler.Task{
		ID:          id,
		Name:        name,
		StartURL:    entry.StartURL,
		TemplateRef: entry.TemplateRef,
		Config:      cfg,
		Status:      crawler.TaskStatusPending,
		CreatedAt:   a.Clock.Now(),
	}, nil
}

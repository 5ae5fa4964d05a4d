package crawler

import (
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a crawl task.
type TaskStatus string

// Task status values persisted in the task store.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal reports whether the status is final. A terminal task is never
// rescheduled; re-running it requires deleting it and adding a new task.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskConfig captures the per-task crawl knobs. Unknown keys supplied by
// task files land in Overrides and are carried through persistence untouched.
type TaskConfig struct {
	MaxDepth        int            `json:"max_depth" mapstructure:"max_depth"`
	MaxPages        int            `json:"max_pages" mapstructure:"max_pages"`
	OutputDir       string         `json:"output_dir,omitempty" mapstructure:"output_dir"`
	EnableRecursive bool           `json:"enable_recursive" mapstructure:"enable_recursive"`
	URLPatterns     []string       `json:"url_patterns,omitempty" mapstructure:"url_patterns"`
	BatchSize       int            `json:"batch_size,omitempty" mapstructure:"batch_size"`
	SaveInterval    int            `json:"save_interval,omitempty" mapstructure:"save_interval"`
	ForceStage1     bool           `json:"force_stage1,omitempty" mapstructure:"force_stage1"`
	UseHeadless     bool           `json:"use_headless,omitempty" mapstructure:"use_headless"`
	Overrides       map[string]any `json:"overrides,omitempty" mapstructure:",remain"`
}

// Task is the persisted definition and status of one crawl job.
type Task struct {
	ID            string     `json:"task_id"`
	Name          string     `json:"name"`
	StartURL      string     `json:"start_url"`
	TemplateRef   string     `json:"template_ref"`
	Config        TaskConfig `json:"config"`
	Status        TaskStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Error         string     `json:"error,omitempty"`
	ResultRef     string     `json:"result_ref,omitempty"`
	PagesVisited  int        `json:"pages_visited"`
	ProductsFound int        `json:"products_found"`
}

// LinkRecord is the persisted metadata for one discovered URL. The URL is
// stored normalized (scheme, host and path only) and is the dedup key within
// a task.
type LinkRecord struct {
	URL          string     `json:"url"`
	Crawled      bool       `json:"crawled"`
	DiscoveredAt time.Time  `json:"discovered_at"`
	CrawledAt    *time.Time `json:"crawled_at,omitempty"`
	Depth        int        `json:"depth"`
}

// Reserved product metadata keys attached by the extraction pipeline.
const (
	ProductSourceURLKey = "_source_url"
	ProductCrawledAtKey = "_crawled_at"
)

// Product maps template field names to extracted values, plus the reserved
// metadata keys above.
type Product map[string]any

// HasData reports whether any non-metadata field carries a non-empty value.
func (p Product) HasData() bool {
	for k, v := range p {
		if strings.HasPrefix(k, "_") {
			continue
		}
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return true
	}
	return false
}

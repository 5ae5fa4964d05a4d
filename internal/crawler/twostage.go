package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TwoStageConfig is the per-task configuration for a full crawl run.
type TwoStageConfig struct {
	TaskName     string
	StartURL     string
	MaxDepth     int
	MaxPages     int
	MaxChildren  int
	URLPatterns  []string
	BatchSize    int
	SaveInterval int
	Stage1Delay  time.Duration
	Stage2Delay  time.Duration
	Recursive    bool
	Render       bool
	Force        bool
}

// RunResult summarizes a completed two-stage run.
type RunResult struct {
	PagesVisited   int
	LinksCollected int
	ProductsFound  int
	ProductsPath   string
}

// TwoStage runs the full crawl for one task: stage-1 discovery (or resume
// from the completion marker), pattern filtering, then stage-2 extraction.
// All state it mutates is owned exclusively by the task, so the whole run is
// a single logical thread of control.
type TwoStage struct {
	cfg       TwoStageConfig
	fetcher   Fetcher
	extractor Extractor
	links     LinkStore
	products  ProductStore
	clock     Clock
	logger    *zap.Logger
}

// NewTwoStage constructs a TwoStage runner.
func NewTwoStage(
	cfg TwoStageConfig,
	fetcher Fetcher,
	extractor Extractor,
	links LinkStore,
	products ProductStore,
	clock Clock,
	logger *zap.Logger,
) *TwoStage {
	return &TwoStage{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		links:     links,
		products:  products,
		clock:     clock,
		logger:    logger.With(zap.String("task", cfg.TaskName)),
	}
}

// Run executes both stages and returns the run summary. Stage 1 always
// finishes (or is skipped via its checkpoint) before stage 2 starts.
func (t *TwoStage) Run(ctx context.Context, tmpl Template) (RunResult, error) {
	frontier := NewFrontier(FrontierConfig{
		StartURL:    t.cfg.StartURL,
		MaxDepth:    t.cfg.MaxDepth,
		MaxPages:    t.cfg.MaxPages,
		MaxChildren: t.cfg.MaxChildren,
		Delay:       t.cfg.Stage1Delay,
		Recursive:   t.cfg.Recursive,
		Render:      t.cfg.Render,
		Force:       t.cfg.Force,
	}, t.fetcher, t.links, t.clock, t.logger)

	if err := frontier.Discover(ctx); err != nil {
		return RunResult{}, fmt.Errorf("stage 1: %w", err)
	}

	filter := NewLinkFilter(t.cfg.URLPatterns, t.logger)
	candidates := filter.Select(t.links.Records(), true)
	t.logger.Info("candidates selected",
		zap.Int("total_links", len(t.links.Records())),
		zap.Int("candidates", len(candidates)),
	)

	pipeline := NewPipeline(PipelineConfig{
		TaskName:     t.cfg.TaskName,
		StartURL:     t.cfg.StartURL,
		BatchSize:    t.cfg.BatchSize,
		SaveInterval: t.cfg.SaveInterval,
		Delay:        t.cfg.Stage2Delay,
	}, t.extractor, t.links, t.products, t.clock, t.logger)

	if err := pipeline.Run(ctx, candidates, tmpl); err != nil {
		return RunResult{}, fmt.Errorf("stage 2: %w", err)
	}

	return RunResult{
		PagesVisited:   frontier.PagesVisited(),
		LinksCollected: len(t.links.Records()),
		ProductsFound:  len(pipeline.Products()),
		ProductsPath:   t.products.Path(),
	}, nil
}

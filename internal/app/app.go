// Package app initializes and holds long-lived application services, acting
// as a dependency injection container, and runs the two-stage pipeline for
// scheduled tasks.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kennygrant/sanitize"
	"go.uber.org/zap"

	"github.com/evepupil/onaho-crawler/internal/clock/system"
	"github.com/evepupil/onaho-crawler/internal/config"
	"github.com/evepupil/onaho-crawler/internal/crawler"
	"github.com/evepupil/onaho-crawler/internal/extractor"
	"github.com/evepupil/onaho-crawler/internal/fetcher"
	collyfetcher "github.com/evepupil/onaho-crawler/internal/fetcher/colly"
	"github.com/evepupil/onaho-crawler/internal/fetcher/headless"
	"github.com/evepupil/onaho-crawler/internal/id/uuid"
	"github.com/evepupil/onaho-crawler/internal/logging"
	"github.com/evepupil/onaho-crawler/internal/store"
	"github.com/evepupil/onaho-crawler/internal/task"
)

// App holds the shared, long-lived services: logger, task store, fetchers
// and clock. It also implements task.Runner, executing one two-stage crawl
// per task with state owned exclusively by that task.
type App struct {
	Cfg    config.Config
	Logger *zap.Logger
	Tasks  *task.Store
	Clock  crawler.Clock
	IDs    crawler.IDGenerator

	fetch    *fetcher.Switch
	rendered *headless.Fetcher
}

// New builds the application services from configuration. It fails fast if
// any critical service cannot be initialized.
func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	tasks, err := task.NewStore(cfg.Data.TasksFile, logger)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	plain := collyfetcher.New(collyfetcher.Config{
		UserAgent:    cfg.Crawler.UserAgent,
		Timeout:      cfg.Crawler.Timeout(),
		IgnoreRobots: cfg.Crawler.IgnoreRobots,
	})

	var rendered *headless.Fetcher
	if cfg.Headless.Enabled {
		rendered, err = headless.NewChromedp(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Crawler.UserAgent,
			NavigationTimeout: cfg.Headless.NavTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("build headless fetcher: %w", err)
		}
		logger.Info("headless rendering enabled", zap.Int("max_parallel", cfg.Headless.MaxParallel))
	}

	return &App{
		Cfg:      cfg,
		Logger:   logger,
		Tasks:    tasks,
		Clock:    system.New(),
		IDs:      uuid.NewUUIDGenerator(),
		fetch:    fetcher.NewSwitch(plain, rendered),
		rendered: rendered,
	}, nil
}

// Close releases fetcher resources and flushes logs.
func (a *App) Close() {
	if a.rendered != nil {
		a.rendered.Close()
	}
	_ = a.Logger.Sync()
}

// Scheduler builds the task scheduler wired to this App.
func (a *App) Scheduler() *task.Scheduler {
	return task.NewScheduler(a.Tasks, a, a.Clock, task.SchedulerConfig{
		MaxConcurrent: a.Cfg.Scheduler.MaxConcurrent,
	}, a.Logger)
}

// TaskDir returns the task-scoped output directory.
func (a *App) TaskDir(t crawler.Task) string {
	base := t.Config.OutputDir
	if base == "" {
		base = a.Cfg.Data.OutputDir
	}
	return filepath.Join(base, sanitize.BaseName(t.Name))
}

// Run implements task.Runner: it loads the task's template, opens the
// task-scoped stores and executes stage 1 and stage 2.
func (a *App) Run(ctx context.Context, t crawler.Task) (crawler.RunResult, error) {
	tmpl, err := crawler.LoadTemplate(t.TemplateRef)
	if err != nil {
		return crawler.RunResult{}, fmt.Errorf("load template: %w", err)
	}

	dir := a.TaskDir(t)
	links, err := store.NewLinkStore(dir, t.Name, t.StartURL, a.Clock)
	if err != nil {
		return crawler.RunResult{}, fmt.Errorf("open link store: %w", err)
	}
	products := store.NewProductStore(dir, t.Name, tmpl)

	render := t.Config.UseHeadless && a.rendered != nil
	ext := extractor.New(extractor.Config{
		APIKey:          a.Cfg.LLM.APIToken,
		BaseURL:         a.Cfg.LLM.BaseURL,
		Model:           a.Cfg.LLM.Model,
		MaxTokens:       a.Cfg.LLM.MaxTokens,
		MaxContentChars: a.Cfg.LLM.MaxContentChars,
		Render:          render,
	}, a.fetch, a.Logger)

	runner := crawler.NewTwoStage(a.twoStageConfig(t, render), a.fetch, ext, links, products, a.Clock, a.Logger)
	return runner.Run(ctx, tmpl)
}

// twoStageConfig merges task-level settings over the configured defaults.
func (a *App) twoStageConfig(t crawler.Task, render bool) crawler.TwoStageConfig {
	cfg := crawler.TwoStageConfig{
		TaskName:     t.Name,
		StartURL:     t.StartURL,
		MaxDepth:     t.Config.MaxDepth,
		MaxPages:     t.Config.MaxPages,
		MaxChildren:  a.Cfg.Crawler.MaxChildren,
		URLPatterns:  t.Config.URLPatterns,
		BatchSize:    t.Config.BatchSize,
		SaveInterval: t.Config.SaveInterval,
		Stage1Delay:  a.Cfg.Crawler.Stage1Delay(),
		Stage2Delay:  a.Cfg.Crawler.Stage2Delay(),
		Recursive:    t.Config.EnableRecursive,
		Render:       render,
		Force:        t.Config.ForceStage1,
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = a.Cfg.Crawler.MaxDepthDefault
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = a.Cfg.Crawler.MaxPagesDefault
	}
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = a.Cfg.Crawler.SaveInterval
	}
	return cfg
}

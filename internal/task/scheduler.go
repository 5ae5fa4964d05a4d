package task

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// Runner executes the two-stage pipeline for one task.
type Runner interface {
	Run(ctx context.Context, t crawler.Task) (crawler.RunResult, error)
}

// SchedulerConfig controls task execution.
type SchedulerConfig struct {
	MaxConcurrent int
}

// Scheduler runs pending tasks with bounded concurrency. A failing task is
// marked failed and never aborts or delays the others.
type Scheduler struct {
	store  *Store
	runner Runner
	clock  crawler.Clock
	cfg    SchedulerConfig
	logger *zap.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(store *Store, runner Runner, clock crawler.Clock, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &Scheduler{
		store:  store,
		runner: runner,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// RunPending executes all currently pending tasks. With MaxConcurrent of 1
// tasks run strictly sequentially in pending-list order; otherwise up to
// MaxConcurrent run at once.
func (s *Scheduler) RunPending(ctx context.Context) {
	pending := s.store.ListPending()
	if len(pending) == 0 {
		s.logger.Info("no pending tasks")
		return
	}
	s.logger.Info("running pending tasks",
		zap.Int("count", len(pending)),
		zap.Int("max_concurrent", s.cfg.MaxConcurrent),
	)

	if s.cfg.MaxConcurrent == 1 {
		for _, t := range pending {
			if ctx.Err() != nil {
				return
			}
			s.Execute(ctx, t)
		}
		return
	}

	sem := make(chan struct{}, s.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	for _, t := range pending {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(t crawler.Task) {
			defer wg.Done()
			defer func() { <-sem }()
			s.Execute(ctx, t)
		}(t)
	}
	wg.Wait()
}

// Execute runs one task through its full lifecycle. Pipeline errors are
// contained here: the task transitions to failed and Execute returns.
func (s *Scheduler) Execute(ctx context.Context, t crawler.Task) {
	now := s.clock.Now()
	t.Status = crawler.TaskStatusRunning
	t.StartedAt = &now
	if err := s.store.Update(t); err != nil {
		s.logger.Error("cannot persist running status, task not started",
			zap.String("task_id", t.ID), zap.Error(err))
		return
	}
	s.logger.Info("task started", zap.String("task_id", t.ID), zap.String("name", t.Name))

	result, err := s.runner.Run(ctx, t)

	done := s.clock.Now()
	t.CompletedAt = &done
	if err != nil {
		t.Status = crawler.TaskStatusFailed
		t.Error = err.Error()
		crawler.TotalTasksFailed.Inc()
		s.logger.Error("task failed", zap.String("task_id", t.ID), zap.Error(err))
	} else {
		t.Status = crawler.TaskStatusCompleted
		t.Error = ""
		t.ResultRef = result.ProductsPath
		t.PagesVisited = result.PagesVisited
		t.ProductsFound = result.ProductsFound
		crawler.TotalTasksCompleted.Inc()
		s.logger.Info("task completed",
			zap.String("task_id", t.ID),
			zap.Int("pages_visited", result.PagesVisited),
			zap.Int("products_found", result.ProductsFound),
		)
	}
	if uerr := s.store.Update(t); uerr != nil {
		s.logger.Error("cannot persist final task status",
			zap.String("task_id", t.ID), zap.Error(uerr))
	}
}

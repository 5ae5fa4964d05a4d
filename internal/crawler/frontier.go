package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FrontierConfig controls stage-1 discovery bounds.
type FrontierConfig struct {
	StartURL    string
	MaxDepth    int
	MaxPages    int
	MaxChildren int // unvisited children explored per page
	Delay       time.Duration
	Recursive   bool // false = record only the start URL
	Render      bool
	Force       bool // re-run discovery even if the completion marker exists
}

// DefaultMaxChildren bounds the branching factor per page when the config
// leaves it unset.
const DefaultMaxChildren = 5

// Frontier drives stage-1 link discovery: a depth-first walk over same-host
// links starting from StartURL, bounded by MaxDepth and MaxPages, writing
// every newly discovered URL through to the link store. The walk uses an
// explicit work list so crawl depth never translates into call-stack depth.
type Frontier struct {
	cfg     FrontierConfig
	fetcher Fetcher
	store   LinkStore
	clock   Clock
	logger  *zap.Logger

	visited map[string]struct{}
}

type workItem struct {
	url   string
	depth int
}

// NewFrontier constructs a Frontier.
func NewFrontier(cfg FrontierConfig, fetcher Fetcher, store LinkStore, clock Clock, logger *zap.Logger) *Frontier {
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = DefaultMaxChildren
	}
	return &Frontier{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		clock:   clock,
		logger:  logger,
		visited: make(map[string]struct{}),
	}
}

// PagesVisited returns the number of pages fetched by this run.
func (f *Frontier) PagesVisited() int {
	return len(f.visited)
}

// Discover runs stage 1. If the completion marker is present and Force is
// not set, discovery is skipped and the persisted records are loaded instead.
// On natural completion the full collection and the marker are written; that
// pair of writes is the stage-1 commit point.
func (f *Frontier) Discover(ctx context.Context) error {
	if !f.cfg.Force && f.store.Stage1Completed() {
		f.logger.Info("stage 1 already completed, loading links from storage")
		if err := f.store.Load(); err != nil {
			return fmt.Errorf("load links: %w", err)
		}
		return nil
	}

	start, err := NormalizeURL(f.cfg.StartURL)
	if err != nil {
		return fmt.Errorf("normalize start url: %w", err)
	}
	if f.store.Add(LinkRecord{URL: start, DiscoveredAt: f.clock.Now(), Depth: 0}) {
		TotalLinksDiscovered.Inc()
	}

	if !f.cfg.Recursive {
		f.visited[start] = struct{}{}
		f.logger.Info("single-page mode, recording start url only", zap.String("url", start))
		if err := f.store.CompleteStage1(); err != nil {
			return fmt.Errorf("commit stage 1: %w", err)
		}
		return nil
	}

	f.logger.Info("stage 1: collecting links",
		zap.String("start_url", start),
		zap.Int("max_depth", f.cfg.MaxDepth),
		zap.Int("max_pages", f.cfg.MaxPages),
	)

	stack := []workItem{{url: start, depth: 0}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("discovery canceled: %w", err)
		}
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth > f.cfg.MaxDepth || len(f.visited) >= f.cfg.MaxPages {
			continue
		}
		if _, seen := f.visited[item.url]; seen {
			continue
		}
		f.visited[item.url] = struct{}{}
		f.logger.Debug("visiting", zap.String("url", item.url), zap.Int("depth", item.depth))

		resp, err := f.fetcher.Fetch(ctx, FetchRequest{URL: item.url, Render: f.cfg.Render})
		if err != nil {
			TotalFetchErrors.Inc()
			f.logger.Warn("fetch failed, branch yields no children",
				zap.String("url", item.url), zap.Error(err))
			continue
		}
		TotalPagesFetched.Inc()

		children := f.recordLinks(item, resp)

		if err := sleepCtx(ctx, f.cfg.Delay); err != nil {
			return fmt.Errorf("discovery canceled: %w", err)
		}

		if item.depth < f.cfg.MaxDepth {
			// Push in reverse so children run in fetcher order.
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, workItem{url: children[i], depth: item.depth + 1})
			}
		}
	}

	f.logger.Info("stage 1 complete",
		zap.Int("pages_visited", len(f.visited)),
		zap.Int("links_collected", len(f.store.Records())),
	)
	if err := f.store.CompleteStage1(); err != nil {
		return fmt.Errorf("commit stage 1: %w", err)
	}
	return nil
}

// recordLinks writes the page's same-host outbound links through to the
// store and returns at most MaxChildren normalized URLs not yet visited, in
// the order the fetcher returned them.
func (f *Frontier) recordLinks(item workItem, resp FetchResponse) []string {
	var children []string
	queued := make(map[string]struct{})
	for _, link := range resp.Links {
		resolved, err := ResolveURL(item.url, link)
		if err != nil {
			continue
		}
		norm, err := NormalizeURL(resolved)
		if err != nil {
			continue
		}
		if !SameHost(norm, f.cfg.StartURL) {
			continue
		}
		if f.store.Add(LinkRecord{URL: norm, DiscoveredAt: f.clock.Now(), Depth: item.depth + 1}) {
			TotalLinksDiscovered.Inc()
		}
		if len(children) >= f.cfg.MaxChildren {
			continue
		}
		if _, seen := f.visited[norm]; seen {
			continue
		}
		if _, dup := queued[norm]; dup {
			continue
		}
		queued[norm] = struct{}{}
		children = append(children, norm)
	}
	return children
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PipelineConfig controls stage-2 extraction.
type PipelineConfig struct {
	TaskName     string
	StartURL     string
	BatchSize    int // process only the first N candidates; 0 = all
	SaveInterval int
	Delay        time.Duration
}

// DefaultSaveInterval is the product checkpoint cadence when unset.
const DefaultSaveInterval = 5

// Pipeline runs stage 2: it walks the filtered candidates in order, calls
// the extractor for each, validates the payload, and accumulates products.
// Every candidate is marked crawled and persisted before the pipeline
// advances, so a restart never reprocesses a candidate — at the cost of
// never retrying a failed one.
type Pipeline struct {
	cfg       PipelineConfig
	extractor Extractor
	links     LinkStore
	store     ProductStore
	clock     Clock
	logger    *zap.Logger

	products []Product
}

// NewPipeline constructs a Pipeline.
func NewPipeline(cfg PipelineConfig, extractor Extractor, links LinkStore, store ProductStore, clock Clock, logger *zap.Logger) *Pipeline {
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = DefaultSaveInterval
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		links:     links,
		store:     store,
		clock:     clock,
		logger:    logger,
	}
}

// Products returns the accumulated product collection.
func (p *Pipeline) Products() []Product {
	return p.products
}

// Run processes candidates in order. Previously persisted products are
// loaded first so a partially completed stage 2 resumes where it stopped.
func (p *Pipeline) Run(ctx context.Context, candidates []LinkRecord, tmpl Template) error {
	existing, err := p.store.Load()
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	p.products = existing
	if len(existing) > 0 {
		p.logger.Info("resuming with previously extracted products", zap.Int("count", len(existing)))
	}

	if p.cfg.BatchSize > 0 && len(candidates) > p.cfg.BatchSize {
		candidates = candidates[:p.cfg.BatchSize]
		p.logger.Info("batch size cap applied", zap.Int("batch_size", p.cfg.BatchSize))
	}
	if len(candidates) == 0 {
		p.logger.Info("no candidates to extract")
		return nil
	}

	p.logger.Info("stage 2: extracting products",
		zap.String("task", p.cfg.TaskName),
		zap.Int("candidates", len(candidates)),
	)

	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("extraction canceled: %w", err)
		}
		p.logger.Info("extracting",
			zap.Int("n", i+1), zap.Int("of", len(candidates)), zap.String("url", cand.URL))

		p.processCandidate(ctx, cand, tmpl)

		// Forward-progress commit: crawled is persisted before the next
		// candidate, whatever the extraction outcome was.
		if err := p.links.MarkCrawled(cand.URL, p.clock.Now()); err != nil {
			return fmt.Errorf("mark link crawled: %w", err)
		}

		if (i+1)%p.cfg.SaveInterval == 0 {
			if err := p.flush(); err != nil {
				return err
			}
			p.logger.Info("progress checkpoint saved", zap.Int("processed", i+1))
		}

		if err := sleepCtx(ctx, p.cfg.Delay); err != nil {
			return fmt.Errorf("extraction canceled: %w", err)
		}
	}

	if err := p.flush(); err != nil {
		return err
	}
	p.logger.Info("stage 2 complete", zap.Int("products", len(p.products)))
	return nil
}

// processCandidate runs one extraction attempt. Failures of any kind are
// contained here; the caller still marks the candidate crawled.
func (p *Pipeline) processCandidate(ctx context.Context, cand LinkRecord, tmpl Template) {
	payload, err := p.extractor.Extract(ctx, cand.URL, tmpl)
	if err != nil {
		TotalExtractionFailures.Inc()
		p.logger.Warn("extraction failed", zap.String("url", cand.URL), zap.Error(err))
		return
	}

	product, ok := p.validate(payload, tmpl, cand.URL)
	if !ok {
		TotalExtractionFailures.Inc()
		return
	}

	product[ProductSourceURLKey] = cand.URL
	product[ProductCrawledAtKey] = p.clock.Now().Format(time.RFC3339)

	if !product.HasData() {
		TotalExtractionFailures.Inc()
		p.logger.Warn("extraction yielded no field values", zap.String("url", cand.URL))
		return
	}
	p.products = append(p.products, product)
	TotalProductsExtracted.Inc()
	p.logger.Info("product extracted", zap.String("url", cand.URL))
}

// validate normalizes the raw payload and rejects diagnostic or mismatched
// shapes: wrapped lists are unwrapped to their first element, "blocks"
// replies (index+content) and error payloads are discarded, and the field
// keys must intersect the template's key set.
func (p *Pipeline) validate(payload any, tmpl Template, url string) (Product, bool) {
	var data map[string]any
	switch v := payload.(type) {
	case []any:
		if len(v) == 0 {
			p.logger.Warn("extractor returned empty list", zap.String("url", url))
			return nil, false
		}
		first, ok := v[0].(map[string]any)
		if !ok {
			p.logger.Warn("extractor returned a list of non-objects", zap.String("url", url))
			return nil, false
		}
		data = first
	case map[string]any:
		data = v
	default:
		p.logger.Warn("extractor returned an unexpected shape",
			zap.String("url", url), zap.String("type", fmt.Sprintf("%T", payload)))
		return nil, false
	}

	if _, hasIndex := data["index"]; hasIndex {
		if _, hasContent := data["content"]; hasContent {
			p.logger.Warn("extractor returned blocks format, skipping", zap.String("url", url))
			return nil, false
		}
	}
	if isErrorPayload(data) {
		p.logger.Warn("extractor returned an error payload", zap.String("url", url))
		return nil, false
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	if !tmpl.Intersects(keys) {
		p.logger.Warn("extracted keys do not overlap template", zap.String("url", url))
		return nil, false
	}
	return Product(data), true
}

func isErrorPayload(data map[string]any) bool {
	v, ok := data["error"]
	if !ok {
		return false
	}
	switch e := v.(type) {
	case bool:
		return e
	case string:
		return e != ""
	case nil:
		return false
	default:
		return true
	}
}

// flush persists the product collection. An empty collection is not
// written, preserving any earlier file.
func (p *Pipeline) flush() error {
	if len(p.products) == 0 {
		return nil
	}
	info := CrawlInfo{
		StartURL:            p.cfg.StartURL,
		TotalLinksCollected: len(p.links.Records()),
		ProductsExtracted:   len(p.products),
		LastUpdated:         p.clock.Now(),
	}
	if err := p.store.Save(p.products, info); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

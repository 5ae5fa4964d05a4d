package crawler

import (
	"context"
	"time"
)

// FetchRequest captures everything needed to fetch one page.
type FetchRequest struct {
	URL    string
	Render bool // request a JS-rendering fetcher if one is configured
}

// FetchResponse is the result returned by a Fetcher implementation. Links
// holds the absolute outbound URLs found on the page, in document order.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Links      []string
}

// Fetcher fetches a URL and returns the page body plus its outbound links.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor runs structured extraction for one page against a field template
// and returns the raw decoded payload. The pipeline validates its shape.
type Extractor interface {
	Extract(ctx context.Context, url string, tmpl Template) (any, error)
}

// LinkStore persists LinkRecords for one task and the stage-1 completion
// marker. Mutating calls flush to stable storage before returning.
type LinkStore interface {
	// Add appends a record if its URL is not already present. It reports
	// whether the record was added. Add does not persist; stage 1 commits
	// the whole collection at once via Save.
	Add(rec LinkRecord) bool
	Has(url string) bool
	Records() []LinkRecord
	// MarkCrawled sets the crawled flag and timestamp for url and persists
	// the full collection immediately.
	MarkCrawled(url string, at time.Time) error
	// Save persists the full collection.
	Save() error
	// CompleteStage1 persists the collection and writes the completion
	// marker. The two writes are the commit point of stage 1.
	CompleteStage1() error
	Stage1Completed() bool
	// Load replaces the in-memory collection with the persisted one.
	Load() error
}

// ProductStore persists the accumulated products for one task.
type ProductStore interface {
	// Load returns previously persisted products, or nil if none exist.
	Load() ([]Product, error)
	// Save persists the product collection with crawl bookkeeping info.
	Save(products []Product, info CrawlInfo) error
	// Path is the location of the persisted products file.
	Path() string
}

// CrawlInfo is the bookkeeping block written alongside products.
type CrawlInfo struct {
	StartURL            string    `json:"start_url"`
	TotalLinksCollected int       `json:"total_links_collected"`
	ProductsExtracted   int       `json:"products_extracted"`
	LastUpdated         time.Time `json:"last_updated"`
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces task IDs.
type IDGenerator interface {
	NewID() (string, error)
}

package crawler

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0).UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// fakeFetcher serves canned link lists keyed by normalized URL.
type fakeFetcher struct {
	links   map[string][]string
	bodies  map[string]string
	failing map[string]bool
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, request FetchRequest) (FetchResponse, error) {
	f.fetched = append(f.fetched, request.URL)
	if f.failing[request.URL] {
		return FetchResponse{}, errors.New("boom")
	}
	body := f.bodies[request.URL]
	if body == "" {
		body = "<html>page</html>"
	}
	return FetchResponse{
		URL:        request.URL,
		StatusCode: 200,
		Body:       []byte(body),
		Links:      f.links[request.URL],
	}, nil
}

// fakeExtractor returns canned payloads keyed by URL.
type fakeExtractor struct {
	payloads map[string]any
	errs     map[string]error
	calls    []string
}

func (e *fakeExtractor) Extract(_ context.Context, url string, _ Template) (any, error) {
	e.calls = append(e.calls, url)
	if err := e.errs[url]; err != nil {
		return nil, err
	}
	return e.payloads[url], nil
}

// memLinkStore is an in-memory LinkStore tracking persistence calls.
type memLinkStore struct {
	records   []LinkRecord
	index     map[string]int
	completed bool
	saves     int
	saveErr   error
}

func newMemLinkStore() *memLinkStore {
	return &memLinkStore{index: make(map[string]int)}
}

func (s *memLinkStore) Add(rec LinkRecord) bool {
	if _, ok := s.index[rec.URL]; ok {
		return false
	}
	s.index[rec.URL] = len(s.records)
	s.records = append(s.records, rec)
	return true
}

func (s *memLinkStore) Has(url string) bool {
	_, ok := s.index[url]
	return ok
}

func (s *memLinkStore) Records() []LinkRecord {
	return s.records
}

func (s *memLinkStore) MarkCrawled(url string, at time.Time) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if i, ok := s.index[url]; ok {
		s.records[i].Crawled = true
		s.records[i].CrawledAt = &at
	}
	s.saves++
	return nil
}

func (s *memLinkStore) Save() error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	return nil
}

func (s *memLinkStore) CompleteStage1() error {
	if err := s.Save(); err != nil {
		return err
	}
	s.completed = true
	return nil
}

func (s *memLinkStore) Stage1Completed() bool {
	return s.completed
}

func (s *memLinkStore) Load() error {
	return nil
}

// memProductStore is an in-memory ProductStore tracking flushes.
type memProductStore struct {
	products []Product
	info     CrawlInfo
	flushes  int
	loadErr  error
}

func (s *memProductStore) Load() ([]Product, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.products, nil
}

func (s *memProductStore) Save(products []Product, info CrawlInfo) error {
	s.products = append([]Product(nil), products...)
	s.info = info
	s.flushes++
	return nil
}

func (s *memProductStore) Path() string {
	return "mem://products.json"
}

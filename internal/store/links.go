package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// File names inside a task directory.
const (
	LinksFileName    = "collected_links.json"
	Stage1MarkerName = ".stage1_completed"
)

// linksDocument is the on-disk shape of the collected links file.
type linksDocument struct {
	TaskName     string               `json:"task_name"`
	StartURL     string               `json:"start_url"`
	CollectedAt  time.Time            `json:"collected_at"`
	TotalLinks   int                  `json:"total_links"`
	CrawledCount int                  `json:"crawled_count"`
	Links        []crawler.LinkRecord `json:"links"`
}

// LinkStore is the file-backed crawler.LinkStore for one task. Records are
// held in memory in discovery order with a URL index for dedup; saves
// rewrite the whole collection atomically.
type LinkStore struct {
	taskName string
	startURL string
	dir      string
	clock    crawler.Clock

	records []crawler.LinkRecord
	index   map[string]int
}

// NewLinkStore creates the task directory if needed and returns an empty
// store. Call Load to pull previously persisted records.
func NewLinkStore(dir, taskName, startURL string, clock crawler.Clock) (*LinkStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create task dir %s: %w", dir, err)
	}
	return &LinkStore{
		taskName: taskName,
		startURL: startURL,
		dir:      dir,
		clock:    clock,
		index:    make(map[string]int),
	}, nil
}

func (s *LinkStore) linksPath() string {
	return filepath.Join(s.dir, LinksFileName)
}

func (s *LinkStore) markerPath() string {
	return filepath.Join(s.dir, Stage1MarkerName)
}

// Add appends rec unless a record with the same URL already exists.
func (s *LinkStore) Add(rec crawler.LinkRecord) bool {
	if _, ok := s.index[rec.URL]; ok {
		return false
	}
	s.index[rec.URL] = len(s.records)
	s.records = append(s.records, rec)
	return true
}

// Has reports whether url is already recorded.
func (s *LinkStore) Has(url string) bool {
	_, ok := s.index[url]
	return ok
}

// Records returns the records in discovery order. The slice is shared;
// callers must not mutate it.
func (s *LinkStore) Records() []crawler.LinkRecord {
	return s.records
}

// MarkCrawled flags url as crawled and persists the collection immediately.
// An unknown url is a no-op apart from the save.
func (s *LinkStore) MarkCrawled(url string, at time.Time) error {
	if i, ok := s.index[url]; ok && !s.records[i].Crawled {
		s.records[i].Crawled = true
		s.records[i].CrawledAt = &at
	}
	return s.Save()
}

// Save rewrites the collected links file.
func (s *LinkStore) Save() error {
	crawled := 0
	for _, rec := range s.records {
		if rec.Crawled {
			crawled++
		}
	}
	doc := linksDocument{
		TaskName:     s.taskName,
		StartURL:     s.startURL,
		CollectedAt:  s.clock.Now(),
		TotalLinks:   len(s.records),
		CrawledCount: crawled,
		Links:        s.records,
	}
	if err := WriteJSONAtomic(s.linksPath(), doc); err != nil {
		return fmt.Errorf("save links: %w", err)
	}
	return nil
}

// CompleteStage1 persists the collection and writes the zero-byte completion
// marker.
func (s *LinkStore) CompleteStage1() error {
	if err := s.Save(); err != nil {
		return err
	}
	if err := os.WriteFile(s.markerPath(), nil, 0o600); err != nil {
		return fmt.Errorf("write stage-1 marker: %w", err)
	}
	return nil
}

// Stage1Completed reports whether the marker and the links file both exist.
func (s *LinkStore) Stage1Completed() bool {
	if _, err := os.Stat(s.markerPath()); err != nil {
		return false
	}
	_, err := os.Stat(s.linksPath())
	return err == nil
}

// Load replaces the in-memory collection with the persisted one.
func (s *LinkStore) Load() error {
	var doc linksDocument
	if err := ReadJSON(s.linksPath(), &doc); err != nil {
		return err
	}
	s.records = doc.Links
	s.index = make(map[string]int, len(doc.Links))
	for i, rec := range doc.Links {
		s.index[rec.URL] = i
	}
	return nil
}

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

type stubClock struct{ at time.Time }

func (c stubClock) Now() time.Time { return c.at }

func testClock() stubClock {
	return stubClock{at: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLinkStoreAddAndDedup(t *testing.T) {
	t.Parallel()

	s, err := NewLinkStore(t.TempDir(), "demo", "https://example.com", testClock())
	require.NoError(t, err)

	require.True(t, s.Add(crawler.LinkRecord{URL: "https://example.com/a", Depth: 1}))
	require.False(t, s.Add(crawler.LinkRecord{URL: "https://example.com/a", Depth: 2}))
	require.True(t, s.Has("https://example.com/a"))
	require.False(t, s.Has("https://example.com/b"))
	require.Len(t, s.Records(), 1)
	require.Equal(t, 1, s.Records()[0].Depth)
}

func TestLinkStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLinkStore(dir, "demo", "https://example.com", testClock())
	require.NoError(t, err)

	s.Add(crawler.LinkRecord{URL: "https://example.com", Depth: 0})
	s.Add(crawler.LinkRecord{URL: "https://example.com/a", Depth: 1})
	require.NoError(t, s.MarkCrawled("https://example.com/a", testClock().at))

	// The on-disk document carries the bookkeeping header.
	raw, err := os.ReadFile(filepath.Join(dir, LinksFileName))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, "demo", doc["task_name"])
	require.Equal(t, "https://example.com", doc["start_url"])
	require.Equal(t, float64(2), doc["total_links"])
	require.Equal(t, float64(1), doc["crawled_count"])

	fresh, err := NewLinkStore(dir, "demo", "https://example.com", testClock())
	require.NoError(t, err)
	require.NoError(t, fresh.Load())
	require.Len(t, fresh.Records(), 2)
	require.Equal(t, "https://example.com", fresh.Records()[0].URL)
	require.True(t, fresh.Records()[1].Crawled)
	require.NotNil(t, fresh.Records()[1].CrawledAt)
	require.True(t, fresh.Has("https://example.com/a"))
}

func TestLinkStoreMarkCrawledUnknownURLStillSaves(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLinkStore(dir, "demo", "https://example.com", testClock())
	require.NoError(t, err)
	s.Add(crawler.LinkRecord{URL: "https://example.com", Depth: 0})

	require.NoError(t, s.MarkCrawled("https://example.com/unknown", testClock().at))
	_, err = os.Stat(filepath.Join(dir, LinksFileName))
	require.NoError(t, err)
	require.False(t, s.Records()[0].Crawled)
}

func TestLinkStoreStage1Commit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLinkStore(dir, "demo", "https://example.com", testClock())
	require.NoError(t, err)
	s.Add(crawler.LinkRecord{URL: "https://example.com", Depth: 0})

	require.False(t, s.Stage1Completed())
	require.NoError(t, s.CompleteStage1())
	require.True(t, s.Stage1Completed())

	_, err = os.Stat(filepath.Join(dir, Stage1MarkerName))
	require.NoError(t, err)
}

func TestLinkStoreMarkerWithoutLinksFileIsIncomplete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Stage1MarkerName), nil, 0o600))

	s, err := NewLinkStore(dir, "demo", "https://example.com", testClock())
	require.NoError(t, err)
	require.False(t, s.Stage1Completed())
}

func TestLinkStoreLoadMissingFile(t *testing.T) {
	t.Parallel()

	s, err := NewLinkStore(t.TempDir(), "demo", "https://example.com", testClock())
	require.NoError(t, err)
	require.Error(t, s.Load())
}

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

func productTemplate(t *testing.T) crawler.Template {
	t.Helper()
	tmpl, err := crawler.ParseTemplate([]byte(`{"title": "product title", "price": "price in USD"}`))
	require.NoError(t, err)
	return tmpl
}

func TestProductStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewProductStore(dir, "demo", productTemplate(t))
	require.Equal(t, filepath.Join(dir, ProductsFileName), s.Path())

	info := crawler.CrawlInfo{
		StartURL:            "https://example.com",
		TotalLinksCollected: 4,
		ProductsExtracted:   1,
		LastUpdated:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	products := []crawler.Product{
		{"title": "Item", "price": "9.99", crawler.ProductSourceURLKey: "https://example.com/p"},
	}
	require.NoError(t, s.Save(products, info))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "Item", loaded[0]["title"])
	require.Equal(t, "https://example.com/p", loaded[0][crawler.ProductSourceURLKey])
}

func TestProductStoreEnvelope(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewProductStore(dir, "demo", productTemplate(t))
	require.NoError(t, s.Save([]crawler.Product{{"title": "x"}}, crawler.CrawlInfo{StartURL: "https://example.com"}))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	require.Equal(t, "demo", doc["task_name"])
	tmpl, ok := doc["template"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "product title", tmpl["title"])
	ci, ok := doc["crawl_info"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "https://example.com", ci["start_url"])
	require.Contains(t, doc, "products")
}

func TestProductStoreLoadMissingFileYieldsNil(t *testing.T) {
	t.Parallel()

	s := NewProductStore(t.TempDir(), "demo", productTemplate(t))
	loaded, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestWriteJSONAtomicLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, WriteJSONAtomic(path, map[string]string{"k": "v"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "out.json", entries[0].Name())

	var back map[string]string
	require.NoError(t, ReadJSON(path, &back))
	require.Equal(t, "v", back["k"])
}

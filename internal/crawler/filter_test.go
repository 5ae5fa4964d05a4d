package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLinkFilterMatches(t *testing.T) {
	t.Parallel()

	f := NewLinkFilter([]string{"/pricing", `regex:\d+\.html$`}, zap.NewNop())

	require.True(t, f.Matches("https://example.com/pricing"))
	require.True(t, f.Matches("https://example.com/products/item1.html"))
	require.False(t, f.Matches("https://example.com/about"))
}

func TestLinkFilterEmptyPatternsMatchEverything(t *testing.T) {
	t.Parallel()

	f := NewLinkFilter(nil, zap.NewNop())
	require.True(t, f.Matches("https://example.com/anything"))
}

func TestLinkFilterSkipsMalformedRegex(t *testing.T) {
	t.Parallel()

	f := NewLinkFilter([]string{"regex:([", "/keep"}, zap.NewNop())
	require.True(t, f.Matches("https://example.com/keep"))
	require.False(t, f.Matches("https://example.com/other"))
}

func TestLinkFilterSelect(t *testing.T) {
	t.Parallel()

	records := []LinkRecord{
		{URL: "https://example.com/pricing", Depth: 1},
		{URL: "https://example.com/products/item1.html", Depth: 1, Crawled: true},
		{URL: "https://example.com/about", Depth: 1},
	}
	f := NewLinkFilter([]string{"/pricing", `regex:\d+\.html$`}, zap.NewNop())

	all := f.Select(records, false)
	require.Len(t, all, 2)
	require.Equal(t, "https://example.com/pricing", all[0].URL)
	require.Equal(t, "https://example.com/products/item1.html", all[1].URL)

	uncrawled := f.Select(records, true)
	require.Len(t, uncrawled, 1)
	require.Equal(t, "https://example.com/pricing", uncrawled[0].URL)
}

func TestLinkFilterSelectPreservesDiscoveryOrder(t *testing.T) {
	t.Parallel()

	records := []LinkRecord{
		{URL: "https://example.com/p/3.html"},
		{URL: "https://example.com/p/1.html"},
		{URL: "https://example.com/p/2.html"},
	}
	f := NewLinkFilter([]string{`regex:\.html$`}, zap.NewNop())

	got := f.Select(records, false)
	require.Len(t, got, 3)
	require.Equal(t, "https://example.com/p/3.html", got[0].URL)
	require.Equal(t, "https://example.com/p/1.html", got[1].URL)
	require.Equal(t, "https://example.com/p/2.html", got[2].URL)
}

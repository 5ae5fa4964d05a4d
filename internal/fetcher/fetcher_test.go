package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

type namedFetcher struct {
	name string
}

func (f *namedFetcher) Fetch(_ context.Context, request crawler.FetchRequest) (crawler.FetchResponse, error) {
	return crawler.FetchResponse{URL: request.URL, Body: []byte(f.name)}, nil
}

func TestSwitchRoutesRenderRequests(t *testing.T) {
	t.Parallel()

	s := NewSwitch(&namedFetcher{name: "plain"}, &namedFetcher{name: "rendered"})

	resp, err := s.Fetch(context.Background(), crawler.FetchRequest{URL: "https://example.com", Render: false})
	require.NoError(t, err)
	require.Equal(t, "plain", string(resp.Body))

	resp, err = s.Fetch(context.Background(), crawler.FetchRequest{URL: "https://example.com", Render: true})
	require.NoError(t, err)
	require.Equal(t, "rendered", string(resp.Body))
}

func TestSwitchFallsBackWithoutRenderedFetcher(t *testing.T) {
	t.Parallel()

	s := NewSwitch(&namedFetcher{name: "plain"}, nil)

	resp, err := s.Fetch(context.Background(), crawler.FetchRequest{URL: "https://example.com", Render: true})
	require.NoError(t, err)
	require.Equal(t, "plain", string(resp.Body))
}

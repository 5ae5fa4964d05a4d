package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

func TestFetchCollectsBodyAndLinks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<h1>Catalog</h1>
			<a href="/products/1.html">one</a>
			<a href="https://other.com/x">external</a>
			<a href="/pricing">pricing</a>
		</body></html>`))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent", IgnoreRobots: true})
	resp, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: srv.URL + "/"})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), "Catalog")
	require.Equal(t, []string{
		srv.URL + "/products/1.html",
		"https://other.com/x",
		srv.URL + "/pricing",
	}, resp.Links)
}

func TestFetchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(Config{IgnoreRobots: true})
	_, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: srv.URL + "/"})
	require.Error(t, err)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	f := New(Config{IgnoreRobots: true})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, crawler.FetchRequest{URL: srv.URL + "/"})
	require.Error(t, err)
}

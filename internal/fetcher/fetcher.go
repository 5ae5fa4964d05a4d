// Package fetcher routes fetch requests to the right page fetcher.
package fetcher

import (
	"context"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// Switch sends requests asking for rendering to the rendered fetcher when
// one is configured, and everything else to the plain HTTP fetcher.
type Switch struct {
	plain    crawler.Fetcher
	rendered crawler.Fetcher
}

// NewSwitch builds a Switch. rendered may be nil, in which case every
// request uses the plain fetcher.
func NewSwitch(plain, rendered crawler.Fetcher) *Switch {
	return &Switch{plain: plain, rendered: rendered}
}

// Fetch implements crawler.Fetcher.
func (s *Switch) Fetch(ctx context.Context, request crawler.FetchRequest) (crawler.FetchResponse, error) {
	if request.Render && s.rendered != nil {
		return s.rendered.Fetch(ctx, request)
	}
	return s.plain.Fetch(ctx, request)
}

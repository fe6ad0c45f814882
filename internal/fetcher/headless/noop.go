package headless

import (
	"context"
	"fmt"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
)

// Noop implements crawler.Fetcher for deployments with headless rendering
// disabled. Every fetch fails with crawler.ErrPageLoad.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch always fails.
func (Noop) Fetch(_ context.Context, request crawler.FetchRequest) (crawler.FetchResponse, error) {
	return crawler.FetchResponse{}, fmt.Errorf("%w: render %s: headless fetcher not configured", crawler.ErrPageLoad, request.URL)
}

// Package crawlertest provides in-memory fakes for the crawler interfaces.
package crawlertest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
)

// Page is a canned response served by Fetcher.
type Page struct {
	ContentType string
	Body        string
	Err         error
}

// Fetcher is a thread-safe crawler.Fetcher that serves Pages keyed by URL.
// Unknown URLs fail with crawler.ErrNetwork.
//
// Usage:
//
//	f := crawlertest.NewFetcher(map[string]crawlertest.Page{
//	    "https://example.com/robots.txt": {ContentType: "text/plain", Body: "Sitemap: https://example.com/s.xml"},
//	})
type Fetcher struct {
	mu       sync.Mutex
	pages    map[string]Page
	requests []crawler.FetchRequest
}

// NewFetcher returns a Fetcher serving pages.
func NewFetcher(pages map[string]Page) *Fetcher {
	if pages == nil {
		pages = map[string]Page{}
	}
	return &Fetcher{pages: pages}
}

// Set adds or replaces the page served for url.
func (f *Fetcher) Set(url string, page Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = page
}

// Fetch implements crawler.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, request crawler.FetchRequest) (crawler.FetchResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	page, ok := f.pages[request.URL]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return crawler.FetchResponse{}, err
	}
	if !ok {
		return crawler.FetchResponse{}, fmt.Errorf("%w: no page for %s", crawler.ErrNetwork, request.URL)
	}
	if page.Err != nil {
		return crawler.FetchResponse{}, page.Err
	}
	headers := http.Header{}
	if page.ContentType != "" {
		headers.Set("Content-Type", page.ContentType)
	}
	return crawler.FetchResponse{
		URL:        request.URL,
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       []byte(page.Body),
	}, nil
}

// Requests returns a copy of every request seen so far.
func (f *Fetcher) Requests() []crawler.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]crawler.FetchRequest(nil), f.requests...)
}

// Summarizer returns a fixed summary, or Err when set, and counts calls.
type Summarizer struct {
	mu           sync.Mutex
	Summary      string
	Err          error
	descriptions []string
}

// Summarize implements crawler.Summarizer.
func (s *Summarizer) Summarize(_ context.Context, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptions = append(s.descriptions, description)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Summary, nil
}

// Descriptions returns the descriptions passed to Summarize, in call order.
func (s *Summarizer) Descriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.descriptions...)
}

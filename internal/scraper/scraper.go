// Package scraper renders product pages and extracts their title, price and
// description.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
)

// DefaultPriceSelector matches the price element on product pages.
const DefaultPriceSelector = ".price"

// ExtractFields parses rendered HTML and pulls the product fields out of it.
// A field whose selector matches nothing is nil.
func ExtractFields(html, priceSelector string) (crawler.ScrapedFields, error) {
	if priceSelector == "" {
		priceSelector = DefaultPriceSelector
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return crawler.ScrapedFields{}, fmt.Errorf("parse html: %w", err)
	}

	var fields crawler.ScrapedFields
	if sel := doc.Find("title").First(); sel.Length() > 0 {
		fields.Title = ptr(normalizeSpace(sel.Text()))
	}
	if sel := doc.Find(`meta[name="description"]`).First(); sel.Length() > 0 {
		fields.Description = ptr(normalizeSpace(sel.AttrOr("content", "")))
	}
	if sel := doc.Find(priceSelector).First(); sel.Length() > 0 {
		fields.Price = ptr(normalizeSpace(sel.Text()))
	}
	return fields, nil
}

// Scraper renders product pages through a headless fetcher.
type Scraper struct {
	renderer      crawler.Fetcher
	priceSelector string
	logger        *zap.Logger
}

// New builds a Scraper. An empty priceSelector uses DefaultPriceSelector.
func New(renderer crawler.Fetcher, priceSelector string, logger *zap.Logger) *Scraper {
	if priceSelector == "" {
		priceSelector = DefaultPriceSelector
	}
	logger = logging.OrNop(logger)
	return &Scraper{
		renderer:      renderer,
		priceSelector: priceSelector,
		logger:        logger.Named("scraper"),
	}
}

// Scrape renders url and extracts its fields. Navigation failures and non-HTML
// documents are crawler.ErrPageLoad.
func (s *Scraper) Scrape(ctx context.Context, url string) (crawler.ScrapedFields, error) {
	resp, err := s.renderer.Fetch(ctx, crawler.FetchRequest{URL: url})
	if err != nil {
		if !errors.Is(err, crawler.ErrPageLoad) {
			err = fmt.Errorf("%w: %w", crawler.ErrPageLoad, err)
		}
		return crawler.ScrapedFields{}, fmt.Errorf("product %s: %w", url, err)
	}
	if ct := resp.ContentType(); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return crawler.ScrapedFields{}, fmt.Errorf("%w: product %s: unexpected content type %q", crawler.ErrPageLoad, url, ct)
	}

	fields, err := ExtractFields(string(resp.Body), s.priceSelector)
	if err != nil {
		return crawler.ScrapedFields{}, fmt.Errorf("%w: product %s: %w", crawler.ErrPageLoad, url, err)
	}
	s.logger.Debug("product scraped",
		zap.String("url", url),
		zap.Bool("has_title", fields.Title != nil),
		zap.Bool("has_price", fields.Price != nil),
		zap.Bool("has_description", fields.Description != nil),
		zap.Duration("render", resp.Duration),
	)
	return fields, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ptr(s string) *string { return &s }

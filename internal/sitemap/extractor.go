package sitemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
)

// Extractor renders a product url-set in a browser and turns it into
// descriptors.
type Extractor struct {
	renderer crawler.Fetcher
	logger   *zap.Logger
}

// NewExtractor builds an Extractor on top of a headless fetcher.
func NewExtractor(renderer crawler.Fetcher, logger *zap.Logger) *Extractor {
	logger = logging.OrNop(logger)
	return &Extractor{renderer: renderer, logger: logger.Named("sitemap_extractor")}
}

// ExtractProductList returns at most limit descriptors for the eligible entries of
// the url-set at sitemapURL, in document order.
func (e *Extractor) ExtractProductList(
	ctx context.Context,
	sitemapURL string,
	limit int,
) ([]crawler.ProductDescriptor, error) {
	resp, err := e.renderer.Fetch(ctx, crawler.FetchRequest{URL: sitemapURL, RenderText: true})
	if err != nil {
		if !errors.Is(err, crawler.ErrPageLoad) {
			err = fmt.Errorf("%w: %w", crawler.ErrPageLoad, err)
		}
		return nil, fmt.Errorf("product sitemap %s: %w", sitemapURL, err)
	}
	entries, err := ParseURLSet(bytes.TrimSpace(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("product sitemap %s: %w", sitemapURL, err)
	}
	products := FilterProducts(entries, limit)
	e.logger.Debug("product list extracted",
		zap.String("sitemap", sitemapURL),
		zap.Int("entries", len(entries)),
		zap.Int("products", len(products)),
	)
	return products, nil
}

package sitemap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
)

// Resolver picks the product sub-sitemap out of a sitemap index.
type Resolver struct {
	fetcher crawler.Fetcher
	token   string
	logger  *zap.Logger
}

// NewResolver builds a Resolver. An empty token uses DefaultProductToken.
func NewResolver(fetcher crawler.Fetcher, token string, logger *zap.Logger) *Resolver {
	if token == "" {
		token = DefaultProductToken
	}
	logger = logging.OrNop(logger)
	return &Resolver{fetcher: fetcher, token: token, logger: logger.Named("sitemap_resolver")}
}

// ResolveProductSitemap fetches the index at indexURL and returns the location of
// its first product sub-sitemap.
func (r *Resolver) ResolveProductSitemap(ctx context.Context, indexURL string) (string, error) {
	resp, err := r.fetcher.Fetch(ctx, crawler.FetchRequest{URL: indexURL})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", crawler.ErrSitemapFetch, indexURL, err)
	}
	index, err := ParseIndex(resp.Body)
	if err != nil {
		if errors.Is(err, crawler.ErrSitemapFetch) {
			return "", fmt.Errorf("parse %s: %w", indexURL, err)
		}
		return "", fmt.Errorf("%s: %w", indexURL, err)
	}
	loc, err := SelectProductSitemap(index, r.token)
	if err != nil {
		return "", err
	}
	r.logger.Debug("product sitemap resolved",
		zap.String("index", indexURL),
		zap.Int("entries", len(index.Sitemaps)),
		zap.String("sitemap", loc),
	)
	return loc, nil
}

// Package robots locates the sitemap index a site declares in its robots.txt.
package robots

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/config"
	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
)

var sitemapDirective = regexp.MustCompile(`(?i)sitemap:\s*(.*)`)

// ParseFunc extracts the sitemap index URL from robots.txt text.
type ParseFunc func(text string) (string, error)

// ParseSitemapDirective returns the value of the first "sitemap:" directive,
// matched case-insensitively anywhere in the text.
func ParseSitemapDirective(text string) (string, error) {
	m := sitemapDirective.FindStringSubmatch(text)
	if m == nil {
		return "", crawler.ErrSitemapNotDeclared
	}
	return strings.TrimSpace(m[1]), nil
}

// ParseRobotsSitemaps parses text as a robots exclusion file and returns the
// first declared sitemap.
func ParseRobotsSitemaps(text string) (string, error) {
	data, err := robotstxt.FromString(text)
	if err != nil {
		return "", fmt.Errorf("%w: parse robots.txt: %w", crawler.ErrSitemapNotDeclared, err)
	}
	for _, s := range data.Sitemaps {
		if loc := strings.TrimSpace(s); loc != "" {
			return loc, nil
		}
	}
	return "", crawler.ErrSitemapNotDeclared
}

// ParserFor maps a config.RobotsParser* name to its parser. Unknown names get
// the regex parser.
func ParserFor(name string) ParseFunc {
	if name == config.RobotsParserRobotsTxt {
		return ParseRobotsSitemaps
	}
	return ParseSitemapDirective
}

// Locator fetches robots.txt for a domain and extracts the sitemap index URL.
type Locator struct {
	fetcher crawler.Fetcher
	parse   ParseFunc
	logger  *zap.Logger
}

// NewLocator builds a Locator. A nil parse uses ParseSitemapDirective.
func NewLocator(fetcher crawler.Fetcher, parse ParseFunc, logger *zap.Logger) *Locator {
	if parse == nil {
		parse = ParseSitemapDirective
	}
	logger = logging.OrNop(logger)
	return &Locator{
		fetcher: fetcher,
		parse:   parse,
		logger:  logger.Named("robots"),
	}
}

// Locate returns the sitemap index URL declared by domain's robots.txt.
func (l *Locator) Locate(ctx context.Context, domain string) (string, error) {
	host, err := crawler.NormalizeDomain(domain)
	if err != nil {
		return "", err
	}
	robotsURL := crawler.RobotsURL(host)
	resp, err := l.fetcher.Fetch(ctx, crawler.FetchRequest{URL: robotsURL})
	if err != nil {
		if !errors.Is(err, crawler.ErrNetwork) {
			err = fmt.Errorf("%w: %w", crawler.ErrNetwork, err)
		}
		return "", fmt.Errorf("robots.txt for %s: %w", host, err)
	}
	if ct := resp.ContentType(); ct != "" && !isTextual(ct) {
		return "", fmt.Errorf("%w: robots.txt for %s has content type %q", crawler.ErrNetwork, host, ct)
	}

	loc, err := l.parse(string(resp.Body))
	if err != nil {
		return "", fmt.Errorf("robots.txt for %s: %w", host, err)
	}
	l.logger.Debug("sitemap declared", zap.String("domain", host), zap.String("sitemap", loc))
	return loc, nil
}

func isTextual(contentType string) bool {
	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "text/plain" || ct == "application/octet-stream"
}

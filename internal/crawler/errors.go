package crawler

import "errors"

// Error kinds surfaced by the pipeline stages. Stages wrap their underlying
// cause alongside one of these so callers can match with errors.Is.
var (
	ErrInvalidDomain          = errors.New("invalid domain")
	ErrNetwork                = errors.New("network error")
	ErrSitemapNotDeclared     = errors.New("sitemap not found")
	ErrSitemapFetch           = errors.New("sitemap fetch failed")
	ErrInvalidSitemapIndex    = errors.New("invalid sitemap index format")
	ErrProductSitemapNotFound = errors.New("product sitemap not found")
	ErrInvalidURLSet          = errors.New("invalid url set format")
	ErrNoProductsFound        = errors.New("no products found")
	ErrPageLoad               = errors.New("page load failed")
	ErrSummarization          = errors.New("summarization failed")
)

var kindLabels = []struct {
	err   error
	label string
}{
	{ErrInvalidDomain, "invalid_domain"},
	{ErrSitemapNotDeclared, "sitemap_not_declared"},
	{ErrInvalidSitemapIndex, "invalid_sitemap_index"},
	{ErrProductSitemapNotFound, "product_sitemap_not_found"},
	{ErrSitemapFetch, "sitemap_fetch"},
	{ErrInvalidURLSet, "invalid_url_set"},
	{ErrNoProductsFound, "no_products_found"},
	{ErrPageLoad, "page_load"},
	{ErrSummarization, "summarization"},
	{ErrNetwork, "network"},
}

// Kind returns a stable label for the first error kind found in err's chain.
// It returns "ok" for nil and "unknown" when no kind matches.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kindLabels {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "unknown"
}

package crawler

import (
	"net/http"
	"time"
)

// SitemapEntry is a single <sitemap> child of a sitemap index.
type SitemapEntry struct {
	Loc string
}

// SitemapIndex is the ordered list of sub-sitemaps declared by a sitemap index.
type SitemapIndex struct {
	Sitemaps []SitemapEntry
}

// ImageEntry carries the image extension fields of a url-set entry.
type ImageEntry struct {
	Loc   string
	Title string
}

// URLSetEntry is a single <url> child of a url-set.
type URLSetEntry struct {
	Loc     string
	LastMod string
	Images  []ImageEntry
}

// Eligible reports whether the entry carries both an image and a lastmod value.
// Entries missing either are not treated as products.
func (e URLSetEntry) Eligible() bool {
	return len(e.Images) > 0 && e.LastMod != ""
}

// ProductDescriptor is the per-product record carried through the pipeline and
// returned to callers.
type ProductDescriptor struct {
	Link       string `json:"link"`
	Image      string `json:"image,omitempty"`
	ImageTitle string `json:"imageTitle,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// ScrapedFields holds the fields extracted from a rendered product page. A nil
// field means its selector matched nothing.
type ScrapedFields struct {
	Title       *string `json:"title"`
	Price       *string `json:"price"`
	Description *string `json:"description"`
}

// DescriptionText returns the scraped description or an empty string.
func (f ScrapedFields) DescriptionText() string {
	if f.Description == nil {
		return ""
	}
	return *f.Description
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
	// RenderText asks headless fetchers for the document's text (serialized XML or
	// body.innerText) instead of its outer HTML.
	RenderText bool
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// ContentType returns the response Content-Type header, if any.
func (r FetchResponse) ContentType() string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get("Content-Type")
}

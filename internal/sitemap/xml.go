// Package sitemap resolves product sitemaps from a sitemap index and extracts
// product descriptors from url-set documents.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
)

// DefaultProductLimit bounds the number of descriptors ExtractProductList returns.
const DefaultProductLimit = 5

// DefaultProductToken identifies the product sub-sitemap in an index.
const DefaultProductToken = "sitemap_products"

type xmlSitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod"`
		Images  []struct {
			Loc   string `xml:"loc"`
			Title string `xml:"title"`
		} `xml:"image"`
	} `xml:"url"`
}

// errMalformed marks documents that are not well-formed XML.
var errMalformed = errors.New("malformed xml")

// decode unmarshals data into v. Documents declaring a non-UTF-8 encoding are
// transcoded; an encoding that cannot be resolved counts as malformed.
func decode(data []byte, v any) error {
	var charsetErr error
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		r, err := charset.NewReaderLabel(label, input)
		if err != nil {
			charsetErr = err
		}
		return r, err
	}
	err := dec.Decode(v)
	if err == nil {
		return nil
	}
	if charsetErr != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}
	return err
}

// ParseIndex decodes a sitemap index document. Malformed XML is reported as
// crawler.ErrSitemapFetch; a document without a sitemapindex root or without
// entries is crawler.ErrInvalidSitemapIndex.
func ParseIndex(data []byte) (crawler.SitemapIndex, error) {
	var doc xmlSitemapIndex
	if err := decode(data, &doc); err != nil {
		if errors.Is(err, errMalformed) {
			return crawler.SitemapIndex{}, fmt.Errorf("%w: %w", crawler.ErrSitemapFetch, err)
		}
		if errors.Is(err, io.EOF) {
			return crawler.SitemapIndex{}, fmt.Errorf("%w: empty document", crawler.ErrInvalidSitemapIndex)
		}
		return crawler.SitemapIndex{}, fmt.Errorf("%w: %w", crawler.ErrInvalidSitemapIndex, err)
	}
	if len(doc.Sitemaps) == 0 {
		return crawler.SitemapIndex{}, fmt.Errorf("%w: no sitemap entries", crawler.ErrInvalidSitemapIndex)
	}
	index := crawler.SitemapIndex{Sitemaps: make([]crawler.SitemapEntry, 0, len(doc.Sitemaps))}
	for _, s := range doc.Sitemaps {
		index.Sitemaps = append(index.Sitemaps, crawler.SitemapEntry{Loc: strings.TrimSpace(s.Loc)})
	}
	return index, nil
}

// SelectProductSitemap returns the first entry whose location contains token.
func SelectProductSitemap(index crawler.SitemapIndex, token string) (string, error) {
	if token == "" {
		token = DefaultProductToken
	}
	for _, entry := range index.Sitemaps {
		if strings.Contains(entry.Loc, token) {
			return entry.Loc, nil
		}
	}
	return "", fmt.Errorf("%w: no entry contains %q", crawler.ErrProductSitemapNotFound, token)
}

// ParseURLSet decodes a url-set document into entries in document order.
func ParseURLSet(data []byte) ([]crawler.URLSetEntry, error) {
	var doc xmlURLSet
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", crawler.ErrInvalidURLSet, err)
	}
	entries := make([]crawler.URLSetEntry, 0, len(doc.URLs))
	for _, u := range doc.URLs {
		entry := crawler.URLSetEntry{
			Loc:     strings.TrimSpace(u.Loc),
			LastMod: strings.TrimSpace(u.LastMod),
		}
		for _, img := range u.Images {
			entry.Images = append(entry.Images, crawler.ImageEntry{
				Loc:   strings.TrimSpace(img.Loc),
				Title: strings.TrimSpace(img.Title),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FilterProducts keeps eligible entries, maps them to descriptors using the
// first image, and truncates to limit. A non-positive limit uses
// DefaultProductLimit.
func FilterProducts(entries []crawler.URLSetEntry, limit int) []crawler.ProductDescriptor {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	out := make([]crawler.ProductDescriptor, 0, min(limit, len(entries)))
	for _, entry := range entries {
		if len(out) == limit {
			break
		}
		if !entry.Eligible() {
			continue
		}
		out = append(out, crawler.ProductDescriptor{
			Link:       entry.Loc,
			Image:      entry.Images[0].Loc,
			ImageTitle: entry.Images[0].Title,
		})
	}
	return out
}

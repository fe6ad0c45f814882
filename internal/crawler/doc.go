// Package crawler defines the shared types, capability interfaces, and error
// kinds used by the sitemap discovery and product scraping pipeline.
package crawler

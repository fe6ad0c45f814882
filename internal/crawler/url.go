package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeDomain reduces user input such as " https://Example.com/shop " to a
// bare lowercase host ("example.com"). Ports are kept.
func NormalizeDomain(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty domain", ErrInvalidDomain)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: parse %q: %w", ErrInvalidDomain, raw, err)
	}
	host := strings.ToLower(u.Host)
	if host == "" || strings.ContainsAny(host, " \t") {
		return "", fmt.Errorf("%w: no host in %q", ErrInvalidDomain, raw)
	}
	return host, nil
}

// RobotsURL returns the robots.txt location for a normalized domain.
func RobotsURL(domain string) string {
	return (&url.URL{Scheme: "https", Host: domain, Path: "/robots.txt"}).String()
}

package util

import (
	"fmt"
	"net/url"
	"strings"
)

// NormaliseBaseURL ensures a base URL carries a scheme and no trailing
// slash. Bare domains default to https.
func NormaliseBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return strings.TrimSuffix(raw, "/")
}

// ValidateBaseURL checks that a base URL parses with a scheme and host.
// Returns an error describing why the URL is invalid, or nil if valid.
func ValidateBaseURL(raw string) error {
	normalised := NormaliseBaseURL(raw)
	if normalised == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(normalised)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL format: %s", raw)
	}
	return nil
}

// BuildURL joins a base URL and a path, normalising the slash between them.
func BuildURL(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// LooksLikeSitemapURL reports whether a URL points directly at a sitemap
// file rather than a site root.
func LooksLikeSitemapURL(raw string) bool {
	lower := strings.ToLower(raw)
	if !strings.Contains(lower, "sitemap") {
		return false
	}
	return strings.HasSuffix(lower, ".xml") || strings.HasSuffix(lower, ".xml.gz")
}

// ResolveHint resolves a sitemap hint href against a base URL. Absolute
// hrefs pass through unchanged; relative ones are joined the same way
// the discovery probes build their URLs.
func ResolveHint(base, href string) string {
	if strings.Contains(href, "://") {
		return href
	}
	return BuildURL(base, href)
}

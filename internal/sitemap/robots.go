package sitemap

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/rs/zerolog/log"
)

// ParseRobotsDirectives extracts Sitemap directive URLs from robots.txt
// content. Directives match case-insensitively; URLs are returned in file
// order with duplicates kept. Every other directive is ignored.
func ParseRobotsDirectives(content []byte) []string {
	var sitemaps []string

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lowerLine := strings.ToLower(line)
		if strings.HasPrefix(lowerLine, "sitemap:") {
			sitemapURL := strings.TrimSpace(line[8:])
			if sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}

	log.Debug().
		Int("sitemaps", len(sitemaps)).
		Msg("Parsed robots.txt directives")

	return sitemaps
}

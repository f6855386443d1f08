package sitemap

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/oakmoth/sitescout/internal/util"
)

// Probe candidates, most common first. Filenames form the outer loop and
// filetypes the inner, so sitemap.xml, sitemap.xml.gz and sitemap.txt are all
// tried before the next filename.
var (
	probeFilenames = []string{
		"sitemap",
		"sitemap_index",
		"sitemap-index",
		"sitemapindex",
		"sitemap1",
		"sitemap_news",
		"post-sitemap",
		"page-sitemap",
		"wp-sitemap",
	}
	probeFiletypes = []string{"xml", "xml.gz", "txt"}
)

// sitemapContentType reports whether a probe response's content type is
// plausibly a sitemap payload.
func sitemapContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "xml") ||
		strings.Contains(ct, "gzip") ||
		strings.Contains(ct, "plain")
}

// FindSitemapByProbing guesses sitemap locations from a fixed filename and
// filetype enumeration, returning the first URL that answers 2xx with a
// plausible content type. Each candidate gets exactly one attempt since the
// search space is large. A site with no match reports absence, never an
// error, and the discovery cache is not consulted or updated.
func (s *Service) FindSitemapByProbing(ctx context.Context, rawURL string) (string, bool) {
	baseURL := util.NormaliseBaseURL(rawURL)

	policy := DefaultRetryPolicy()
	policy.MaxRetries = 0

	for _, filename := range probeFilenames {
		for _, filetype := range probeFiletypes {
			candidate := util.BuildURL(baseURL, fmt.Sprintf("/%s.%s", filename, filetype))

			result := s.client.Fetch(ctx, candidate, policy)
			if result.Success && sitemapContentType(result.ContentType) {
				log.Debug().
					Str("url", candidate).
					Str("content_type", result.ContentType).
					Msg("Bruteforce probe found sitemap")
				return candidate, true
			}
		}
	}

	log.Debug().
		Str("base_url", baseURL).
		Msg("Bruteforce probe found no sitemap")
	return "", false
}

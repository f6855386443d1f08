package sitemap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/oakmoth/sitescout/internal/cache"
	"github.com/oakmoth/sitescout/internal/util"
)

// Service drives sitemap discovery and collection. Instances are safe for
// concurrent use: per-call state lives in a Collector created inside Collect,
// while the discovery cache is shared across calls for the process lifetime.
type Service struct {
	client *Client
	parser *Parser
	cache  *cache.DiscoveryCache
}

// NewService creates a Service around a retrying fetch client and a shared
// discovery cache.
func NewService(client *Client, discoveryCache *cache.DiscoveryCache) *Service {
	return &Service{
		client: client,
		parser: NewParser(),
		cache:  discoveryCache,
	}
}

// Collect harvests sitemap entries for each base URL in input order. Entries
// arrive in depth-first document order, never deduplicated or sorted. A base
// URL that contributes no entries fails the whole call with partial results
// retained, unless opts.IgnoreErrors records the failure and moves on.
func (s *Service) Collect(ctx context.Context, baseURLs []string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	col := NewCollector()

	for _, rawURL := range baseURLs {
		baseURL := util.NormaliseBaseURL(rawURL)

		entriesBefore := col.EntryCount()
		errorsBefore := col.ErrorCount()

		candidates, _ := s.DiscoverSitemaps(ctx, baseURL, opts)
		for _, candidate := range candidates {
			s.walkSitemap(ctx, col, candidate, opts)
		}

		if col.EntryCount() > entriesBefore {
			log.Debug().
				Str("base_url", baseURL).
				Int("entries", col.EntryCount()-entriesBefore).
				Msg("Collected entries for site")
			continue
		}

		var failure error
		if col.ErrorCount() > errorsBefore {
			failure = fmt.Errorf("failed to collect sitemap entries for %s: %s", baseURL, col.LastError())
		} else {
			failure = fmt.Errorf("no sitemap found for %s", baseURL)
		}

		if opts.IgnoreErrors {
			col.AddError(failure.Error())
			log.Warn().
				Str("base_url", baseURL).
				Err(failure).
				Msg("Continuing past failed site")
			continue
		}

		// Abort but keep what earlier sites contributed
		return &Result{Entries: col.Entries(), Errors: col.Errors()}, failure
	}

	return &Result{Entries: col.Entries(), Errors: col.Errors()}, nil
}

package sitemap

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/oakmoth/sitescout/internal/observability"
	"github.com/oakmoth/sitescout/internal/util"
)

// Discovery strategy labels used in logs and metrics.
const (
	StrategyDirect       = "direct_url"
	StrategyCache        = "cache"
	StrategyRobots       = "robots_txt"
	StrategySitemapXML   = "sitemap_xml"
	StrategySitemapIndex = "sitemap_index_xml"
	StrategyHomepage     = "homepage_html"
	StrategyNone         = "none"
)

// DiscoverSitemaps locates candidate sitemap URLs for a base URL and reports
// whether they came from the cache. A base URL that already names a sitemap
// file is returned as-is without touching the cache; otherwise the discovery
// chain runs behind the cache, so repeat harvests of the same site skip the
// probing. An empty result is never cached, which forces a fresh probe on the
// next call.
func (s *Service) DiscoverSitemaps(ctx context.Context, baseURL string, opts *Options) ([]string, bool) {
	if util.LooksLikeSitemapURL(baseURL) {
		log.Debug().
			Str("base_url", baseURL).
			Msg("Base URL is itself a sitemap")
		observability.RecordDiscovery(ctx, StrategyDirect)
		return []string{baseURL}, false
	}

	urls, fromCache := s.cache.Memoize(baseURL, func() []string {
		return s.runDiscoveryChain(ctx, baseURL, opts)
	})
	if fromCache {
		log.Debug().
			Str("base_url", baseURL).
			Int("count", len(urls)).
			Msg("Discovery served from cache")
		observability.RecordDiscovery(ctx, StrategyCache)
	}

	return urls, fromCache
}

// runDiscoveryChain tries each discovery strategy in priority order and
// returns the first non-empty candidate list.
func (s *Service) runDiscoveryChain(ctx context.Context, baseURL string, opts *Options) []string {
	policy := opts.retryPolicy()

	if opts.FollowRobots {
		robotsURL := util.BuildURL(baseURL, "/robots.txt")
		if result := s.client.Fetch(ctx, robotsURL, policy); result.Success {
			if sitemaps := ParseRobotsDirectives(result.Body); len(sitemaps) > 0 {
				log.Debug().
					Str("base_url", baseURL).
					Int("count", len(sitemaps)).
					Msg("Discovered sitemaps via robots.txt")
				observability.RecordDiscovery(ctx, StrategyRobots)
				return sitemaps
			}
		}
	}

	probes := []struct {
		path     string
		strategy string
	}{
		{"/sitemap.xml", StrategySitemapXML},
		{"/sitemap_index.xml", StrategySitemapIndex},
	}
	for _, probe := range probes {
		candidate := util.BuildURL(baseURL, probe.path)
		if result := s.client.Fetch(ctx, candidate, policy); result.Success {
			log.Debug().
				Str("base_url", baseURL).
				Str("sitemap_url", candidate).
				Msg("Discovered sitemap via conventional path")
			observability.RecordDiscovery(ctx, probe.strategy)
			return []string{candidate}
		}
	}

	if result := s.client.Fetch(ctx, baseURL, policy); result.Success {
		if hints := FindSitemapLinks(result.Body); len(hints) > 0 {
			resolved := make([]string, 0, len(hints))
			for _, hint := range hints {
				resolved = append(resolved, util.ResolveHint(baseURL, hint))
			}
			log.Debug().
				Str("base_url", baseURL).
				Int("count", len(resolved)).
				Msg("Discovered sitemaps via homepage link hints")
			observability.RecordDiscovery(ctx, StrategyHomepage)
			return resolved
		}
	}

	log.Debug().
		Str("base_url", baseURL).
		Msg("No discovery strategy produced a sitemap")
	observability.RecordDiscovery(ctx, StrategyNone)
	return nil
}

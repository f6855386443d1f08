package sitemap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

// FetchResult captures the outcome of a single fetch attempt.
type FetchResult struct {
	StatusCode  int
	Body        []byte
	ContentType string
	RetryAfter  string
	Err         error
	Success     bool
}

// Fetcher performs a single HTTP GET without retrying. Implementations must be
// safe for concurrent use.
type Fetcher interface {
	Fetch(targetURL string) FetchResult
}

// collyFetcher fetches URLs through a shared Colly collector, cloning it per
// request so handlers never leak state between fetches.
type collyFetcher struct {
	config *Config
	colly  *colly.Collector
}

// NewFetcher creates a Fetcher backed by Colly.
// If config is nil, default configuration is used
func NewFetcher(config *Config) Fetcher {
	if config == nil {
		config = DefaultConfig()
	}

	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
	)

	httpClient := &http.Client{
		Timeout: config.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 25,
			MaxConnsPerHost:     50,
			IdleConnTimeout:     120 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
	c.SetClient(httpClient)

	return &collyFetcher{
		config: config,
		colly:  c,
	}
}

// Fetch performs a single GET of targetURL. Every HTTP status produces a
// result; Err is only set for transport-level failures.
func (f *collyFetcher) Fetch(targetURL string) FetchResult {
	result := FetchResult{}

	collyClone := f.colly.Clone()

	collyClone.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

		log.Debug().
			Str("url", r.URL.String()).
			Msg("Fetching sitemap resource")
	})

	collyClone.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.RetryAfter = r.Headers.Get("Retry-After")
		result.Body = append([]byte(nil), r.Body...)
		result.Success = r.StatusCode >= 200 && r.StatusCode < 300
	})

	collyClone.OnError(func(r *colly.Response, err error) {
		result.Err = err
		if r != nil {
			result.StatusCode = r.StatusCode
		}

		log.Debug().
			Err(err).
			Str("url", targetURL).
			Msg("Fetch attempt failed")
	})

	if err := collyClone.Visit(targetURL); err != nil && result.Err == nil && !result.Success {
		result.Err = err
	}

	return result
}

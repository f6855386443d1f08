package sitemap

import (
	"time"
)

// Config holds the configuration for the sitemap fetch client
type Config struct {
	RequestTimeout time.Duration // Timeout applied to each HTTP request
	UserAgent      string        // User agent string for requests
}

// DefaultConfig returns a Config instance with default values
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout: 30 * time.Second,
		UserAgent:      "SiteScout/1.0 (+https://sitescout.dev/pages/about-the-bot)",
	}
}

// Options controls how a harvest runs.
type Options struct {
	FollowRobots   bool          // Whether robots.txt directives are consulted during discovery
	MaxDepth       int           // How many sitemap-index levels to descend
	MaxRetries     int           // Number of retry attempts for retryable fetch failures
	InitialBackoff time.Duration // Delay before the first retry
	MaxBackoff     time.Duration // Upper bound on the exponential backoff delay
	IgnoreErrors   bool          // Record per-site failures and continue instead of aborting
}

// DefaultOptions returns the option set used when a caller passes nil.
func DefaultOptions() *Options {
	return &Options{
		FollowRobots:   true,
		MaxDepth:       3,
		MaxRetries:     5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		IgnoreErrors:   false,
	}
}

// retryPolicy builds the fetch retry policy from the harvest options.
func (o *Options) retryPolicy() RetryPolicy {
	policy := DefaultRetryPolicy()
	policy.MaxRetries = o.MaxRetries
	if o.InitialBackoff > 0 {
		policy.InitialBackoff = o.InitialBackoff
	}
	if o.MaxBackoff > 0 {
		policy.MaxBackoff = o.MaxBackoff
	}
	return policy
}

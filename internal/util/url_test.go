package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormaliseBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare_domain",
			input:    "example.com",
			expected: "https://example.com",
		},
		{
			name:     "with_https",
			input:    "https://example.com",
			expected: "https://example.com",
		},
		{
			name:     "with_http",
			input:    "http://example.com",
			expected: "http://example.com",
		},
		{
			name:     "trailing_slash",
			input:    "https://example.com/",
			expected: "https://example.com",
		},
		{
			name:     "bare_domain_trailing_slash",
			input:    "example.com/",
			expected: "https://example.com",
		},
		{
			name:     "surrounding_whitespace",
			input:    "  example.com  ",
			expected: "https://example.com",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormaliseBaseURL(tt.input))
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid_domain",
			input:   "example.com",
			wantErr: false,
		},
		{
			name:    "valid_full_url",
			input:   "https://example.com/shop",
			wantErr: false,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "scheme_only",
			input:   "https://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		expected string
	}{
		{
			name:     "clean_join",
			base:     "https://example.com",
			path:     "/robots.txt",
			expected: "https://example.com/robots.txt",
		},
		{
			name:     "base_trailing_slash",
			base:     "https://example.com/",
			path:     "/sitemap.xml",
			expected: "https://example.com/sitemap.xml",
		},
		{
			name:     "path_missing_slash",
			base:     "https://example.com",
			path:     "sitemap.xml",
			expected: "https://example.com/sitemap.xml",
		},
		{
			name:     "both_need_fixing",
			base:     "https://example.com/",
			path:     "sitemap_index.xml",
			expected: "https://example.com/sitemap_index.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildURL(tt.base, tt.path))
		})
	}
}

func TestLooksLikeSitemapURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "direct_sitemap",
			input:    "https://example.com/sitemap.xml",
			expected: true,
		},
		{
			name:     "gzipped_sitemap",
			input:    "https://example.com/sitemap.xml.gz",
			expected: true,
		},
		{
			name:     "uppercase",
			input:    "https://example.com/Sitemap.XML",
			expected: true,
		},
		{
			name:     "nested_path",
			input:    "https://example.com/assets/post-sitemap.xml",
			expected: true,
		},
		{
			name:     "xml_without_sitemap_in_name",
			input:    "https://example.com/feed.xml",
			expected: false,
		},
		{
			name:     "sitemap_html_page",
			input:    "https://example.com/sitemap.html",
			expected: false,
		},
		{
			name:     "site_root",
			input:    "https://example.com",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksLikeSitemapURL(tt.input))
		})
	}
}

func TestResolveHint(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		href     string
		expected string
	}{
		{
			name:     "absolute_href",
			base:     "https://example.com",
			href:     "https://cdn.example.com/sitemap.xml",
			expected: "https://cdn.example.com/sitemap.xml",
		},
		{
			name:     "root_relative",
			base:     "https://example.com",
			href:     "/sitemap.xml",
			expected: "https://example.com/sitemap.xml",
		},
		{
			name:     "bare_relative",
			base:     "https://example.com",
			href:     "sitemap.xml",
			expected: "https://example.com/sitemap.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveHint(tt.base, tt.href))
		})
	}
}

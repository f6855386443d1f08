package sitemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_URLSet(t *testing.T) {
	parser := NewParser()

	t.Run("canonical namespace with all fields", func(t *testing.T) {
		data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://example.com/</loc>
    <lastmod>2025-06-01</lastmod>
    <changefreq>daily</changefreq>
    <priority>1.0</priority>
  </url>
  <url>
    <loc>https://example.com/about</loc>
  </url>
</urlset>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		set, ok := doc.(*URLSet)
		require.True(t, ok, "expected a *URLSet, got %T", doc)
		require.Len(t, set.Entries, 2)

		assert.Equal(t, URLEntry{
			URL:        "https://example.com/",
			LastMod:    "2025-06-01",
			ChangeFreq: "daily",
			Priority:   "1.0",
		}, set.Entries[0])
		assert.Equal(t, URLEntry{URL: "https://example.com/about"}, set.Entries[1])
	})

	t.Run("legacy google namespace", func(t *testing.T) {
		data := []byte(`<?xml version="1.0"?>
<urlset xmlns="http://www.google.com/schemas/sitemap/0.84">
  <url><loc>https://example.com/old</loc></url>
</urlset>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		set, ok := doc.(*URLSet)
		require.True(t, ok)
		require.Len(t, set.Entries, 1)
		assert.Equal(t, "https://example.com/old", set.Entries[0].URL)
	})

	t.Run("entries preserve document order", func(t *testing.T) {
		data := []byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/c</loc></url>
  <url><loc>https://example.com/a</loc></url>
  <url><loc>https://example.com/b</loc></url>
  <url><loc>https://example.com/a</loc></url>
</urlset>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		set := doc.(*URLSet)
		var urls []string
		for _, entry := range set.Entries {
			urls = append(urls, entry.URL)
		}
		// Duplicates are kept, nothing is sorted
		assert.Equal(t, []string{
			"https://example.com/c",
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/a",
		}, urls)
	})

	t.Run("entries without loc are dropped", func(t *testing.T) {
		data := []byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><lastmod>2025-01-01</lastmod></url>
  <url><loc>   </loc></url>
  <url><loc>https://example.com/kept</loc></url>
</urlset>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		set := doc.(*URLSet)
		require.Len(t, set.Entries, 1)
		assert.Equal(t, "https://example.com/kept", set.Entries[0].URL)
	})

	t.Run("loc surrounded by whitespace is trimmed", func(t *testing.T) {
		data := []byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>
    https://example.com/padded
  </loc></url>
</urlset>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		set := doc.(*URLSet)
		require.Len(t, set.Entries, 1)
		assert.Equal(t, "https://example.com/padded", set.Entries[0].URL)
	})

	t.Run("namespaces are never merged", func(t *testing.T) {
		data := []byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:g="http://www.google.com/schemas/sitemap/0.84">
  <url><loc>https://example.com/canonical</loc></url>
  <g:url><g:loc>https://example.com/legacy</g:loc></g:url>
</urlset>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		set := doc.(*URLSet)
		require.Len(t, set.Entries, 1)
		assert.Equal(t, "https://example.com/canonical", set.Entries[0].URL)
	})

	t.Run("urlset with no entries", func(t *testing.T) {
		data := []byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		set, ok := doc.(*URLSet)
		require.True(t, ok)
		assert.Empty(t, set.Entries)
	})
}

func TestParseDocument_Index(t *testing.T) {
	parser := NewParser()

	t.Run("canonical namespace", func(t *testing.T) {
		data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-posts.xml</loc></sitemap>
  <sitemap><loc> https://example.com/sitemap-pages.xml </loc></sitemap>
  <sitemap><lastmod>2025-01-01</lastmod></sitemap>
</sitemapindex>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		index, ok := doc.(*Index)
		require.True(t, ok, "expected an *Index, got %T", doc)
		assert.Equal(t, []string{
			"https://example.com/sitemap-posts.xml",
			"https://example.com/sitemap-pages.xml",
		}, index.Children)
	})

	t.Run("legacy google namespace", func(t *testing.T) {
		data := []byte(`<sitemapindex xmlns="http://www.google.com/schemas/sitemap/0.84">
  <sitemap><loc>https://example.com/child.xml</loc></sitemap>
</sitemapindex>`)

		doc, err := parser.ParseDocument(data)
		require.NoError(t, err)

		index := doc.(*Index)
		assert.Equal(t, []string{"https://example.com/child.xml"}, index.Children)
	})
}

func TestParseDocument_Errors(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name string
		data string
	}{
		{"unknown root element", `<rss version="2.0"><channel></channel></rss>`},
		{"malformed xml", `<urlset><url>`},
		{"empty input", ``},
		{"plain text", `this is not xml`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.ParseDocument([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, doc)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
		})
	}

	t.Run("unknown root names the element", func(t *testing.T) {
		_, err := parser.ParseDocument([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown root element: feed")
	})
}

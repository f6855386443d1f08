package sitemap

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// FindSitemapLinks extracts sitemap hints from homepage HTML: the href of
// every <link> whose rel attribute is exactly "sitemap" or "Sitemap". Hrefs
// come back in document order, unresolved. Malformed markup is tolerated.
func FindSitemapLinks(html []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	var hints []string
	doc.Find(`link[rel="sitemap"], link[rel="Sitemap"]`).Each(func(i int, s *goquery.Selection) {
		if href, exists := s.Attr("href"); exists {
			hints = append(hints, href)
		}
	})

	return hints
}

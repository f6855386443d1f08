package sitemap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// workItem is one pending sitemap fetch in the traversal worklist.
type workItem struct {
	url   string
	depth int
}

// walkSitemap traverses the sitemap tree rooted at rootURL, appending every
// entry to col in depth-first document order. An explicit worklist replaces
// recursion so index trees of any shape run in constant stack space.
// Per-sitemap failures are recorded on the collector and never stop sibling
// traversal; items beyond MaxDepth are skipped silently. There is no cycle
// detection beyond the depth bound.
func (s *Service) walkSitemap(ctx context.Context, col *Collector, rootURL string, opts *Options) {
	policy := opts.retryPolicy()

	stack := []workItem{{url: rootURL, depth: 0}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth > opts.MaxDepth {
			log.Debug().
				Str("url", item.url).
				Int("depth", item.depth).
				Msg("Skipping sitemap beyond depth limit")
			continue
		}

		result := s.client.Fetch(ctx, item.url, policy)
		if !result.Success {
			if result.Err != nil {
				col.AddError(fmt.Sprintf("failed to fetch sitemap %s: %v", item.url, result.Err))
			} else {
				col.AddError(fmt.Sprintf("failed to fetch sitemap %s: status %d", item.url, result.StatusCode))
			}
			continue
		}

		body := result.Body
		if IsGzipped(item.url, result.ContentType) {
			decompressed, err := DecompressGzip(body)
			if err != nil {
				col.AddError(fmt.Sprintf("failed to decompress sitemap %s: %v", item.url, err))
				continue
			}
			body = decompressed
		}

		doc, err := s.parser.ParseDocument(body)
		if err != nil {
			col.AddError(fmt.Sprintf("failed to parse sitemap %s: %v", item.url, err))
			continue
		}

		switch doc := doc.(type) {
		case *URLSet:
			col.AddEntries(doc.Entries)
			log.Debug().
				Str("url", item.url).
				Int("entries", len(doc.Entries)).
				Msg("Collected urlset entries")
		case *Index:
			// Push children reversed so pop order matches document order
			for i := len(doc.Children) - 1; i >= 0; i-- {
				stack = append(stack, workItem{url: doc.Children[i], depth: item.depth + 1})
			}
			log.Debug().
				Str("url", item.url).
				Int("children", len(doc.Children)).
				Int("depth", item.depth).
				Msg("Queued sitemap index children")
		}
	}
}

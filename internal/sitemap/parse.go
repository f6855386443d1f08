package sitemap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

const (
	sitemapNamespace       = "http://www.sitemaps.org/schemas/sitemap/0.9"
	legacySitemapNamespace = "http://www.google.com/schemas/sitemap/0.84"
)

// ParseError reports a document that could not be interpreted as a sitemap.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

// Document is a parsed sitemap document. Exactly one concrete variant exists
// per parse: a URLSet of page entries or an Index of child sitemap URLs.
type Document interface {
	isDocument()
}

// URLSet is the leaf document variant listing page URLs.
type URLSet struct {
	Entries []URLEntry
}

// Index is the branch document variant listing child sitemap URLs.
type Index struct {
	Children []string
}

func (*URLSet) isDocument() {}
func (*Index) isDocument()  {}

// namespaceQueries holds the compiled XPath expressions for one namespace.
type namespaceQueries struct {
	children   *xpath.Expr
	urls       *xpath.Expr
	loc        *xpath.Expr
	lastmod    *xpath.Expr
	changefreq *xpath.Expr
	priority   *xpath.Expr
}

// Parser turns fetched bytes into sitemap documents. Create instances with
// NewParser; the compiled expressions are read-only afterwards so a Parser is
// safe for concurrent use.
type Parser struct {
	queries []namespaceQueries
}

// NewParser compiles the query set for the canonical sitemaps.org namespace
// and the legacy Google namespace.
func NewParser() *Parser {
	parser := &Parser{}

	for _, ns := range []string{sitemapNamespace, legacySitemapNamespace} {
		bindings := map[string]string{"sm": ns}
		parser.queries = append(parser.queries, namespaceQueries{
			children:   mustCompileNS("//sm:sitemap/sm:loc", bindings),
			urls:       mustCompileNS("//sm:url", bindings),
			loc:        mustCompileNS("sm:loc", bindings),
			lastmod:    mustCompileNS("sm:lastmod", bindings),
			changefreq: mustCompileNS("sm:changefreq", bindings),
			priority:   mustCompileNS("sm:priority", bindings),
		})
	}

	return parser
}

// mustCompileNS compiles a namespace-bound XPath expression. The expressions
// are fixed strings, so a compile failure is a programming error.
func mustCompileNS(expr string, namespaces map[string]string) *xpath.Expr {
	compiled, err := xpath.CompileWithNS(expr, namespaces)
	if err != nil {
		panic(fmt.Sprintf("compile xpath %q: %v", expr, err))
	}
	return compiled
}

// ParseDocument parses XML bytes into a sitemap Document. The root element's
// local name selects the variant. Entries are read under the canonical
// namespace first and the legacy namespace only when the first matched
// nothing; the two are never merged.
func (p *Parser) ParseDocument(data []byte) (Document, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("malformed XML: %v", err)}
	}

	root := rootElement(doc)
	if root == nil {
		return nil, &ParseError{Msg: "document has no root element"}
	}

	switch root.Data {
	case "sitemapindex":
		return p.parseIndex(doc), nil
	case "urlset":
		return p.parseURLSet(doc), nil
	default:
		return nil, &ParseError{Msg: fmt.Sprintf("unknown root element: %s", root.Data)}
	}
}

// rootElement returns the first element child of the document node.
func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

func (p *Parser) parseIndex(doc *xmlquery.Node) *Index {
	index := &Index{}

	for _, queries := range p.queries {
		nodes := xmlquery.QuerySelectorAll(doc, queries.children)
		if len(nodes) == 0 {
			continue
		}

		for _, node := range nodes {
			child := strings.TrimSpace(node.InnerText())
			if child != "" {
				index.Children = append(index.Children, child)
			}
		}
		break
	}

	return index
}

func (p *Parser) parseURLSet(doc *xmlquery.Node) *URLSet {
	set := &URLSet{}

	for _, queries := range p.queries {
		nodes := xmlquery.QuerySelectorAll(doc, queries.urls)
		if len(nodes) == 0 {
			continue
		}

		for _, node := range nodes {
			entry := URLEntry{
				URL:        strings.TrimSpace(selectText(node, queries.loc)),
				LastMod:    selectText(node, queries.lastmod),
				ChangeFreq: selectText(node, queries.changefreq),
				Priority:   selectText(node, queries.priority),
			}
			if entry.URL == "" {
				// A url element without loc identifies nothing, drop it
				continue
			}
			set.Entries = append(set.Entries, entry)
		}
		break
	}

	return set
}

// selectText evaluates a relative query against node and returns the matched
// element's text, or empty when the element is missing.
func selectText(node *xmlquery.Node, expr *xpath.Expr) string {
	if found := xmlquery.QuerySelector(node, expr); found != nil {
		return found.InnerText()
	}
	return ""
}

package render

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AllowedTags lists every element kept by Sanitize.
var AllowedTags = []string{
	"p", "br", "strong", "em", "u", "s",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li", "blockquote", "pre", "code",
	"a", "img",
	"table", "thead", "tbody", "tr", "th", "td",
	"hr",
}

// AllowedAttributes lists every attribute kept on an allowed element.
var AllowedAttributes = []string{"href", "src", "alt", "title", "target", "rel"}

// policy is built once and only read afterwards.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	p.AllowAttrs(AllowedAttributes...).Globally()
	p.AllowNoAttrs().OnElements("a", "img")
	p.AllowURLSchemes("http", "https", "mailto", "ftp")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	return p
}

var fragmentContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "body",
	DataAtom: atom.Body,
}

// maxPasses bounds the parse and filter loop in Sanitize.
const maxPasses = 16

// Sanitize filters markup through the allow-lists. Disallowed elements are
// unwrapped and keep their text. Raw text and embedding elements (script,
// style, noscript, iframe, object, title and the frame family) are dropped
// together with their content. Disallowed attributes are removed.
//
// Each pass parses the markup into a tree, renders it and filters the result.
// Passes repeat until the output no longer changes, so Sanitize(Sanitize(s))
// equals Sanitize(s) and the output parses back to the same tree.
func Sanitize(markup string) string {
	out := markup
	for range maxPasses {
		if strings.TrimSpace(out) == "" {
			return ""
		}
		next := policy.Sanitize(wellFormed(out))
		if next == out {
			break
		}
		out = next
	}
	if strings.TrimSpace(out) == "" {
		return ""
	}
	return out
}

// wellFormed parses markup as a body fragment and renders the resulting tree,
// closing unbalanced tags and dropping stray end tags along the way.
func wellFormed(markup string) string {
	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext)
	if err != nil {
		return html.EscapeString(markup)
	}
	var buf bytes.Buffer
	for _, node := range nodes {
		if err := html.Render(&buf, node); err != nil {
			return html.EscapeString(markup)
		}
	}
	return buf.String()
}

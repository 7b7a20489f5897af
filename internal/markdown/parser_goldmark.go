package markdown

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter turns markdown into markup and back. It is stateless and safe
// for concurrent use.
type Converter struct {
	engine goldmark.Markdown
}

// NewConverter builds a Converter with the named goldmark extensions. No
// names enables GFM, linkify and task lists. Unknown names are ignored.
func NewConverter(extensions ...string) *Converter {
	return &Converter{
		engine: goldmark.New(
			goldmark.WithExtensions(collectExtensions(extensions)...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
	}
}

// ToHTML renders markdown as markup. Raw HTML in the source is omitted;
// the manual renderer sanitizes the result again on display.
func (c *Converter) ToHTML(markdown []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.engine.Convert(markdown, &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// ToMarkdown converts markup back to markdown.
func (c *Converter) ToMarkdown(markup string) (string, error) {
	out, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("html to markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

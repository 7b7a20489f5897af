package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText returns the readable text of content with markup removed. Plain
// dialect content is flattened block by block.
func PlainText(content string) string {
	if !IsMarkup(content) {
		return blocksText(Normalize(content))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Sanitize(content)))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func blocksText(blocks []Block) string {
	w := &textWriter{}
	for _, b := range blocks {
		b.Accept(w)
	}
	return strings.Join(w.parts, " ")
}

type textWriter struct {
	parts []string
}

func (w *textWriter) VisitHeading(h Heading)       { w.parts = append(w.parts, h.Text) }
func (w *textWriter) VisitParagraph(p Paragraph)   { w.parts = append(w.parts, p.Text) }
func (w *textWriter) VisitBulletList(l BulletList) { w.parts = append(w.parts, l.Items...) }

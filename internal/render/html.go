package render

import (
	"strings"

	"golang.org/x/net/html"
)

// BlocksHTML renders blocks as markup. Block text is escaped, so the result
// needs no further sanitizing.
func BlocksHTML(blocks []Block) string {
	w := &htmlWriter{}
	for _, b := range blocks {
		b.Accept(w)
	}
	return w.String()
}

type htmlWriter struct {
	strings.Builder
}

func (w *htmlWriter) VisitHeading(h Heading) {
	w.WriteString("<h3>")
	w.WriteString(html.EscapeString(h.Text))
	w.WriteString("</h3>")
}

func (w *htmlWriter) VisitParagraph(p Paragraph) {
	w.WriteString("<p>")
	w.WriteString(html.EscapeString(p.Text))
	w.WriteString("</p>")
}

func (w *htmlWriter) VisitBulletList(l BulletList) {
	w.WriteString("<ul>")
	for _, item := range l.Items {
		w.WriteString("<li>")
		w.WriteString(html.EscapeString(item))
		w.WriteString("</li>")
	}
	w.WriteString("</ul>")
}

package render

import "encoding/json"

// Block is a structured unit of output produced from the plain-text dialect.
// The set of implementations is closed: Heading, Paragraph and BulletList.
type Block interface {
	// Accept dispatches the block to the matching visitor method.
	Accept(v BlockVisitor)
	block()
}

// BlockVisitor must handle every block kind. Adding a block kind adds a
// method here, so every renderer fails to compile until it handles it.
type BlockVisitor interface {
	VisitHeading(Heading)
	VisitParagraph(Paragraph)
	VisitBulletList(BulletList)
}

// BlockType names a block kind on the wire.
type BlockType string

const (
	BlockHeading    BlockType = "heading"
	BlockParagraph  BlockType = "paragraph"
	BlockBulletList BlockType = "bullet_list"
)

// Heading is a line wrapped in bold markers.
type Heading struct {
	Text string
}

// Paragraph is a single non-blank line of text.
type Paragraph struct {
	Text string
}

// BulletList groups consecutive list lines.
type BulletList struct {
	Items []string
}

func (Heading) block()    {}
func (Paragraph) block()  {}
func (BulletList) block() {}

func (h Heading) Accept(v BlockVisitor)    { v.VisitHeading(h) }
func (p Paragraph) Accept(v BlockVisitor)  { v.VisitParagraph(p) }
func (l BulletList) Accept(v BlockVisitor) { v.VisitBulletList(l) }

type blockJSON struct {
	Type  BlockType `json:"type"`
	Text  string    `json:"text,omitempty"`
	Items []string  `json:"items,omitempty"`
}

func (h Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(blockJSON{Type: BlockHeading, Text: h.Text})
}

func (p Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(blockJSON{Type: BlockParagraph, Text: p.Text})
}

func (l BulletList) MarshalJSON() ([]byte, error) {
	items := l.Items
	if items == nil {
		items = []string{}
	}
	return json.Marshal(struct {
		Type  BlockType `json:"type"`
		Items []string  `json:"items"`
	}{Type: BlockBulletList, Items: items})
}

// TypeOf reports the wire name of a block.
func TypeOf(b Block) BlockType {
	var t typeVisitor
	b.Accept(&t)
	return t.kind
}

type typeVisitor struct {
	kind BlockType
}

func (t *typeVisitor) VisitHeading(Heading)       { t.kind = BlockHeading }
func (t *typeVisitor) VisitParagraph(Paragraph)   { t.kind = BlockParagraph }
func (t *typeVisitor) VisitBulletList(BulletList) { t.kind = BlockBulletList }

package manual

import "github.com/goliatone/go-manual/internal/render"

// Content rendering types exposed to hosts that display manual entries.
type (
	RenderOutput = render.Output
	RenderKind   = render.Kind
	Block        = render.Block
	BlockType    = render.BlockType
	Heading      = render.Heading
	Paragraph    = render.Paragraph
	BulletList   = render.BulletList
)

const (
	RenderKindBlocks = render.KindBlocks
	RenderKindHTML   = render.KindHTML

	BlockHeading    = render.BlockHeading
	BlockParagraph  = render.BlockParagraph
	BlockBulletList = render.BlockBulletList
)

// IsMarkup reports whether content should be treated as HTML markup rather
// than the plain manual dialect.
func IsMarkup(content string) bool {
	return render.IsMarkup(content)
}

// NormalizeContent turns plain dialect content into display blocks.
func NormalizeContent(content string) []Block {
	return render.Normalize(content)
}

// SanitizeMarkup removes unsafe tags and attributes from markup.
func SanitizeMarkup(content string) string {
	return render.Sanitize(content)
}

// Render classifies content and returns blocks or sanitized markup.
func Render(content string) RenderOutput {
	return render.Render(content)
}

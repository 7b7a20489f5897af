package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-manual/internal/validation"
	"gopkg.in/yaml.v3"
)

const frontMatterSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title": {"type": "string", "maxLength": 255},
    "slug": {"type": "string", "maxLength": 255, "pattern": "^[^/\\\\]*$"},
    "description": {"type": "string", "maxLength": 2000},
    "order": {"type": "integer", "minimum": 0},
    "format": {"type": "string", "pattern": "(?i)^(text|markdown|md|html)$"}
  }
}`

var frontMatterValidator = validation.MustCompileSchema("frontmatter.json", []byte(frontMatterSchema))

// Body formats understood in frontmatter.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// FrontMatter is the metadata block of a category or item file.
type FrontMatter struct {
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Slug        string `yaml:"slug,omitempty" json:"slug,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Order       *int   `yaml:"order,omitempty" json:"order,omitempty"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Rank returns Order or fallback when it is unset.
func (f FrontMatter) Rank(fallback int) int {
	if f.Order == nil {
		return fallback
	}
	return *f.Order
}

// NormalizedFormat lowercases Format and maps unknown values to FormatText.
func (f FrontMatter) NormalizedFormat() string {
	switch strings.ToLower(strings.TrimSpace(f.Format)) {
	case FormatMarkdown, "md":
		return FormatMarkdown
	case FormatHTML:
		return FormatHTML
	default:
		return FormatText
	}
}

// ParseFrontMatter splits source into its metadata and body. Files without
// a frontmatter block yield zero metadata and the whole source as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Slug = strings.TrimSpace(meta.Slug)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Format = strings.TrimSpace(meta.Format)
	if err := ValidateFrontMatter(meta); err != nil {
		return FrontMatter{}, nil, err
	}
	return meta, body, nil
}

// ValidateFrontMatter rejects slugs containing path separators, negative
// orders and unknown formats.
func ValidateFrontMatter(meta FrontMatter) error {
	return frontMatterValidator.Validate("frontmatter", meta)
}

// EncodeDocument renders meta as a YAML frontmatter block followed by body.
func EncodeDocument(meta FrontMatter, body string) ([]byte, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n")
	if body = strings.TrimSpace(body); body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

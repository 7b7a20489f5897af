// Package markdown moves the manual to and from a directory of markdown
// files. Each subdirectory is a category, described by an optional
// _category.md file, and every other *.md file inside it is an item.
//
// Item files carry YAML frontmatter (title, slug, order, format). Bodies with
// format "markdown" are converted to markup with goldmark on import and back
// with html-to-markdown on export; any other body is stored as the plain
// text dialect unchanged.
package markdown

package render

import (
	"regexp"
	"strings"
)

const headingMarker = "**"

var numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)

type listMode int

const (
	listIdle listMode = iota
	listDash
	listNumbered
)

// accumulator is the fold state of Normalize: the blocks emitted so far plus
// the pending list, if any.
type accumulator struct {
	blocks  []Block
	mode    listMode
	pending []string
}

func (a accumulator) flush() accumulator {
	if a.mode == listIdle {
		return a
	}
	a.blocks = append(a.blocks, BulletList{Items: a.pending})
	a.pending = nil
	a.mode = listIdle
	return a
}

func (a accumulator) emit(b Block) accumulator {
	a = a.flush()
	a.blocks = append(a.blocks, b)
	return a
}

// push appends an item to the pending list. A dash item joins whatever list
// is open; a numbered item closes a pending dash list first.
func (a accumulator) push(mode listMode, item string) accumulator {
	switch {
	case a.mode == listIdle:
		a.mode = mode
	case mode == listNumbered && a.mode == listDash:
		a = a.flush()
		a.mode = mode
	}
	a.pending = append(a.pending, item)
	return a
}

// Normalize converts the plain-text dialect into blocks in a single forward
// pass over the lines of content.
func Normalize(content string) []Block {
	acc := accumulator{}
	for _, line := range strings.Split(content, "\n") {
		acc = step(acc, strings.TrimSpace(line))
	}
	acc = acc.flush()
	if acc.blocks == nil {
		return []Block{}
	}
	return acc.blocks
}

func step(acc accumulator, line string) accumulator {
	switch {
	case line == "":
		return acc.flush()
	case isHeading(line):
		return acc.emit(Heading{Text: line[len(headingMarker) : len(line)-len(headingMarker)]})
	case strings.HasPrefix(line, "-"):
		return acc.push(listDash, strings.TrimSpace(line[1:]))
	case numberedPrefix.MatchString(line):
		return acc.push(listNumbered, numberedPrefix.ReplaceAllString(line, ""))
	default:
		return acc.emit(Paragraph{Text: line})
	}
}

func isHeading(line string) bool {
	return len(line) > 2*len(headingMarker) &&
		strings.HasPrefix(line, headingMarker) &&
		strings.HasSuffix(line, headingMarker)
}

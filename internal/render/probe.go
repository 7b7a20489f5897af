package render

import "regexp"

// tagPattern matches `<`, an optional `/`, a tag name, optional attributes and
// the closing `>`. A tag name has to follow `<` directly, which keeps
// comparisons such as "a < b > c" out. Quoted attribute values may contain
// `<` and `>`.
var tagPattern = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9:-]*(?:\s(?:"[^"]*"|'[^']*'|[^<>])*)?/?>`)

// IsMarkup reports whether content looks like markup. It is a heuristic: it
// never balances tags and a single tag-like sequence anywhere is enough.
func IsMarkup(content string) bool {
	if content == "" {
		return false
	}
	return tagPattern.MatchString(content)
}

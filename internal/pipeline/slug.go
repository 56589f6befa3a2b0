package pipeline

import (
	"regexp"
	"strings"
)

// Whitespace for slugs: ASCII spaces, Unicode space separators, the line
// and paragraph separators and the byte order mark.
const unicodeSpace = `\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	slugDisallowed = regexp.MustCompile(`[^\w` + unicodeSpace + `-]`)
	slugSpaces     = regexp.MustCompile(`[` + unicodeSpace + `]+`)
)

// Slugify converts text to a lowercase, hyphen-separated anchor id.
// Characters other than ASCII word characters, whitespace and hyphens are
// dropped and every whitespace run, non-breaking spaces included, becomes a
// single hyphen. Uniqueness is the caller's problem: equal headings yield
// equal slugs.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugDisallowed.ReplaceAllString(s, "")
	return slugSpaces.ReplaceAllString(s, "-")
}

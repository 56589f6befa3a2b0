package enhance

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a translation target.
type Language struct {
	Code     string // BCP 47 tag
	Name     string // English name, used in prompts
	SelfName string // name in the language itself
}

// suggested are the languages listed by the CLI.
var suggested = []string{"en", "es", "fr", "de", "zh", "ja", "pt"}

// ParseLanguage validates a BCP 47 tag and resolves its display names.
func ParseLanguage(code string) (Language, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Language{}, fmt.Errorf("%w: empty language code", ErrUnsupportedLanguage)
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedLanguage, code, err)
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return Language{}, fmt.Errorf("%w: %q has no known name", ErrUnsupportedLanguage, code)
	}
	return Language{Code: tag.String(), Name: name, SelfName: display.Self.Name(tag)}, nil
}

// Languages returns the suggested translation targets in display order.
func Languages() []Language {
	out := make([]Language, 0, len(suggested))
	for _, code := range suggested {
		if l, err := ParseLanguage(code); err == nil {
			out = append(out, l)
		}
	}
	return out
}

package layout

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2site/internal/theme"
)

// token is a layout colour variable and the palette field feeding it.
type token struct {
	name     string
	value    func(theme.Palette) string
	fallback string
}

// Fallbacks apply per token, so a partial palette still renders.
var tokens = []token{
	{"--primary", func(p theme.Palette) string { return p.Primary }, "#667EEA"},
	{"--secondary", func(p theme.Palette) string { return p.Secondary }, "#764BA2"},
	{"--text", func(p theme.Palette) string { return p.TextPrimary }, "#1F2937"},
	{"--text-light", func(p theme.Palette) string { return p.TextMuted }, "#6B7280"},
	{"--bg", func(p theme.Palette) string { return p.BgDark }, "#FFFFFF"},
	{"--bg-secondary", func(p theme.Palette) string { return p.BgDarker }, "#F9FAFB"},
	{"--border", func(p theme.Palette) string { return p.Border }, "#E5E7EB"},
}

// rootRule renders the :root block. A nil palette yields the fallback colours.
// The full palette is appended under its own names so custom stylesheets
// can reach every token.
func rootRule(p *theme.Palette) string {
	var sb strings.Builder
	sb.WriteString(":root {\n")
	for _, t := range tokens {
		val := t.fallback
		if p != nil {
			if v := t.value(*p); v != "" {
				val = v
			}
		}
		fmt.Fprintf(&sb, "%s: %s;\n", t.name, val)
	}
	if p != nil {
		sb.WriteString(p.CSSVariables())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// stylesheet concatenates the colour tokens, base rules and layout rules.
func (e *Engine) stylesheet(name string) (string, error) {
	base, err := e.loader.LoadStyle("base")
	if err != nil {
		return "", fmt.Errorf("%w: base: %v", ErrAssetLoad, err)
	}
	specific, err := e.loader.LoadStyle(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetLoad, name, err)
	}
	return rootRule(e.opts.Palette) + base + "\n" + specific, nil
}

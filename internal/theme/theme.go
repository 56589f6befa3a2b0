// Package theme holds the named colour palettes a site can be rendered with.
package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultName is the palette used when none is configured.
const DefaultName = "dark"

var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrUnknownColor = errors.New("unknown colour key")
)

// Palette is a named set of colour tokens.
type Palette struct {
	Name          string // display name
	Primary       string
	Secondary     string
	BgDark        string
	BgDarker      string
	BgCard        string
	BgCardHover   string
	TextPrimary   string
	TextSecondary string
	TextMuted     string
	Border        string
}

// Color is one token of a palette, keyed by its camelCase name.
type Color struct {
	Key   string
	Value string
}

var palettes = map[string]Palette{
	"dark": {
		Name: "Dark", Primary: "#667EEA", Secondary: "#764BA2",
		BgDark: "#0F1117", BgDarker: "#0A0B0F", BgCard: "#1A1B23", BgCardHover: "#22232E",
		TextPrimary: "#F9FAFB", TextSecondary: "#D1D5DB", TextMuted: "#6B7280",
		Border: "rgba(255, 255, 255, 0.1)",
	},
	"light": {
		Name: "Light", Primary: "#667EEA", Secondary: "#764BA2",
		BgDark: "#FFFFFF", BgDarker: "#F9FAFB", BgCard: "#FFFFFF", BgCardHover: "#F3F4F6",
		TextPrimary: "#111827", TextSecondary: "#374151", TextMuted: "#6B7280",
		Border: "rgba(0, 0, 0, 0.1)",
	},
	"ocean": {
		Name: "Ocean", Primary: "#0EA5E9", Secondary: "#06B6D4",
		BgDark: "#0C1222", BgDarker: "#070B15", BgCard: "#1A2332", BgCardHover: "#243447",
		TextPrimary: "#F0F9FF", TextSecondary: "#BAE6FD", TextMuted: "#7DD3FC",
		Border: "rgba(14, 165, 233, 0.2)",
	},
	"forest": {
		Name: "Forest", Primary: "#10B981", Secondary: "#059669",
		BgDark: "#0A1F15", BgDarker: "#051810", BgCard: "#1A2F23", BgCardHover: "#244032",
		TextPrimary: "#ECFDF5", TextSecondary: "#A7F3D0", TextMuted: "#6EE7B7",
		Border: "rgba(16, 185, 129, 0.2)",
	},
	"sunset": {
		Name: "Sunset", Primary: "#F59E0B", Secondary: "#EF4444",
		BgDark: "#1F1108", BgDarker: "#150A05", BgCard: "#2F1F18", BgCardHover: "#3F2A20",
		TextPrimary: "#FEF3C7", TextSecondary: "#FDE68A", TextMuted: "#FCD34D",
		Border: "rgba(245, 158, 11, 0.2)",
	},
}

var order = []string{"dark", "light", "ocean", "forest", "sunset"}

// Names returns the palette names in display order.
func Names() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Lookup returns the palette registered under name (case-insensitive).
func Lookup(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Palette{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTheme, name, strings.Join(order, ", "))
	}
	return p, nil
}

// Default returns the dark palette.
func Default() Palette {
	return palettes[DefaultName]
}

// Colors returns the palette tokens in a stable order.
func (p Palette) Colors() []Color {
	return []Color{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"bgDark", p.BgDark},
		{"bgDarker", p.BgDarker},
		{"bgCard", p.BgCard},
		{"bgCardHover", p.BgCardHover},
		{"textPrimary", p.TextPrimary},
		{"textSecondary", p.TextSecondary},
		{"textMuted", p.TextMuted},
		{"border", p.Border},
	}
}

// WithOverrides returns a copy of p with the given camelCase tokens replaced.
// Unknown keys are rejected.
func (p Palette) WithOverrides(overrides map[string]string) (Palette, error) {
	for key, val := range overrides {
		field := p.field(key)
		if field == nil {
			return Palette{}, fmt.Errorf("%w: %q", ErrUnknownColor, key)
		}
		*field = val
	}
	return p, nil
}

func (p *Palette) field(key string) *string {
	switch key {
	case "primary":
		return &p.Primary
	case "secondary":
		return &p.Secondary
	case "bgDark":
		return &p.BgDark
	case "bgDarker":
		return &p.BgDarker
	case "bgCard":
		return &p.BgCard
	case "bgCardHover":
		return &p.BgCardHover
	case "textPrimary":
		return &p.TextPrimary
	case "textSecondary":
		return &p.TextSecondary
	case "textMuted":
		return &p.TextMuted
	case "border":
		return &p.Border
	}
	return nil
}

var upper = regexp.MustCompile(`([A-Z])`)

// CSSName converts a camelCase token key to a CSS custom property name.
func CSSName(key string) string {
	return "--" + strings.ToLower(upper.ReplaceAllString(key, "-$1"))
}

// CSSVariables renders every token as a custom property declaration,
// one per line, for use inside a :root rule.
func (p Palette) CSSVariables() string {
	var sb strings.Builder
	for _, c := range p.Colors() {
		if c.Value == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s;\n", CSSName(c.Key), c.Value)
	}
	return sb.String()
}

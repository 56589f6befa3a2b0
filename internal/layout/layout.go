// Package layout assembles parsed pages into a complete, standalone HTML
// document using one of five layouts.
//
// Layouts differ in navigation markup, stylesheet and wrapper classes. Page
// bodies are always produced by the injected pipeline.Renderer, and colours
// come from an explicit theme.Palette rather than ambient state.
package layout

// Layout names.
const (
	Modern    = "modern"
	Minimal   = "minimal"
	Technical = "technical"
	Blog      = "blog"
	Wiki      = "wiki"
)

// Default is used for empty and unrecognized layout names.
const Default = Modern

// DefaultTitle is the document title when none is configured.
const DefaultTitle = "Documentation"

// Info describes a layout for listings.
type Info struct {
	Name        string
	Title       string
	Description string
}

var layouts = []Info{
	{Modern, "Modern", "Clean, modern design with sidebar navigation"},
	{Minimal, "Minimal", "Minimalist design focused on content"},
	{Technical, "Technical", "Technical documentation with code highlighting"},
	{Blog, "Blog Style", "Blog-like layout with featured content"},
	{Wiki, "Wiki", "Wikipedia-style knowledge base"},
}

// Layouts returns the available layouts in display order.
func Layouts() []Info {
	out := make([]Info, len(layouts))
	copy(out, layouts)
	return out
}

// Known reports whether name is one of the five layouts.
func Known(name string) bool {
	for _, l := range layouts {
		if l.Name == name {
			return true
		}
	}
	return false
}

// Resolve maps name to a layout, falling back to modern.
// Matching is exact: "Blog" is not a layout name and renders as modern.
func Resolve(name string) string {
	if Known(name) {
		return name
	}
	return Default
}

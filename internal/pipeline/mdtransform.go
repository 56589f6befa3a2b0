package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Precompiled regex patterns for the rendering passes.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	h3Line = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Line = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Line = regexp.MustCompile(`(?m)^# (.+)$`)

	boldStars      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderscore = regexp.MustCompile(`__(.+?)__`)

	italicStar       = regexp.MustCompile(`\*(.+?)\*`)
	italicUnderscore = regexp.MustCompile(`_(.+?)_`)

	// Language tag is captured and dropped.
	fencedCode = regexp.MustCompile("(?s)```(\\w+)?\\n(.+?)```")
	inlineCode = regexp.MustCompile("`(.+?)`")

	link = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)

	quoteLine = regexp.MustCompile(`(?m)^> (.+)$`)

	starItem = regexp.MustCompile(`(?m)^\* (.+)$`)
	dashItem = regexp.MustCompile(`(?m)^- (.+)$`)
	itemRun  = regexp.MustCompile(`(?m)^<li>.*</li>(?:\n<li>.*</li>)*$`)

	orderedItem = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	orderedRun  = regexp.MustCompile(`(?m)^\d+\. .+$(?:\n\d+\. .+$)*`)

	adjacentUL = regexp.MustCompile(`</ul>\s*<ul>`)
	adjacentOL = regexp.MustCompile(`</ol>\s*<ol>`)
)

// blockPrefixes are the line starts that the paragraph pass leaves alone.
var blockPrefixes = []string{"<h", "<u", "<p", "<o", "<l", "<blockquote", "```", ">"}

// Renderer converts Markdown text to an HTML fragment.
type Renderer interface {
	Render(ctx context.Context, markdown string) (string, error)
}

// Pass is one named substitution step of the regex renderer.
type Pass struct {
	Name  string
	Apply func(string) string
}

// RegexRendererOptions tunes the regex renderer.
type RegexRendererOptions struct {
	// WrapOrderedLists wraps runs of numbered items in <ol>.
	// When false, numbered items are emitted as bare <li> elements.
	WrapOrderedLists bool
}

// RegexRenderer converts Markdown through an ordered list of regex passes.
// Later passes see the HTML produced by earlier ones, so order is part of
// the contract. It never fails on malformed input.
type RegexRenderer struct {
	passes []Pass
}

// Compile-time interface check.
var _ Renderer = (*RegexRenderer)(nil)

// NewRegexRenderer creates a RegexRenderer with the standard pass order.
func NewRegexRenderer(opts RegexRendererOptions) *RegexRenderer {
	return &RegexRenderer{passes: buildPasses(opts)}
}

// Passes returns a copy of the pass list in application order.
func (r *RegexRenderer) Passes() []Pass {
	out := make([]Pass, len(r.passes))
	copy(out, r.passes)
	return out
}

// Render applies every pass to markdown. The context is checked once up front;
// the passes themselves are not interruptible.
func (r *RegexRenderer) Render(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.apply(markdown), nil
}

func (r *RegexRenderer) apply(markdown string) string {
	out := markdown
	for _, p := range r.passes {
		out = p.Apply(out)
	}
	return out
}

var defaultRenderer = NewRegexRenderer(RegexRendererOptions{})

// RenderMarkdown renders markdown with the default regex renderer.
func RenderMarkdown(markdown string) string {
	return defaultRenderer.apply(markdown)
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

func buildPasses(opts RegexRendererOptions) []Pass {
	ordered := renderOrderedItems
	if opts.WrapOrderedLists {
		ordered = renderOrderedLists
	}

	return []Pass{
		{Name: "headings", Apply: renderHeadings},
		{Name: "bold", Apply: renderBold},
		{Name: "italic", Apply: renderItalic},
		{Name: "fenced-code", Apply: renderFencedCode},
		{Name: "inline-code", Apply: renderInlineCode},
		{Name: "links", Apply: renderLinks},
		{Name: "blockquotes", Apply: renderBlockquotes},
		{Name: "unordered-lists", Apply: renderUnorderedLists},
		{Name: "ordered-lists", Apply: ordered},
		{Name: "paragraphs", Apply: renderParagraphs},
		{Name: "cleanup", Apply: collapseAdjacentLists},
	}
}

// renderHeadings must run ### before ## before # so shorter prefixes
// do not swallow deeper headings.
func renderHeadings(s string) string {
	s = h3Line.ReplaceAllString(s, "<h3>${1}</h3>")
	s = h2Line.ReplaceAllString(s, "<h2>${1}</h2>")
	return h1Line.ReplaceAllString(s, "<h1>${1}</h1>")
}

func renderBold(s string) string {
	s = boldStars.ReplaceAllString(s, "<strong>${1}</strong>")
	return boldUnderscore.ReplaceAllString(s, "<strong>${1}</strong>")
}

func renderItalic(s string) string {
	s = italicStar.ReplaceAllString(s, "<em>${1}</em>")
	return italicUnderscore.ReplaceAllString(s, "<em>${1}</em>")
}

func renderFencedCode(s string) string {
	return fencedCode.ReplaceAllString(s, "<pre><code>${2}</code></pre>")
}

func renderInlineCode(s string) string {
	return inlineCode.ReplaceAllString(s, "<code>${1}</code>")
}

func renderLinks(s string) string {
	return link.ReplaceAllString(s, `<a href="${2}">${1}</a>`)
}

func renderBlockquotes(s string) string {
	return quoteLine.ReplaceAllString(s, "<blockquote>${1}</blockquote>")
}

func renderUnorderedLists(s string) string {
	s = starItem.ReplaceAllString(s, "<li>${1}</li>")
	s = dashItem.ReplaceAllString(s, "<li>${1}</li>")
	return itemRun.ReplaceAllStringFunc(s, func(run string) string {
		return "<ul>" + run + "</ul>"
	})
}

func renderOrderedItems(s string) string {
	return orderedItem.ReplaceAllString(s, "<li>${1}</li>")
}

func renderOrderedLists(s string) string {
	return orderedRun.ReplaceAllStringFunc(s, func(run string) string {
		return "<ol>" + renderOrderedItems(run) + "</ol>"
	})
}

// Markers emitted by the fenced-code pass.
const (
	codeBlockOpen  = "<pre><code>"
	codeBlockClose = "</code></pre>"
)

// renderParagraphs wraps plain lines in <p>. Lines inside a code block
// produced by the fenced-code pass are left as they are. A <pre> written in
// prose or inline code does not open a block.
func renderParagraphs(s string) string {
	lines := strings.Split(s, "\n")
	inCode := false
	for i, line := range lines {
		if !inCode && line != "" && !hasBlockPrefix(line) {
			lines[i] = "<p>" + line + "</p>"
		}
		switch {
		case inCode:
			inCode = !strings.Contains(line, codeBlockClose)
		case strings.HasPrefix(line, codeBlockOpen):
			inCode = !strings.Contains(line[len(codeBlockOpen):], codeBlockClose)
		}
	}
	return strings.Join(lines, "\n")
}

func hasBlockPrefix(line string) bool {
	for _, prefix := range blockPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func collapseAdjacentLists(s string) string {
	s = adjacentUL.ReplaceAllString(s, "")
	return adjacentOL.ReplaceAllString(s, "")
}

package enhance

import (
	"context"
	"strings"
)

// Options selects what Enhance asks for.
type Options struct {
	ImproveStructure bool `yaml:"improveStructure"`
	AddExamples      bool `yaml:"addExamples"`
	EnhanceClarity   bool `yaml:"enhanceClarity"`
	AddTOC           bool `yaml:"addTOC"`
}

// DefaultOptions asks for structure, examples and clarity, without a TOC.
func DefaultOptions() Options {
	return Options{ImproveStructure: true, AddExamples: true, EnhanceClarity: true}
}

type prompt struct {
	system      string
	user        string
	temperature float64
	maxTokens   int
}

// BuildEnhancementPrompt returns the user message sent by Enhance.
func BuildEnhancementPrompt(markdown string, opts Options) string {
	var sb strings.Builder
	sb.WriteString("Please enhance the following markdown documentation:\n\n")
	sb.WriteString(markdown)
	sb.WriteString("\n\nEnhancement requirements:\n")
	if opts.ImproveStructure {
		sb.WriteString("- Improve heading structure and organization\n")
	}
	if opts.AddExamples {
		sb.WriteString("- Add relevant code examples where appropriate\n")
	}
	if opts.EnhanceClarity {
		sb.WriteString("- Improve clarity and readability\n")
		sb.WriteString("- Fix grammar and spelling\n")
	}
	if opts.AddTOC {
		sb.WriteString("- Add a table of contents\n")
	}
	sb.WriteString("\nReturn only the enhanced markdown, no explanations.")
	return sb.String()
}

// Enhance rewrites markdown for structure and clarity.
func (c *Client) Enhance(ctx context.Context, markdown string, opts Options) (string, error) {
	return c.complete(ctx, prompt{
		system:      "You are a technical documentation expert. Enhance and improve documentation while maintaining accuracy and clarity.",
		user:        BuildEnhancementPrompt(markdown, opts),
		temperature: 0.7,
		maxTokens:   2000,
	})
}

// Summarize returns a two to three sentence summary.
func (c *Client) Summarize(ctx context.Context, markdown string) (string, error) {
	return c.complete(ctx, prompt{
		system:      "You are a technical writer. Create concise summaries of documentation.",
		user:        "Summarize this documentation in 2-3 sentences:\n\n" + markdown,
		temperature: 0.5,
		maxTokens:   150,
	})
}

// ImproveHeadings rewrites headings to be more descriptive.
func (c *Client) ImproveHeadings(ctx context.Context, markdown string) (string, error) {
	return c.complete(ctx, prompt{
		system:      "You improve documentation headings to be more descriptive and SEO-friendly.",
		user:        "Improve the headings in this markdown to be more descriptive:\n\n" + markdown + "\n\nReturn only the markdown with improved headings.",
		temperature: 0.7,
		maxTokens:   1500,
	})
}

// Translate translates markdown into the language named by a BCP 47 tag.
func (c *Client) Translate(ctx context.Context, markdown, lang string) (string, error) {
	l, err := ParseLanguage(lang)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, prompt{
		system:      "You are a professional translator. Translate technical documentation to " + l.Name + " while preserving markdown formatting and code blocks.",
		user:        "Translate this documentation to " + l.Name + ":\n\n" + markdown + "\n\nKeep all markdown formatting, code blocks, and technical terms accurate.",
		temperature: 0.3,
		maxTokens:   3000,
	})
}

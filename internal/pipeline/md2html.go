package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates goldmark failed to render a page.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// GoldmarkRenderer renders Markdown with goldmark (GFM, footnotes, chroma
// highlighting). Heading ids use Slugify so navigation anchors resolve.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// Compile-time interface check.
var _ Renderer = (*GoldmarkRenderer)(nil)

// NewGoldmarkRenderer creates a GoldmarkRenderer.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline colours, the site has no external stylesheet
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &GoldmarkRenderer{md: md}
}

// Render converts markdown to an HTML fragment.
// Goldmark has no context support, so conversion runs in a goroutine and the
// caller stops waiting on cancellation.
func (r *GoldmarkRenderer) Render(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		pctx := parser.NewContext(parser.WithIDs(slugIDs{}))
		if err := r.md.Convert([]byte(markdown), &buf, parser.WithContext(pctx)); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// slugIDs implements parser.IDs with Slugify and no de-duplication,
// matching the ids the parser assigns to sections.
type slugIDs struct{}

func (slugIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	id := Slugify(string(value))
	if id == "" {
		return []byte("heading")
	}
	return []byte(id)
}

func (slugIDs) Put([]byte) {}

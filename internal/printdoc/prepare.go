package printdoc

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// TOCTitle heads the generated table of contents.
const TOCTitle = "Table of Contents"

// Cover holds the data printed on the cover page.
type Cover struct {
	Title    string
	Subtitle string
	// Date is printed as is. Empty means today in the long cover format.
	Date string
}

// Options configures Prepare. The zero value prints A4 with DefaultMargins.
type Options struct {
	Format  string
	Margins Margins
	TOC     bool
	Cover   *Cover

	// Loader supplies print.css and the cover template. Nil means embedded.
	Loader assets.AssetLoader

	// Now dates the cover. Nil means time.Now.
	Now func() time.Time
}

// Validate checks format and margins.
func (o *Options) Validate() error {
	if _, err := LookupPaper(o.Format); err != nil {
		return err
	}
	return o.Margins.Validate()
}

// heading is an h1-h3 collected for the table of contents.
type heading struct {
	level int
	id    string
	text  string
}

// Prepare returns doc with print styles, and optionally a cover page and
// a table of contents, injected. Cover and contents are placed right after
// <body>, cover first.
func Prepare(ctx context.Context, doc string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if opts.Loader == nil {
		opts.Loader = assets.NewEmbeddedLoader()
	}
	if opts.Margins.IsZero() {
		opts.Margins = DefaultMargins
	}

	var front strings.Builder

	if opts.Cover != nil {
		cover, err := renderCover(opts.Loader, opts.Cover, opts.Now)
		if err != nil {
			return "", err
		}
		front.WriteString(cover)
	}

	if opts.TOC {
		withIDs, headings, err := assignHeadingIDs(doc)
		if err != nil {
			return "", err
		}
		doc = withIDs
		front.WriteString(buildTOC(headings))
	}

	if front.Len() > 0 {
		doc = injectAfterBody(doc, front.String())
	}

	css, err := printCSS(opts.Loader, opts.Format, opts.Margins)
	if err != nil {
		return "", err
	}
	return injectCSS(doc, css), nil
}

// printCSS is the @page rule followed by the print stylesheet.
func printCSS(loader assets.AssetLoader, format string, m Margins) (string, error) {
	if format == "" {
		format = DefaultFormat
	}
	rules, err := loader.LoadStyle(assets.StylePrint)
	if err != nil {
		return "", fmt.Errorf("loading print styles: %w", err)
	}
	page := fmt.Sprintf("@page { size: %s; margin: %gmm %gmm %gmm %gmm; }\n", format, m.Top, m.Right, m.Bottom, m.Left)
	return page + rules, nil
}

func renderCover(loader assets.AssetLoader, c *Cover, now func() time.Time) (string, error) {
	src, err := loader.LoadTemplate(assets.TemplateCover)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverRender, err)
	}
	tmpl, err := template.New("cover").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: parsing template: %v", ErrCoverRender, err)
	}

	data := *c
	if data.Date == "" {
		if now == nil {
			now = time.Now
		}
		data.Date, err = dateutil.Format(now(), dateutil.CoverDateFormat)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCoverRender, err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverRender, err)
	}
	return buf.String(), nil
}

// assignHeadingIDs numbers h1-h3 in document order. Headings that already
// carry an id keep it so in-page links stay valid; the others get heading-N.
func assignHeadingIDs(doc string) (string, []heading, error) {
	root, fragment, err := pipeline.ParseHTML(doc)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseDocument, err)
	}

	var headings []heading
	pipeline.Walk(root, func(n *xhtml.Node) {
		level := headingLevel(n.Data)
		if level == 0 {
			return
		}
		id, ok := pipeline.Attr(n, "id")
		if !ok || id == "" {
			id = "heading-" + strconv.Itoa(len(headings))
			pipeline.SetAttr(n, "id", id)
		}
		headings = append(headings, heading{level: level, id: id, text: strings.TrimSpace(textContent(n))})
	})

	out, err := pipeline.RenderHTML(root, fragment)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseDocument, err)
	}
	return out, headings, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	}
	return 0
}

func textContent(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// buildTOC lists headings indented by level. Empty when there are none.
func buildTOC(headings []heading) string {
	if len(headings) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<div class="table-of-contents page-break"><h2>` + TOCTitle + `</h2><ul>`)
	for _, h := range headings {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("  ", h.level-1))
		fmt.Fprintf(&sb, `<li><a href="#%s">%s</a></li>`, html.EscapeString(h.id), html.EscapeString(h.text))
	}
	sb.WriteString("\n</ul></div>")
	return sb.String()
}

// injectAfterBody inserts block after the opening <body> tag, or prepends it.
func injectAfterBody(doc, block string) string {
	lower := strings.ToLower(doc)
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if closeIdx := strings.Index(doc[idx:], ">"); closeIdx != -1 {
			pos := idx + closeIdx + 1
			return doc[:pos] + block + doc[pos:]
		}
	}
	return block + doc
}

// injectCSS inserts a <style> block before </head>, after <body>, or in front.
func injectCSS(doc, css string) string {
	if css == "" {
		return doc
	}
	style := "<style>" + sanitizeCSS(css) + "</style>"
	if idx := strings.Index(strings.ToLower(doc), "</head>"); idx != -1 {
		return doc[:idx] + style + doc[idx:]
	}
	return injectAfterBody(doc, style)
}

// sanitizeCSS keeps stylesheet text from closing the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

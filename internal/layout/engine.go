package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/theme"
)

// Options configures an Engine. The zero value is usable.
type Options struct {
	// Title is the document <title>. Empty means DefaultTitle.
	Title string

	// Palette supplies colour tokens. Nil means the built-in fallback colours.
	Palette *theme.Palette

	// Now dates blog posts. Nil means time.Now.
	Now func() time.Time

	// DateFormat formats blog post dates (dateutil tokens or preset).
	// Empty means dateutil.PostDateFormat.
	DateFormat string
}

// Engine renders pages into a complete HTML document.
type Engine struct {
	renderer pipeline.Renderer
	loader   assets.AssetLoader
	opts     Options
}

// NewEngine creates an Engine. A nil renderer selects the regex renderer and
// a nil loader the embedded assets.
func NewEngine(renderer pipeline.Renderer, loader assets.AssetLoader, opts Options) *Engine {
	if renderer == nil {
		renderer = pipeline.NewRegexRenderer(pipeline.RegexRendererOptions{})
	}
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DateFormat == "" {
		opts.DateFormat = dateutil.PostDateFormat
	}
	return &Engine{renderer: renderer, loader: loader, opts: opts}
}

// Render builds the document for pages with the named layout. Unknown names
// render as modern. The blog layout ignores nav.
func (e *Engine) Render(ctx context.Context, pages []pipeline.Page, nav []pipeline.NavEntry, name string) (string, error) {
	name = Resolve(name)

	css, err := e.stylesheet(name)
	if err != nil {
		return "", err
	}

	bodies, err := e.renderBodies(ctx, pages)
	if err != nil {
		return "", err
	}

	if name == Minimal {
		return minimalDocument(css, pages, nav, bodies, e.opts.Title), nil
	}

	script, err := e.loader.LoadScript(assets.ScriptNavigation)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetLoad, assets.ScriptNavigation, err)
	}

	var navHTML, content string
	switch name {
	case Technical:
		navHTML, content = technicalNav(nav), sections(pages, bodies, "section", "tech-section")
	case Blog:
		date, err := dateutil.Format(e.opts.Now(), e.opts.DateFormat)
		if err != nil {
			return "", err
		}
		content = blogPosts(pages, bodies, date)
	case Wiki:
		navHTML, content = wikiNav(nav), sections(pages, bodies, "section", "wiki-section")
	default:
		navHTML, content = modernNav(nav), sections(pages, bodies, "section", "doc-section")
	}

	return wrap(name, e.opts.Title, css, script, navHTML, content), nil
}

func (e *Engine) renderBodies(ctx context.Context, pages []pipeline.Page) ([]string, error) {
	bodies := make([]string, len(pages))
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		html, err := e.renderer.Render(ctx, p.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrRender, p.Title, err)
		}
		bodies[i] = html
	}
	return bodies, nil
}

package md2site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/layout"
	"github.com/alnah/go-md2site/internal/logfields"
	"github.com/alnah/go-md2site/internal/metrics"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/retry"
	"github.com/alnah/go-md2site/internal/theme"
)

// Renderer names accepted by WithRendererName.
const (
	RendererRegex    = "regex"
	RendererGoldmark = "goldmark"
)

// Stage names reported to the metrics recorder.
const (
	StageValidate = "validate"
	StageEnhance  = "enhance"
	StageParse    = "parse"
	StageRender   = "render"
	StageRead     = "read"
	StagePDF      = "pdf"
)

// Generator turns Markdown files into a single standalone HTML site.
// Create with NewGenerator; a Generator is safe for concurrent use except
// for Close. Close releases the browser started by ExportPDF.
type Generator struct {
	cfg       generatorConfig
	renderer  pipeline.Renderer
	loader    AssetLoader
	enhancer  Enhancer
	logger    *slog.Logger
	recorder  metrics.Recorder
	engine    *layout.Engine
	themeName string

	pdfMu sync.Mutex
	pdf   pdfRenderer
}

// NewGenerator creates a Generator. It fails on an unknown theme or renderer
// name and on an unusable asset directory.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: generatorConfig{
			template:       layout.Default,
			themeName:      theme.DefaultName,
			rendererName:   RendererRegex,
			maxFileSize:    DefaultMaxFileSize,
			enhanceTimeout: defaultEnhanceTimeout,
			pdfTimeout:     defaultPDFTimeout,
			retry:          retry.DefaultPolicy(),
			retryable:      enhance.IsRetryable,
			now:            time.Now,
		},
		logger:   slog.New(slog.DiscardHandler),
		recorder: metrics.NoopRecorder{},
	}

	for _, opt := range opts {
		opt(g)
	}

	if err := g.cfg.retry.Validate(); err != nil {
		return nil, err
	}

	palette := g.cfg.palette
	g.themeName = "custom"
	if palette == nil {
		p, err := theme.Lookup(g.cfg.themeName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownTheme, err)
		}
		palette = &p
		g.themeName = strings.ToLower(g.cfg.themeName)
	}

	if g.renderer == nil {
		r, err := NewRenderer(g.cfg.rendererName, g.cfg.wrapOrdered)
		if err != nil {
			return nil, err
		}
		g.renderer = r
	}
	if g.cfg.sanitize {
		g.renderer = pipeline.NewSanitizingRenderer(g.renderer)
	}

	if g.loader == nil {
		l, err := NewAssetLoader(g.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		g.loader = l
	}

	g.engine = layout.NewEngine(g.renderer, g.loader, layout.Options{
		Title:      g.cfg.title,
		Palette:    palette,
		Now:        g.cfg.now,
		DateFormat: g.cfg.dateFormat,
	})

	return g, nil
}

// NewRenderer returns the named Markdown renderer: "regex" (or empty) or
// "goldmark". wrapOrdered applies to the regex renderer only.
func NewRenderer(name string, wrapOrdered bool) (pipeline.Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RendererRegex:
		return pipeline.NewRegexRenderer(pipeline.RegexRendererOptions{WrapOrderedLists: wrapOrdered}), nil
	case RendererGoldmark:
		return pipeline.NewGoldmarkRenderer(), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s, %s)", ErrUnknownRenderer, name, RendererRegex, RendererGoldmark)
	}
}

// Generate validates files, optionally enhances them, parses them into pages
// and renders the site. Validation is all-or-nothing: one bad file rejects
// the batch before any processing. Output order follows input order.
func (g *Generator) Generate(ctx context.Context, files []File) (result *Result, err error) {
	start := time.Now()
	defer func() { g.finish(start, err) }()

	if err := g.timed(StageValidate, func() error { return g.validate(files) }); err != nil {
		return nil, err
	}

	var contents []string
	var reports []EnhancementReport
	err = g.timed(StageEnhance, func() error {
		var err error
		contents, reports, err = g.enhanceAll(ctx, files)
		return err
	})
	if err != nil {
		return nil, err
	}

	pages := make([]Page, len(files))
	_ = g.timed(StageParse, func() error {
		for i, f := range files {
			pages[i] = pipeline.ParsePage(f.Name, contents[i])
		}
		return nil
	})
	nav := pipeline.BuildNavigation(pages)

	var html string
	err = g.timed(StageRender, func() error {
		var err error
		html, err = g.engine.Render(ctx, pages, nav, g.cfg.template)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rendering site: %w", err)
	}

	stats := make([]PageStats, len(pages))
	for i, p := range pages {
		stats[i] = PageStats{Title: p.Title, Stats: pipeline.PageStats(p)}
	}

	dups, err := duplicateIDs(html)
	if err != nil {
		return nil, fmt.Errorf("inspecting anchors: %w", err)
	}
	if len(dups) > 0 {
		g.logger.Warn("duplicate anchor ids, links resolve to the first match",
			slog.Any("ids", dups))
	}

	if !layout.Known(g.cfg.template) {
		g.logger.Warn("unknown template, using default layout",
			logfields.Template(g.cfg.template))
	}

	result = &Result{
		HTML:         html,
		Pages:        pages,
		Navigation:   nav,
		Enhancements: reports,
		Stats:        stats,
		Template:     layout.Resolve(g.cfg.template),
		Theme:        g.themeName,
		DuplicateIDs: dups,
	}

	g.logger.Info("site generated",
		logfields.Files(len(files)),
		logfields.Template(result.Template),
		logfields.Theme(result.Theme),
		logfields.Duration(time.Since(start)),
	)
	return result, nil
}

// GenerateFromPaths reads the Markdown files at paths concurrently and
// generates the site. Pages keep the order of paths.
func (g *Generator) GenerateFromPaths(ctx context.Context, paths []string) (*Result, error) {
	files, err := g.ReadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, files)
}

// ReadFiles reads the Markdown files at paths concurrently, in path order.
func (g *Generator) ReadFiles(ctx context.Context, paths []string) ([]File, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	for _, p := range paths {
		if !fileutil.IsMarkdown(p) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, p)
		}
	}

	var files []File
	err := g.timed(StageRead, func() error {
		var err error
		files, err = readFiles(ctx, paths, ResolveWorkers(g.cfg.workers), g.cfg.maxFileSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ParseFiles reads and parses files without enhancing or rendering them.
func (g *Generator) ParseFiles(ctx context.Context, paths []string) ([]Page, error) {
	files, err := g.ReadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	pages := make([]Page, len(files))
	for i, f := range files {
		pages[i] = pipeline.ParsePage(f.Name, f.Content)
	}
	return pages, nil
}

// duplicateIDs returns each id attribute that occurs more than once in doc,
// in order of its second occurrence.
func duplicateIDs(doc string) ([]string, error) {
	ids, err := pipeline.CollectIDs(doc)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(ids))
	var dups []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups, nil
}

// validate rejects empty batches, non-Markdown names and oversized files.
func (g *Generator) validate(files []File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	for _, f := range files {
		if !fileutil.IsMarkdown(f.Name) {
			return fmt.Errorf("%w: %s", ErrInvalidFileType, f.Name)
		}
		if int64(len(f.Content)) > g.cfg.maxFileSize {
			return fmt.Errorf("%w: %s (%d bytes, max %d)", ErrFileTooLarge, f.Name, len(f.Content), g.cfg.maxFileSize)
		}
	}
	return nil
}

// timed runs fn and records its duration under stage.
func (g *Generator) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	g.recorder.ObserveStageDuration(stage, time.Since(start))
	return err
}

// finish records the run outcome.
func (g *Generator) finish(start time.Time, err error) {
	g.recorder.ObserveGenerateDuration(time.Since(start))
	switch {
	case err == nil:
		g.recorder.IncGenerateOutcome(metrics.OutcomeSuccess)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		g.recorder.IncGenerateOutcome(metrics.OutcomeCanceled)
	default:
		g.recorder.IncGenerateOutcome(metrics.OutcomeFailed)
		g.logger.Error("site generation failed", logfields.Error(err))
	}
}

// Loader returns the asset loader in use, for callers that print the site.
func (g *Generator) Loader() AssetLoader {
	return g.loader
}

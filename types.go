package md2site

import (
	"log/slog"
	"time"

	"github.com/alnah/go-md2site/internal/metrics"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/retry"
	"github.com/alnah/go-md2site/internal/theme"
)

// DefaultFilename is the suggested download name for a generated site.
const DefaultFilename = "documentation.html"

// DefaultMaxFileSize caps each uploaded file (10MB).
const DefaultMaxFileSize = 10 << 20

// defaultEnhanceTimeout bounds one enhancement call, retries included separately.
const defaultEnhanceTimeout = 90 * time.Second

// defaultPDFTimeout bounds one browser render.
const defaultPDFTimeout = 60 * time.Second

// File is one uploaded Markdown file.
type File struct {
	Name    string
	Content string
}

// Page, Section and NavEntry are the parsed forms of a File.
type (
	Page     = pipeline.Page
	Section  = pipeline.Section
	NavEntry = pipeline.NavEntry
)

// EnhanceStatus describes what happened to one file during enhancement.
type EnhanceStatus string

const (
	EnhanceApplied  EnhanceStatus = "enhanced"
	EnhanceFallback EnhanceStatus = "fallback" // original text used after failure
	EnhanceSkipped  EnhanceStatus = "skipped"  // no enhancer configured
)

// EnhancementReport records the enhancement outcome for one file.
type EnhancementReport struct {
	File     string        `json:"file"`
	Status   EnhanceStatus `json:"status"`
	Attempts int           `json:"attempts"`
	Error    string        `json:"error,omitempty"`
}

// PageStats pairs a page title with its size.
type PageStats struct {
	Title string `json:"title"`
	pipeline.Stats
}

// Result is the output of one generation.
type Result struct {
	HTML         string
	Pages        []Page
	Navigation   []NavEntry
	Enhancements []EnhancementReport
	Stats        []PageStats
	Template     string // layout actually used after fallback
	Theme        string
	// DuplicateIDs lists anchor ids that occur more than once in HTML.
	// Equal titles yield equal ids; they are reported, not renamed.
	DuplicateIDs []string
}

// Fallbacks counts files whose enhancement failed and kept the original text.
func (r *Result) Fallbacks() int {
	n := 0
	for _, e := range r.Enhancements {
		if e.Status == EnhanceFallback {
			n++
		}
	}
	return n
}

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds the settings collected from options.
type generatorConfig struct {
	title          string
	template       string
	themeName      string
	palette        *theme.Palette
	rendererName   string
	wrapOrdered    bool
	sanitize       bool
	dateFormat     string
	assetPath      string
	maxFileSize    int64
	workers        int
	strict         bool
	enhanceTimeout time.Duration
	pdfTimeout     time.Duration
	retry          retry.Policy
	retryable      func(error) bool
	now            func() time.Time
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(g *Generator) { g.cfg.title = title }
}

// WithTemplate selects the layout. Unknown names render as modern.
func WithTemplate(name string) Option {
	return func(g *Generator) { g.cfg.template = name }
}

// WithTheme selects a named palette. The name is checked by NewGenerator.
func WithTheme(name string) Option {
	return func(g *Generator) { g.cfg.themeName = name }
}

// WithPalette sets explicit colours, taking precedence over WithTheme.
func WithPalette(p theme.Palette) Option {
	return func(g *Generator) { g.cfg.palette = &p }
}

// WithRendererName selects "regex" (default) or "goldmark".
func WithRendererName(name string) Option {
	return func(g *Generator) { g.cfg.rendererName = name }
}

// WithRenderer injects a Markdown renderer, overriding WithRendererName.
func WithRenderer(r pipeline.Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithWrapOrderedLists wraps numbered items in <ol> with the regex renderer.
func WithWrapOrderedLists(wrap bool) Option {
	return func(g *Generator) { g.cfg.wrapOrdered = wrap }
}

// WithSanitize passes rendered page bodies through an HTML sanitiser.
func WithSanitize(on bool) Option {
	return func(g *Generator) { g.cfg.sanitize = on }
}

// WithDateFormat sets the blog post date format (preset or tokens).
func WithDateFormat(format string) Option {
	return func(g *Generator) { g.cfg.dateFormat = format }
}

// WithAssetPath overrides embedded CSS, scripts and templates from a directory.
func WithAssetPath(path string) Option {
	return func(g *Generator) { g.cfg.assetPath = path }
}

// WithAssetLoader injects an asset loader, overriding WithAssetPath.
func WithAssetLoader(l AssetLoader) Option {
	return func(g *Generator) { g.loader = l }
}

// WithMaxFileSize sets the per-file size limit in bytes.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithMaxFileSize(n int64) Option {
	if n <= 0 {
		panic("md2site: WithMaxFileSize limit must be positive")
	}
	return func(g *Generator) { g.cfg.maxFileSize = n }
}

// WithWorkers bounds concurrent reads and enhancement calls.
// Zero or less means ResolveWorkers decides.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.cfg.workers = n }
}

// WithEnhancer enables AI enhancement of each file before parsing.
func WithEnhancer(e Enhancer) Option {
	return func(g *Generator) { g.enhancer = e }
}

// WithStrictEnhancement makes an enhancement failure abort generation
// instead of falling back to the original text.
func WithStrictEnhancement() Option {
	return func(g *Generator) { g.cfg.strict = true }
}

// WithEnhanceTimeout bounds each enhancement attempt.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithEnhanceTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2site: WithEnhanceTimeout duration must be positive")
	}
	return func(g *Generator) { g.cfg.enhanceTimeout = d }
}

// WithRetry sets the backoff policy for enhancement calls.
func WithRetry(p retry.Policy) Option {
	return func(g *Generator) { g.cfg.retry = p }
}

// WithRetryable overrides which enhancement errors are retried.
// The default is enhance.IsRetryable.
func WithRetryable(fn func(error) bool) Option {
	return func(g *Generator) { g.cfg.retryable = fn }
}

// WithPDFTimeout bounds browser page loads during PDF export.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithPDFTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2site: WithPDFTimeout duration must be positive")
	}
	return func(g *Generator) { g.cfg.pdfTimeout = d }
}

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder. The default records nothing.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithClock sets the time source for blog and cover dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.cfg.now = now }
}

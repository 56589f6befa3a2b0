package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/metrics"
	"github.com/alnah/go-md2site/internal/printdoc"
	"github.com/alnah/go-md2site/internal/watch"
)

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common      commonFlags
	output      string
	template    string
	theme       string
	title       string
	renderer    string
	assetPath   string
	enhance     bool
	strict      bool
	sanitize    bool
	pdf         string
	pdfFormat   string
	toc         bool
	cover       bool
	watch       bool
	workers     int
	metricsFile string
}

func parseGenerateFlags(args []string, env *Environment) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := newFlagSet("generate", env, printGenerateUsage)
	addGenerateFlags(fs, f)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// addGenerateFlags registers the generate flags. Completion scripts are
// built from the same registration.
func addGenerateFlags(fs *flag.FlagSet, f *generateFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output HTML file")
	fs.StringVarP(&f.template, "template", "t", "", "layout: modern, minimal, technical, blog, wiki")
	fs.StringVar(&f.theme, "theme", "", "colour theme")
	fs.StringVar(&f.title, "title", "", "document title")
	fs.StringVar(&f.renderer, "renderer", "", "Markdown renderer: regex, goldmark")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding embedded assets")
	fs.BoolVar(&f.enhance, "enhance", false, "rewrite pages with the AI service before rendering")
	fs.BoolVar(&f.strict, "strict-enhance", false, "fail instead of keeping the original text when enhancement fails")
	fs.BoolVar(&f.sanitize, "sanitize", false, "strip unsafe HTML from rendered pages")
	fs.StringVar(&f.pdf, "pdf", "", "also print the site to this PDF file")
	fs.StringVar(&f.pdfFormat, "pdf-format", "", "PDF paper: a3, a4, a5, letter, legal, tabloid")
	fs.BoolVar(&f.toc, "toc", false, "add a table of contents to the PDF")
	fs.BoolVar(&f.cover, "cover", false, "add a cover page to the PDF")
	fs.BoolVar(&f.watch, "watch", false, "regenerate when sources change")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel read and enhance workers (0 = auto)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	addCommonFlags(fs, &f.common)
}

// mergeGenerateFlags merges CLI flags into config. CLI values override config values.
func mergeGenerateFlags(f *generateFlags, cfg *config.Config) {
	if f.template != "" {
		cfg.Site.Template = f.template
	}
	if f.theme != "" {
		cfg.Site.Theme = f.theme
	}
	if f.title != "" {
		cfg.Site.Title = f.title
	}
	if f.renderer != "" {
		cfg.Site.Renderer = f.renderer
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.sanitize {
		cfg.Site.Sanitize = true
	}
	if f.enhance {
		cfg.Enhance.Enabled = true
	}
	if f.strict {
		cfg.Enhance.Enabled = true
		cfg.Enhance.Strict = true
	}
	if f.pdfFormat != "" {
		cfg.PDF.Format = f.pdfFormat
	}
	if f.toc {
		cfg.PDF.TOC = true
	}
	if f.cover {
		cfg.PDF.Cover = true
	}
	if f.metricsFile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.File = f.metricsFile
	}
}

// runGenerate builds the site from the Markdown inputs, optionally prints it
// to PDF, and with --watch keeps rebuilding until interrupted.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseGenerateFlags(args, env)
	if err != nil {
		return err
	}
	if err := validateWorkers(f.workers); err != nil {
		return err
	}

	cfg, envCfg, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}
	mergeGenerateFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Fail on bad inputs before any processing.
	if len(rest) == 0 {
		return fmt.Errorf("%w: no input files or directories", ErrUsage)
	}
	if _, err := fileutil.ExpandInputs(rest); err != nil {
		return err
	}

	workers := f.workers
	if workers == 0 {
		workers = envCfg.Workers
	}

	logger := newLogger(env.Stderr, f.common)

	var registry *prometheus.Registry
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	opts, err := generatorOptions(cfg, env, logger, workers)
	if err != nil {
		return err
	}
	opts = append(opts, md2site.WithRecorder(recorder))

	g, err := md2site.NewGenerator(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = g.Close() }()

	b := &siteBuilder{
		gen:    g,
		cfg:    cfg,
		inputs: rest,
		output: resolveOutputPath(f.output, cfg),
		pdf:    f.pdf,
		flags:  f.common,
		env:    env,
	}

	if !f.watch {
		err = b.build(ctx)
	} else {
		err = watchAndBuild(ctx, b, logger)
	}

	if registry != nil && cfg.Metrics.File != "" {
		if werr := writeMetrics(cfg.Metrics.File, registry); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// generatorOptions translates the merged config into generator options.
func generatorOptions(cfg *config.Config, env *Environment, logger *slog.Logger, workers int) ([]md2site.Option, error) {
	palette, err := cfg.Palette()
	if err != nil {
		return nil, err
	}

	opts := []md2site.Option{
		md2site.WithTitle(cfg.Site.Title),
		md2site.WithTemplate(cfg.Site.Template),
		md2site.WithRendererName(cfg.Site.Renderer),
		md2site.WithWrapOrderedLists(cfg.Site.WrapOrderedLists),
		md2site.WithSanitize(cfg.Site.Sanitize),
		md2site.WithDateFormat(cfg.Site.BlogDateFormat),
		md2site.WithWorkers(workers),
		md2site.WithLogger(logger),
	}
	if env.Now != nil {
		opts = append(opts, md2site.WithClock(env.Now))
	}
	if len(cfg.Site.Colors) > 0 {
		opts = append(opts, md2site.WithPalette(palette))
	} else if cfg.Site.Theme != "" {
		opts = append(opts, md2site.WithTheme(cfg.Site.Theme))
	}
	if cfg.Storage.MaxFileSize > 0 {
		opts = append(opts, md2site.WithMaxFileSize(cfg.Storage.MaxFileSize))
	}

	switch {
	case env.AssetLoader != nil:
		opts = append(opts, md2site.WithAssetLoader(env.AssetLoader))
	case cfg.Assets.BasePath != "":
		opts = append(opts, md2site.WithAssetPath(cfg.Assets.BasePath))
	}

	if !cfg.Enhance.Enabled {
		return opts, nil
	}

	svc, hasKey, err := newAIService(cfg, env, logger)
	if err != nil {
		return nil, err
	}
	if !hasKey {
		if cfg.Enhance.Strict {
			return nil, fmt.Errorf("%w (set %s)", enhance.ErrNotConfigured, cfg.Enhance.APIKeyEnv)
		}
		logger.Warn("AI enhancement enabled without an API key, pages keep their original text",
			slog.String("env", cfg.Enhance.APIKeyEnv))
	}

	enhanceOpts := cfg.Enhance.Options
	opts = append(opts,
		md2site.WithEnhancer(md2site.EnhancerFunc(func(ctx context.Context, md string) (string, error) {
			return svc.Enhance(ctx, md, enhanceOpts)
		})),
		md2site.WithEnhanceTimeout(cfg.EnhanceTimeout()),
		md2site.WithRetry(cfg.RetryPolicy()),
		md2site.WithRetryable(enhance.IsRetryable),
	)
	if cfg.Enhance.Strict {
		opts = append(opts, md2site.WithStrictEnhancement())
	}
	return opts, nil
}

// resolveOutputPath picks --output, else output.dir/output.filename.
func resolveOutputPath(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	name := cfg.Output.Filename
	if name == "" {
		name = md2site.DefaultFilename
	}
	return filepath.Join(cfg.Output.Dir, name)
}

// siteBuilder runs one generation and writes its outputs.
type siteBuilder struct {
	gen    *md2site.Generator
	cfg    *config.Config
	inputs []string
	output string
	pdf    string
	flags  commonFlags
	env    *Environment
}

// build expands the inputs again, so files added to a watched directory are
// picked up, then generates and writes the site.
func (b *siteBuilder) build(ctx context.Context) error {
	paths, err := fileutil.ExpandInputs(b.inputs)
	if err != nil {
		return err
	}

	res, err := b.gen.GenerateFromPaths(ctx, paths)
	if err != nil {
		return err
	}

	if err := fileutil.WriteOutput(b.output, []byte(res.HTML)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	if b.pdf != "" {
		opts, err := b.pdfOptions(res)
		if err != nil {
			return err
		}
		data, err := b.gen.ExportPDF(ctx, res.HTML, opts)
		if err != nil {
			return err
		}
		if err := fileutil.WriteOutput(b.pdf, data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}

	printGenerateResult(b.env.Stdout, b.env.Stderr, res, b.output, b.pdf, b.flags)
	return nil
}

// pdfOptions converts the pdf config section. The cover title defaults to
// the site title, then to the first page title.
func (b *siteBuilder) pdfOptions(res *md2site.Result) (md2site.PDFOptions, error) {
	opts := md2site.PDFOptions{
		Format:          b.cfg.PDF.Format,
		Margins:         b.cfg.PDF.Margins,
		PrintBackground: b.cfg.PDF.PrintBackground,
		TOC:             b.cfg.PDF.TOC,
		BaseDir:         filepath.Dir(b.output),
	}
	if b.cfg.PDF.Cover {
		title := b.cfg.Site.Title
		if title == "" && len(res.Pages) > 0 {
			title = res.Pages[0].Title
		}
		now := time.Now
		if b.env.Now != nil {
			now = b.env.Now
		}
		date, err := b.cfg.CoverDate(now())
		if err != nil {
			return opts, err
		}
		opts.Cover = &printdoc.Cover{Title: title, Subtitle: b.cfg.PDF.Subtitle, Date: date}
	}
	return opts, nil
}

// watchAndBuild builds once, then rebuilds on every debounced change until
// ctx ends. A failed rebuild is reported and the watch continues.
func watchAndBuild(ctx context.Context, b *siteBuilder, logger *slog.Logger) error {
	if err := b.build(ctx); err != nil {
		fmt.Fprintf(b.env.Stderr, "error: %v\n", err)
	}

	w, err := watch.New(b.inputs, watch.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if !b.flags.quiet {
		fmt.Fprintf(b.env.Stderr, "Watching %s (Ctrl+C to stop)\n", strings.Join(b.inputs, ", "))
	}

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		if !b.flags.quiet {
			fmt.Fprintf(b.env.Stderr, "Changed: %s\n", strings.Join(changed, ", "))
		}
		return b.build(ctx)
	})
}

// printGenerateResult reports written files, fallbacks and, with --verbose,
// per-page statistics.
func printGenerateResult(stdout, stderr io.Writer, res *md2site.Result, output, pdf string, f commonFlags) {
	for _, e := range res.Enhancements {
		if e.Status == md2site.EnhanceFallback {
			fmt.Fprintf(stderr, "warning: %s kept its original text: %s\n", e.File, e.Error)
		}
	}
	if f.quiet {
		return
	}

	fmt.Fprintf(stdout, "Generated %s (%d pages, layout %s, theme %s)\n",
		output, len(res.Pages), res.Template, res.Theme)
	if pdf != "" {
		fmt.Fprintf(stdout, "Printed %s\n", pdf)
	}
	if f.verbose {
		for _, s := range res.Stats {
			fmt.Fprintf(stdout, "  %s: %d words, %d min read\n", s.Title, s.Words, s.ReadingMinutes)
		}
	}
}

// writeMetrics dumps the registry in the Prometheus text format.
func writeMetrics(path string, registry *prometheus.Registry) error {
	var buf bytes.Buffer
	if err := metrics.WriteText(&buf, registry); err != nil {
		return err
	}
	if err := fileutil.WriteOutput(path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

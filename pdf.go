package md2site

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/logfields"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/printdoc"
	"github.com/alnah/go-md2site/internal/process"
)

// PDFOptions configures ExportPDF. The zero value prints A4 with
// printdoc.DefaultMargins, no background, no cover and no contents.
type PDFOptions struct {
	Format          string           // a3, a4, a5, letter, legal, tabloid
	Margins         printdoc.Margins // millimetres
	PrintBackground bool
	TOC             bool
	Cover           *printdoc.Cover
	// BaseDir resolves relative image and link paths, which would otherwise
	// point next to the temporary print file. Empty leaves them as written.
	BaseDir string
}

// pageSetup is what the browser needs to print a prepared document.
type pageSetup struct {
	paper      printdoc.Paper
	margins    printdoc.Margins
	background bool
}

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, setup pageSetup) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ pdfRenderer = (*rodRenderer)(nil)

// ExportPDF prints a generated site to PDF with headless Chrome. Print styles,
// and optionally a cover page and a table of contents, are injected first.
// The browser starts on first use and lives until Close.
func (g *Generator) ExportPDF(ctx context.Context, html string, opts PDFOptions) (pdf []byte, err error) {
	if html == "" {
		return nil, ErrEmptyHTML
	}

	paper, err := printdoc.LookupPaper(opts.Format)
	if err != nil {
		return nil, err
	}
	margins := opts.Margins
	if margins.IsZero() {
		margins = printdoc.DefaultMargins
	}

	html, err = pipeline.RewriteRelativePaths(html, opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("preparing print document: %w", err)
	}

	prepared, err := printdoc.Prepare(ctx, html, printdoc.Options{
		Format:  opts.Format,
		Margins: margins,
		TOC:     opts.TOC,
		Cover:   opts.Cover,
		Loader:  g.loader,
		Now:     g.cfg.now,
	})
	if err != nil {
		return nil, fmt.Errorf("preparing print document: %w", err)
	}

	path, cleanup, err := fileutil.WriteTempFile(prepared, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	start := time.Now()
	err = g.timed(StagePDF, func() error {
		var err error
		pdf, err = g.pdfRenderer().RenderFromFile(ctx, path, pageSetup{
			paper:      paper,
			margins:    margins,
			background: opts.PrintBackground,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("pdf exported", logfields.Duration(time.Since(start)))
	return pdf, nil
}

// Close releases the browser started by ExportPDF, if any.
func (g *Generator) Close() error {
	g.pdfMu.Lock()
	defer g.pdfMu.Unlock()
	if g.pdf == nil {
		return nil
	}
	err := g.pdf.Close()
	g.pdf = nil
	return err
}

func (g *Generator) pdfRenderer() pdfRenderer {
	g.pdfMu.Lock()
	defer g.pdfMu.Unlock()
	if g.pdf == nil {
		g.pdf = newRodRenderer(g.cfg.pdfTimeout)
	}
	return g.pdf
}

// rodRenderer implements pdfRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	// Containers and CI runners have no usable sandbox.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Close shuts the browser down and kills any leftover child processes.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	if pid := r.launcher.PID(); pid > 0 {
		_ = process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.browser, r.launcher = nil, nil
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, setup pageSetup) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(printOptions(setup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return out, nil
}

// printOptions converts millimetre page settings to Chrome's inch-based options.
func printOptions(s pageSetup) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(s.paper.WidthInches()),
		PaperHeight:     floatPtr(s.paper.HeightInches()),
		MarginTop:       floatPtr(printdoc.Inches(s.margins.Top)),
		MarginRight:     floatPtr(printdoc.Inches(s.margins.Right)),
		MarginBottom:    floatPtr(printdoc.Inches(s.margins.Bottom)),
		MarginLeft:      floatPtr(printdoc.Inches(s.margins.Left)),
		PrintBackground: s.background,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

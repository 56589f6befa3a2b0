package md2site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2site/internal/printdoc"
)

// mockPDFRenderer records what the browser would have printed.
type mockPDFRenderer struct {
	html   string
	setup  pageSetup
	err    error
	closed bool
}

func (m *mockPDFRenderer) RenderFromFile(_ context.Context, path string, setup pageSetup) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m.html, m.setup = string(data), setup
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.7"), nil
}

func (m *mockPDFRenderer) Close() error {
	m.closed = true
	return nil
}

func newPDFGenerator(t *testing.T, mock *mockPDFRenderer) *Generator {
	t.Helper()
	g := mustGenerator(t)
	g.pdf = mock
	return g
}

const siteHTML = "<!DOCTYPE html><html><head><title>T</title></head><body class=\"template-modern\"><h1>Intro</h1><h2>Setup</h2></body></html>"

// ---------------------------------------------------------------------------
// TestExportPDF - Print preparation and renderer hand-off
// ---------------------------------------------------------------------------

func TestExportPDF(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		mock := &mockPDFRenderer{}
		g := newPDFGenerator(t, mock)

		pdf, err := g.ExportPDF(context.Background(), siteHTML, PDFOptions{})
		if err != nil {
			t.Fatalf("ExportPDF() error: %v", err)
		}
		if string(pdf) != "%PDF-1.7" {
			t.Errorf("pdf = %q", pdf)
		}
		if !strings.Contains(mock.html, "@page { size: A4; margin: 20mm 15mm 20mm 15mm; }") {
			t.Error("print rules missing from prepared document")
		}
		if strings.Contains(mock.html, `<div class="table-of-contents`) || strings.Contains(mock.html, `<div class="cover-page"`) {
			t.Error("cover or contents injected without being requested")
		}
		a4, _ := printdoc.LookupPaper("a4")
		if mock.setup.paper != a4 || mock.setup.margins != printdoc.DefaultMargins || mock.setup.background {
			t.Errorf("setup = %+v", mock.setup)
		}
	})

	t.Run("cover and contents", func(t *testing.T) {
		t.Parallel()
		mock := &mockPDFRenderer{}
		g := newPDFGenerator(t, mock)

		_, err := g.ExportPDF(context.Background(), siteHTML, PDFOptions{
			Format:          "letter",
			Margins:         printdoc.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
			PrintBackground: true,
			TOC:             true,
			Cover:           &printdoc.Cover{Title: "Handbook"},
		})
		if err != nil {
			t.Fatalf("ExportPDF() error: %v", err)
		}
		cover := strings.Index(mock.html, `<div class="cover-page"`)
		toc := strings.Index(mock.html, `<div class="table-of-contents`)
		if cover < 0 || toc < 0 || cover > toc {
			t.Errorf("cover at %d, contents at %d; want cover first", cover, toc)
		}
		if !strings.Contains(mock.html, "March 7, 2026") {
			t.Error("cover date should come from the generator clock")
		}
		if !strings.Contains(mock.html, `<a href="#heading-1">Setup</a>`) {
			t.Error("contents entry for h2 missing")
		}
		letter, _ := printdoc.LookupPaper("letter")
		if mock.setup.paper != letter || !mock.setup.background || mock.setup.margins.Top != 10 {
			t.Errorf("setup = %+v", mock.setup)
		}
	})

	t.Run("relative paths resolved against base dir", func(t *testing.T) {
		t.Parallel()
		mock := &mockPDFRenderer{}
		g := newPDFGenerator(t, mock)
		base := t.TempDir()
		html := `<!DOCTYPE html><html><head></head><body><img src="img/logo.png"><a href="#intro">x</a></body></html>`

		if _, err := g.ExportPDF(context.Background(), html, PDFOptions{BaseDir: base}); err != nil {
			t.Fatalf("ExportPDF() error: %v", err)
		}
		want := "file://" + filepath.ToSlash(filepath.Join(base, "img", "logo.png"))
		if !strings.Contains(mock.html, want) {
			t.Errorf("prepared document missing %q", want)
		}
		if !strings.Contains(mock.html, `href="#intro"`) {
			t.Error("anchor link should be left alone")
		}
	})

	t.Run("renderer error", func(t *testing.T) {
		t.Parallel()
		g := newPDFGenerator(t, &mockPDFRenderer{err: ErrBrowserConnect})
		_, err := g.ExportPDF(context.Background(), siteHTML, PDFOptions{})
		if !errors.Is(err, ErrBrowserConnect) {
			t.Fatalf("error = %v, want ErrBrowserConnect", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		g := newPDFGenerator(t, &mockPDFRenderer{})
		if _, err := g.ExportPDF(context.Background(), "", PDFOptions{}); !errors.Is(err, ErrEmptyHTML) {
			t.Errorf("error = %v, want ErrEmptyHTML", err)
		}
		if _, err := g.ExportPDF(context.Background(), siteHTML, PDFOptions{Format: "b9"}); !errors.Is(err, printdoc.ErrInvalidFormat) {
			t.Errorf("error = %v, want ErrInvalidFormat", err)
		}
		_, err := g.ExportPDF(context.Background(), siteHTML, PDFOptions{Margins: printdoc.Margins{Top: 500}})
		if !errors.Is(err, printdoc.ErrInvalidMargin) {
			t.Errorf("error = %v, want ErrInvalidMargin", err)
		}
	})
}

func TestGenerator_Close(t *testing.T) {
	t.Parallel()

	mock := &mockPDFRenderer{}
	g := newPDFGenerator(t, mock)
	if err := g.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !mock.closed {
		t.Error("Close() did not release the renderer")
	}
	if err := g.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestPrintOptions(t *testing.T) {
	t.Parallel()

	a4, _ := printdoc.LookupPaper("a4")
	got := printOptions(pageSetup{paper: a4, margins: printdoc.Margins{Top: 25.4}, background: true})

	if *got.PaperWidth != a4.WidthInches() || *got.PaperHeight != a4.HeightInches() {
		t.Errorf("paper = %v x %v", *got.PaperWidth, *got.PaperHeight)
	}
	if *got.MarginTop != 1 {
		t.Errorf("MarginTop = %v, want 1 inch", *got.MarginTop)
	}
	if *got.MarginLeft != 0 || !got.PrintBackground {
		t.Errorf("MarginLeft = %v, PrintBackground = %v", *got.MarginLeft, got.PrintBackground)
	}
}

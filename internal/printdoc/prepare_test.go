package printdoc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-md2site/internal/assets"
)

const sampleDoc = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Docs</title>
</head>
<body class="template-modern">
<section id="intro" class="doc-section">
<h1>Intro &amp; Setup</h1>
<p>text</p>
<h2>Install <em>now</em></h2>
<h3 id="keep-me">Linux</h3>
<h4>Deep</h4>
</section>
</body>
</html>`

func fixedNow() time.Time {
	return time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
}

type brokenCoverLoader struct{ assets.AssetLoader }

func (brokenCoverLoader) LoadTemplate(string) (string, error) {
	return "{{.Missing", nil
}

// ---------------------------------------------------------------------------
// TestPrepare
// ---------------------------------------------------------------------------

func TestPrepare_PrintCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"defaults", Options{}, "@page { size: A4; margin: 20mm 15mm 20mm 15mm; }"},
		{"letter custom margins", Options{Format: "Letter", Margins: Margins{10, 5, 10, 5}}, "@page { size: Letter; margin: 10mm 5mm 10mm 5mm; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Prepare(context.Background(), sampleDoc, tt.opts)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("missing page rule %q", tt.want)
			}
			styleIdx := strings.Index(got, "<style>@page")
			headIdx := strings.Index(got, "</head>")
			if styleIdx == -1 || styleIdx > headIdx {
				t.Error("print styles should be injected before </head>")
			}
			if !strings.Contains(got, "@media print") {
				t.Error("print stylesheet not included")
			}
		})
	}
}

func TestPrepare_NoFrontMatterLeavesBody(t *testing.T) {
	t.Parallel()

	got, err := Prepare(context.Background(), sampleDoc, Options{})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if strings.Contains(got, `class="table-of-contents`) || strings.Contains(got, `class="cover-page"`) {
		t.Error("cover or contents injected without being requested")
	}
	if !strings.Contains(got, "<h1>Intro &amp; Setup</h1>") {
		t.Error("body content should be untouched")
	}
}

func TestPrepare_TOC(t *testing.T) {
	t.Parallel()

	got, err := Prepare(context.Background(), sampleDoc, Options{TOC: true})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	wants := []string{
		`<div class="table-of-contents page-break"><h2>Table of Contents</h2><ul>`,
		`<li><a href="#heading-0">Intro &amp; Setup</a></li>`,
		"\n  <li><a href=\"#heading-1\">Install now</a></li>",
		"\n    <li><a href=\"#keep-me\">Linux</a></li>",
		`<h1 id="heading-0">`,
		`<h2 id="heading-1">`,
		`<h3 id="keep-me">`,
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(got, "Deep</a>") {
		t.Error("h4 should not be listed")
	}
	if strings.Contains(got, "heading-2") {
		t.Error("heading with an existing id should not be renumbered")
	}

	bodyIdx := strings.Index(got, `<body class="template-modern">`)
	tocIdx := strings.Index(got, `<div class="table-of-contents`)
	sectionIdx := strings.Index(got, `<section id="intro"`)
	if !(bodyIdx < tocIdx && tocIdx < sectionIdx) {
		t.Error("contents should follow <body> and precede content")
	}
}

func TestPrepare_TOCWithoutHeadings(t *testing.T) {
	t.Parallel()

	doc := "<!DOCTYPE html><html><head></head><body><p>plain</p></body></html>"
	got, err := Prepare(context.Background(), doc, Options{TOC: true})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if strings.Contains(got, `<div class="table-of-contents`) {
		t.Error("empty contents should not be injected")
	}
}

func TestPrepare_Cover(t *testing.T) {
	t.Parallel()

	t.Run("dated from clock", func(t *testing.T) {
		t.Parallel()

		got, err := Prepare(context.Background(), sampleDoc, Options{
			Cover: &Cover{Title: "Handbook", Subtitle: "v2"},
			TOC:   true,
			Now:   fixedNow,
		})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		for _, want := range []string{"Handbook</h1>", "v2</h2>", "Generated on January 15, 2026"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q", want)
			}
		}
		coverIdx := strings.Index(got, `<div class="cover-page"`)
		tocIdx := strings.Index(got, `<div class="table-of-contents`)
		if coverIdx == -1 || coverIdx > tocIdx {
			t.Error("cover should precede the contents")
		}
	})

	t.Run("explicit date and escaping", func(t *testing.T) {
		t.Parallel()

		got, err := Prepare(context.Background(), sampleDoc, Options{
			Cover: &Cover{Title: "<script>x</script>", Date: "Q3"},
		})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if strings.Contains(got, "<script>x</script>") {
			t.Error("cover title must be escaped")
		}
		if !strings.Contains(got, "Generated on Q3") {
			t.Error("explicit date not used")
		}
		if strings.Contains(got, "<h2 style") {
			t.Error("empty subtitle should be omitted")
		}
	})

	t.Run("broken template", func(t *testing.T) {
		t.Parallel()

		_, err := Prepare(context.Background(), sampleDoc, Options{
			Cover:  &Cover{Title: "x"},
			Loader: brokenCoverLoader{assets.NewEmbeddedLoader()},
		})
		if !errors.Is(err, ErrCoverRender) {
			t.Errorf("Prepare() error = %v, want ErrCoverRender", err)
		}
	})
}

func TestPrepare_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"unknown format", Options{Format: "B7"}, ErrInvalidFormat},
		{"negative margin", Options{Margins: Margins{Top: -1}}, ErrInvalidMargin},
		{"huge margin", Options{Margins: Margins{Left: MaxMarginMM + 1}}, ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Prepare(context.Background(), sampleDoc, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Prepare() error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Prepare(ctx, sampleDoc, Options{}); !errors.Is(err, context.Canceled) {
			t.Errorf("Prepare() error = %v, want context.Canceled", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Injection helpers
// ---------------------------------------------------------------------------

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		css  string
		want string
	}{
		{"before head close", "<html><head></head><body></body></html>", "a{}", "<html><head><style>a{}</style></head><body></body></html>"},
		{"uppercase head", "<HTML><HEAD></HEAD></HTML>", "a{}", "<HTML><HEAD><style>a{}</style></HEAD></HTML>"},
		{"after body", `<body class="x"><p>hi</p></body>`, "a{}", `<body class="x"><style>a{}</style><p>hi</p></body>`},
		{"prepend", "<p>hi</p>", "a{}", "<style>a{}</style><p>hi</p>"},
		{"empty css", "<p>hi</p>", "", "<p>hi</p>"},
		{"escapes closing tags", "<p></p>", "</style>", `<style><\/style></style><p></p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := injectCSS(tt.doc, tt.css); got != tt.want {
				t.Errorf("injectCSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildTOC(t *testing.T) {
	t.Parallel()

	if got := buildTOC(nil); got != "" {
		t.Errorf("buildTOC(nil) = %q, want empty", got)
	}

	got := buildTOC([]heading{{1, "a", "A"}, {3, "c", "C <b>"}})
	want := `<div class="table-of-contents page-break"><h2>Table of Contents</h2><ul>` +
		"\n" + `<li><a href="#a">A</a></li>` +
		"\n    " + `<li><a href="#c">C &lt;b&gt;</a></li>` +
		"\n</ul></div>"
	if got != want {
		t.Errorf("buildTOC() =\n%s\nwant\n%s", got, want)
	}
}

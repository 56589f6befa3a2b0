package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/printdoc"
)

var sampleDocs = map[string]string{
	"01-intro.md":           "# Getting Started\n\nWelcome to **the docs**.\n\n## Install\n\nRun it.\n",
	"02-usage.md":           "# Usage\n\n## Flags\n\nUse `--help`.\n",
	"notes/03-faq.markdown": "# FAQ\n\nAsk away.\n",
	"notes/readme.txt":      "ignored",
}

// ---------------------------------------------------------------------------
// TestGenerate - Site generation from the command line
// ---------------------------------------------------------------------------

func TestGenerate(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	dir := writeDocs(t, sampleDocs)
	out := filepath.Join(t.TempDir(), "site", "index.html")

	code := te.run("generate", dir, "-o", out, "--template", "wiki", "--theme", "ocean", "--title", "Handbook")
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}

	html := readFile(t, out)
	for _, want := range []string{
		"<title>Handbook</title>",
		`class="template-wiki"`,
		`id="getting-started"`,
		`id="usage"`,
		`id="faq"`,
		"<strong>the docs</strong>",
		"#0EA5E9",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(html, `id="getting-started"`) > strings.Index(html, `id="faq"`) {
		t.Error("pages are not in sorted path order")
	}
	if strings.Contains(html, "ignored") {
		t.Error("non-Markdown file in a directory was included")
	}
	if !strings.Contains(te.stdout.String(), "Generated "+out+" (3 pages, layout wiki, theme ocean)") {
		t.Errorf("stdout = %q", te.stdout)
	}
}

func TestGenerate_DefaultOutputPath(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	dir := writeDocs(t, sampleDocs)
	te.Config.Output.Dir = t.TempDir()

	if code := te.run("generate", filepath.Join(dir, "02-usage.md"), "-q"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if _, err := os.Stat(filepath.Join(te.Config.Output.Dir, "documentation.html")); err != nil {
		t.Errorf("default output not written: %v", err)
	}
	if te.stdout.Len() != 0 {
		t.Errorf("--quiet printed %q", te.stdout)
	}
}

func TestGenerate_UnknownTemplateFallsBack(t *testing.T) {
	t.Parallel()
	dir := writeDocs(t, sampleDocs)
	outDir := t.TempDir()

	render := func(template string) string {
		te := newTestEnv(t)
		out := filepath.Join(outDir, template+".html")
		if code := te.run("generate", dir, "-o", out, "-t", template); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
		}
		return readFile(t, out)
	}

	if render("xyz") != render("modern") {
		t.Error("unknown template output differs from modern")
	}
}

func TestGenerate_EnvironmentOverrides(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	te.vars["MD2SITE_TEMPLATE"] = "technical"
	te.vars["MD2SITE_THEME"] = "forest"
	dir := writeDocs(t, sampleDocs)
	out := filepath.Join(t.TempDir(), "out.html")

	if code := te.run("generate", dir, "-o", out, "--theme", "sunset"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if !strings.Contains(te.stdout.String(), "layout technical, theme sunset") {
		t.Errorf("stdout = %q, want env template and flag theme", te.stdout)
	}
}

func TestGenerate_ConfigFile(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	dir := writeDocs(t, sampleDocs)
	cfgPath := filepath.Join(t.TempDir(), "site.yaml")
	yaml := "site:\n  template: blog\n  theme: light\n  blogDateFormat: long\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.html")

	if code := te.run("generate", dir, "-o", out, "--config", cfgPath); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if !strings.Contains(readFile(t, out), "March 7, 2026") {
		t.Error("blog date from the injected clock not found")
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	dir := writeDocs(t, sampleDocs)
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no inputs", []string{"generate"}, ExitUsage, "no input files"},
		{"explicit non-Markdown", []string{"generate", filepath.Join(dir, "01-intro.md"), filepath.Join(dir, "notes", "readme.txt")}, ExitUsage, "not a Markdown file"},
		{"missing input", []string{"generate", filepath.Join(dir, "gone.md")}, ExitIO, "input not found"},
		{"negative workers", []string{"generate", dir, "-w", "-1"}, ExitUsage, "invalid worker count"},
		{"bad renderer", []string{"generate", dir, "--renderer", "pandoc"}, ExitUsage, "site.renderer"},
		{"bad paper", []string{"generate", dir, "--pdf-format", "b5"}, ExitUsage, "pdf.format"},
		{"missing config", []string{"generate", dir, "--config", "./nope/site.yaml"}, ExitUsage, "config file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv(t)
			out := filepath.Join(t.TempDir(), "out.html")

			code := te.run(append(tt.args, "-o", out)...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
			if !strings.Contains(te.stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", te.stderr, tt.wantErr)
			}
			if _, err := os.Stat(out); err == nil {
				t.Error("output written despite the error")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerate_Enhance - AI enhancement through the CLI
// ---------------------------------------------------------------------------

func TestGenerate_Enhance(t *testing.T) {
	t.Parallel()

	dir := writeDocs(t, map[string]string{"a.md": "# Alpha\n\nOriginal alpha.\n"})

	t.Run("applied", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		ai := &fakeAI{}
		te.AI = ai
		out := filepath.Join(t.TempDir(), "out.html")

		if code := te.run("generate", dir, "-o", out, "--enhance"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
		}
		if !strings.Contains(readFile(t, out), "Enhanced.") {
			t.Error("enhanced text missing from output")
		}
		if ai.callCount() != 1 {
			t.Errorf("enhance calls = %d, want 1", ai.callCount())
		}
	})

	t.Run("fallback keeps original text", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		te.AI = &fakeAI{enhanceFn: func(string) (string, error) {
			return "", &enhance.StatusError{Code: 400, Body: "bad request"}
		}}
		out := filepath.Join(t.TempDir(), "out.html")

		if code := te.run("generate", dir, "-o", out, "--enhance"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
		}
		if !strings.Contains(readFile(t, out), "Original alpha.") {
			t.Error("original text missing after fallback")
		}
		if !strings.Contains(te.stderr.String(), "a.md kept its original text") {
			t.Errorf("stderr = %q, want fallback warning", te.stderr)
		}
	})

	t.Run("retryable failure recovers", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		ai := &fakeAI{}
		ai.enhanceFn = func(md string) (string, error) {
			if ai.callCount() == 1 {
				return "", &enhance.StatusError{Code: 503, Body: "busy"}
			}
			return md + "\nSecond try.", nil
		}
		te.AI = ai
		out := filepath.Join(t.TempDir(), "out.html")

		if code := te.run("generate", dir, "-o", out, "--enhance"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
		}
		if !strings.Contains(readFile(t, out), "Second try.") {
			t.Error("retried enhancement missing from output")
		}
	})

	t.Run("strict fails", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		te.AI = &fakeAI{enhanceFn: func(string) (string, error) {
			return "", errors.New("connection reset")
		}}
		out := filepath.Join(t.TempDir(), "out.html")

		if code := te.run("generate", dir, "-o", out, "--strict-enhance"); code != ExitService {
			t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitService, te.stderr)
		}
		if _, err := os.Stat(out); err == nil {
			t.Error("output written despite strict enhancement failure")
		}
	})

	t.Run("strict without key", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		out := filepath.Join(t.TempDir(), "out.html")

		if code := te.run("generate", dir, "-o", out, "--strict-enhance"); code != ExitService {
			t.Fatalf("exit code = %d, want %d", code, ExitService)
		}
		if !strings.Contains(te.stderr.String(), "OPENAI_API_KEY") {
			t.Errorf("stderr = %q, want API key hint", te.stderr)
		}
	})
}

func TestGenerate_MetricsFile(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	dir := writeDocs(t, sampleDocs)
	tmp := t.TempDir()
	out := filepath.Join(tmp, "out.html")
	metricsPath := filepath.Join(tmp, "metrics", "md2site.prom")

	if code := te.run("generate", dir, "-o", out, "--metrics-file", metricsPath); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	text := readFile(t, metricsPath)
	for _, want := range []string{"md2site_generate_duration_seconds", "md2site_stage_duration_seconds"} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %s:\n%s", want, text)
		}
	}
}

func TestMergeGenerateFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	mergeGenerateFlags(&generateFlags{
		template:    "wiki",
		strict:      true,
		toc:         true,
		pdfFormat:   "letter",
		metricsFile: "m.prom",
	}, cfg)

	if cfg.Site.Template != "wiki" {
		t.Errorf("Template = %q", cfg.Site.Template)
	}
	if !cfg.Enhance.Enabled || !cfg.Enhance.Strict {
		t.Error("--strict-enhance should enable strict enhancement")
	}
	if !cfg.PDF.TOC || cfg.PDF.Format != "letter" {
		t.Errorf("PDF = %+v", cfg.PDF)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.File != "m.prom" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Site.Theme != "dark" {
		t.Errorf("Theme = %q, want config value kept", cfg.Site.Theme)
	}
}

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if got := resolveOutputPath("x.html", cfg); got != "x.html" {
		t.Errorf("flag output = %q", got)
	}
	cfg.Output.Dir = "public"
	if got := resolveOutputPath("", cfg); got != filepath.Join("public", "documentation.html") {
		t.Errorf("config output = %q", got)
	}
}

func TestPDFOptions(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	cfg := config.DefaultConfig()
	cfg.PDF.Cover = true
	cfg.PDF.Subtitle = "Internal"
	cfg.PDF.Date = "auto"
	b := &siteBuilder{cfg: cfg, env: te.Environment}
	res := &md2site.Result{Pages: []md2site.Page{{Title: "Getting Started"}}}

	opts, err := b.pdfOptions(res)
	if err != nil {
		t.Fatalf("pdfOptions() error = %v", err)
	}
	if opts.Cover == nil {
		t.Fatal("Cover = nil")
	}
	want := printdoc.Cover{Title: "Getting Started", Subtitle: "Internal", Date: "March 7, 2026"}
	if *opts.Cover != want {
		t.Errorf("Cover = %+v, want %+v", *opts.Cover, want)
	}

	cfg.Site.Title = "Handbook"
	cfg.PDF.Date = "auto:nope["
	if _, err := b.pdfOptions(res); err == nil {
		t.Error("expected error for an unclosed bracket")
	}
}

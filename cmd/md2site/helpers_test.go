package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/retry"
)

// fixedNow is the clock used by every CLI test.
var fixedNow = time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	vars   map[string]string
}

// newTestEnv returns an Environment with buffered output, a fixed clock,
// an empty process environment and a config whose retries do not sleep.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Enhance.Retry = config.RetryConfig{
		MaxRetries: 1,
		Initial:    "1ms",
		Max:        "1ms",
		Mode:       string(retry.BackoffFixed),
	}
	cfg.Storage.Path = filepath.Join(t.TempDir(), "projects.db")

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		vars:   map[string]string{},
	}
	te.Environment = &Environment{
		Now:     func() time.Time { return fixedNow },
		Stdout:  te.stdout,
		Stderr:  te.stderr,
		Getenv:  func(k string) string { return te.vars[k] },
		Environ: func() []string { return nil },
		Config:  cfg,
	}
	return te
}

// run executes the CLI with args (without the program name).
func (te *testEnv) run(args ...string) int {
	return run(append([]string{"md2site"}, args...), te.Environment)
}

// writeDocs writes name/content pairs into a new temp dir and returns it.
func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// fakeAI is a scripted aiService.
type fakeAI struct {
	mu        sync.Mutex
	enhanceFn func(markdown string) (string, error)
	calls     int
}

func (f *fakeAI) Enhance(_ context.Context, markdown string, _ enhance.Options) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.enhanceFn != nil {
		return f.enhanceFn(markdown)
	}
	return markdown + "\n\nEnhanced.", nil
}

func (f *fakeAI) Summarize(_ context.Context, markdown string) (string, error) {
	first, _, _ := strings.Cut(markdown, "\n")
	return "Summary of " + strings.TrimPrefix(first, "# "), nil
}

func (f *fakeAI) ImproveHeadings(_ context.Context, markdown string) (string, error) {
	return strings.ReplaceAll(markdown, "# ", "# Better "), nil
}

func (f *fakeAI) Translate(_ context.Context, markdown, lang string) (string, error) {
	return "[" + lang + "] " + markdown, nil
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

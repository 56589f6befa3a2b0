package logfields

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHelperKeyNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"File", KeyFile, "intro.md", File("intro.md")},
		{"Files", KeyFiles, "3", Files(3)},
		{"Template", KeyTemplate, "wiki", Template("wiki")},
		{"Theme", KeyTheme, "ocean", Theme("ocean")},
		{"Renderer", KeyRenderer, "goldmark", Renderer("goldmark")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"Attempt", KeyAttempt, "2", Attempt(2)},
		{"Output", KeyOutput, "site.html", Output("site.html")},
		{"ProjectID", KeyProjectID, "p1", ProjectID("p1")},
		{"UserID", KeyUserID, "u1", UserID("u1")},
		{"Model", KeyModel, "gpt-4o-mini", Model("gpt-4o-mini")},
		{"Status", KeyStatus, "429", Status(429)},
		{"Duration", KeyDurationMS, "12.5", Duration(12500 * time.Microsecond)},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Errorf("%s: key = %s, want %s", tc.name, tc.attr.Key, tc.attrKey)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Errorf("%s: value = %s, want %s", tc.name, got, tc.attrVal)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	t.Parallel()

	if got := Error(nil).Value.String(); got != "" {
		t.Errorf("Error(nil) = %q, want empty", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Errorf("Error() = %q, want boom", got)
	}
}

func TestHelpersInHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("enhancement failed", File("a.md"), Attempt(3), Error(errors.New("timeout")))

	out := buf.String()
	for _, want := range []string{"file=a.md", "attempt=3", "error=timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

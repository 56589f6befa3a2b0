package hints

// IsInContainer is package state, so tests that swap it do not run in parallel.

import (
	"strings"
	"testing"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func withContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		env         map[string]string
		wantSandbox bool
		wantBin     bool
	}{
		{"CI", false, map[string]string{"CI": "true"}, true, true},
		{"GitHub Actions", false, map[string]string{"GITHUB_ACTIONS": "true"}, true, true},
		{"container", true, nil, true, true},
		{"sandbox already disabled", true, map[string]string{"ROD_NO_SANDBOX": "1"}, false, true},
		{"custom browser", false, map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"}, false, false},
		{"workstation", false, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withContainer(t, tt.container)

			hint := ForBrowserConnect(envOf(tt.env))

			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("ROD_NO_SANDBOX suggested = %v, want %v (hint %q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("ROD_BROWSER_BIN suggested = %v, want %v (hint %q)", got, tt.wantBin, hint)
			}
			if !tt.wantSandbox && !tt.wantBin && hint != "" {
				t.Errorf("hint = %q, want empty", hint)
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{"docs.yaml", "/home/u/.config/go-md2site/docs.yaml"})
	if !strings.Contains(got, "--config") {
		t.Errorf("hint %q should mention --config", got)
	}
	if !strings.Contains(got, "create /home/u/.config/go-md2site/docs.yaml") {
		t.Errorf("hint %q should suggest the user config path", got)
	}

	got = ForConfigNotFound([]string{"docs.yaml"})
	if strings.Contains(got, "create") {
		t.Errorf("hint %q should not suggest a path outside the user config dir", got)
	}
}

func TestForUnknownName(t *testing.T) {
	t.Parallel()

	if got := ForUnknownName(nil); got != "" {
		t.Errorf("ForUnknownName(nil) = %q, want empty", got)
	}
	if got := ForUnknownName([]string{"dark", "light"}); got != "\n  hint: available: dark, light" {
		t.Errorf("ForUnknownName() = %q", got)
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hint string
		want string
	}{
		{"timeout", ForTimeout(), "enhance.timeout"},
		{"api key", ForAPIKey("OPENAI_API_KEY"), "OPENAI_API_KEY"},
		{"output", ForOutputDirectory(), "writable"},
		{"markdown", ForNotMarkdown(), ".markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !strings.HasPrefix(tt.hint, "\n  hint: ") {
				t.Errorf("hint %q lacks the standard prefix", tt.hint)
			}
			if !strings.Contains(tt.hint, tt.want) {
				t.Errorf("hint %q should contain %q", tt.hint, tt.want)
			}
		})
	}
}

// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted as "\n  hint: <text>" and appended to CLI error messages.
package hints

import (
	"strings"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for PDF export browser failures.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string

	inCI := getenv("CI") != "" ||
		getenv("GITHUB_ACTIONS") != "" ||
		getenv("GITLAB_CI") != "" ||
		getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about raising the enhancement or export timeout.
func ForTimeout() string {
	return format("raise enhance.timeout in the config file or run without --enhance")
}

// ForAPIKey returns a hint for a missing AI service key.
func ForAPIKey(envName string) string {
	return format("set " + envName + " in the environment or in a .env file")
}

// ForConfigNotFound suggests --config or the user config candidate among
// the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-md2site") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForNotMarkdown returns a hint for rejected input files.
func ForNotMarkdown() string {
	return format("only .md and .markdown files are accepted; pass a directory to pick them up")
}

// ForUnknownName lists valid names for a rejected theme, template or language.
func ForUnknownName(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestProject - Saved projects round trip through the SQLite store
// ---------------------------------------------------------------------------

func TestProject_Lifecycle(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	te.vars["MD2SITE_USER"] = "ada"
	dir := writeDocs(t, map[string]string{
		"intro.md": "# Intro\n\nHello.\n",
		"guide.md": "# Guide\n\nSteps.\n",
	})

	// save
	if code := te.run("project", "save", dir, "--name", "Handbook", "-t", "wiki", "--theme", "forest", "-q"); code != ExitSuccess {
		t.Fatalf("save exit code = %d, stderr: %s", code, te.stderr)
	}
	id := strings.TrimSpace(te.stdout.String())
	if id == "" {
		t.Fatal("save printed no id")
	}

	// list
	te.stdout.Reset()
	if code := te.run("project", "list", "--json"); code != ExitSuccess {
		t.Fatalf("list exit code = %d, stderr: %s", code, te.stderr)
	}
	var entries []projectEntry
	if err := json.Unmarshal(te.stdout.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, te.stdout)
	}
	if len(entries) != 1 || entries[0].ID != id || entries[0].Files != 2 || entries[0].Template != "wiki" {
		t.Fatalf("entries = %+v", entries)
	}

	// load
	te.stdout.Reset()
	restore := t.TempDir()
	site := filepath.Join(restore, "site.html")
	if code := te.run("project", "load", id, "-o", restore, "--html", site); code != ExitSuccess {
		t.Fatalf("load exit code = %d, stderr: %s", code, te.stderr)
	}
	if got := readFile(t, filepath.Join(restore, "intro.md")); got != "# Intro\n\nHello.\n" {
		t.Errorf("restored intro.md = %q", got)
	}
	html := readFile(t, site)
	if !strings.Contains(html, `class="template-wiki"`) || !strings.Contains(html, "<title>Handbook</title>") {
		t.Error("site not generated with the stored layout and name")
	}
	if !strings.Contains(te.stdout.String(), "layout wiki, theme forest") {
		t.Errorf("stdout = %q", te.stdout)
	}

	// another user cannot load or delete it
	other := newTestEnv(t)
	other.Config = te.Config
	other.vars["MD2SITE_USER"] = "bob"
	if code := other.run("project", "load", id, "-o", t.TempDir()); code != ExitUsage {
		t.Errorf("foreign load exit code = %d, want %d", code, ExitUsage)
	}
	if code := other.run("project", "delete", id); code != ExitUsage {
		t.Errorf("foreign delete exit code = %d, want %d", code, ExitUsage)
	}

	// delete
	te.stdout.Reset()
	if code := te.run("project", "delete", id); code != ExitSuccess {
		t.Fatalf("delete exit code = %d, stderr: %s", code, te.stderr)
	}
	if code := te.run("project", "load", id); code != ExitIO {
		t.Errorf("load after delete exit code = %d, want %d", code, ExitIO)
	}
}

func TestProject_LoadUsesConfigSettings(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	te.vars["MD2SITE_USER"] = "ada"
	te.Config.Site.WrapOrderedLists = true
	te.Config.Site.Sanitize = true
	dir := writeDocs(t, map[string]string{
		"steps.md": "# Steps\n\n1. one\n2. two\n\n<script>alert(1)</script>\n",
	})

	if code := te.run("project", "save", dir, "--name", "Steps", "-q"); code != ExitSuccess {
		t.Fatalf("save exit code = %d, stderr: %s", code, te.stderr)
	}
	id := strings.TrimSpace(te.stdout.String())

	site := filepath.Join(t.TempDir(), "site.html")
	if code := te.run("project", "load", id, "-o", t.TempDir(), "--html", site); code != ExitSuccess {
		t.Fatalf("load exit code = %d, stderr: %s", code, te.stderr)
	}
	html := readFile(t, site)
	if !strings.Contains(html, "<ol><li>one</li>") {
		t.Error("ordered list not wrapped as configured")
	}
	if strings.Contains(html, "alert(1)") {
		t.Error("script kept although sanitizing is configured")
	}
}

func TestProject_ExportImport(t *testing.T) {
	t.Parallel()
	te := newTestEnv(t)
	te.vars["MD2SITE_USER"] = "ada"
	dir := writeDocs(t, map[string]string{
		"intro.md": "# Intro\n\nHello.\n",
		"guide.md": "# Guide\n\nSteps.\n",
	})

	if code := te.run("project", "save", dir, "--name", "Handbook", "-t", "blog", "--theme", "sunset", "-q"); code != ExitSuccess {
		t.Fatalf("save exit code = %d, stderr: %s", code, te.stderr)
	}
	id := strings.TrimSpace(te.stdout.String())

	// export to stdout
	te.stdout.Reset()
	if code := te.run("project", "export", id); code != ExitSuccess {
		t.Fatalf("export exit code = %d, stderr: %s", code, te.stderr)
	}
	for _, want := range []string{"name: Handbook", "template: blog", "theme: sunset", "intro.md"} {
		if !strings.Contains(te.stdout.String(), want) {
			t.Errorf("export output missing %q:\n%s", want, te.stdout)
		}
	}

	// export to a file, then import it as another user
	exported := filepath.Join(t.TempDir(), "handbook.yaml")
	if code := te.run("project", "export", id, "-o", exported, "-q"); code != ExitSuccess {
		t.Fatalf("export -o exit code = %d, stderr: %s", code, te.stderr)
	}

	other := newTestEnv(t)
	other.Config = te.Config
	other.vars["MD2SITE_USER"] = "bob"
	if code := other.run("project", "import", exported, "--name", "Copy", "-q"); code != ExitSuccess {
		t.Fatalf("import exit code = %d, stderr: %s", code, other.stderr)
	}
	copyID := strings.TrimSpace(other.stdout.String())
	if copyID == "" || copyID == id {
		t.Fatalf("import id = %q, want a new id", copyID)
	}

	other.stdout.Reset()
	if code := other.run("project", "list", "--json"); code != ExitSuccess {
		t.Fatalf("list exit code = %d, stderr: %s", code, other.stderr)
	}
	var entries []projectEntry
	if err := json.Unmarshal(other.stdout.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, other.stdout)
	}
	if len(entries) != 1 || entries[0].Name != "Copy" || entries[0].Files != 2 ||
		entries[0].Template != "blog" || entries[0].Theme != "sunset" {
		t.Errorf("entries = %+v", entries)
	}

	restore := t.TempDir()
	if code := other.run("project", "load", copyID, "-o", restore, "-q"); code != ExitSuccess {
		t.Fatalf("load exit code = %d, stderr: %s", code, other.stderr)
	}
	if got := readFile(t, filepath.Join(restore, "guide.md")); got != "# Guide\n\nSteps.\n" {
		t.Errorf("restored guide.md = %q", got)
	}

	// bob cannot export ada's project
	if code := other.run("project", "export", id); code != ExitUsage {
		t.Errorf("foreign export exit code = %d, want %d", code, ExitUsage)
	}
}

func TestProject_ImportErrors(t *testing.T) {
	t.Parallel()
	dir := writeDocs(t, map[string]string{
		"unknown-key.yaml": "name: x\nowner: ada\nfiles:\n  - name: a.md\n    content: \"# A\"\n",
		"bad-file.yaml":    "name: x\nfiles:\n  - name: a.exe\n    content: boom\n",
		"no-name.yaml":     "files:\n  - name: a.md\n    content: \"# A\"\n",
	})

	tests := []struct {
		name     string
		file     string
		wantCode int
	}{
		{"unknown key", "unknown-key.yaml", ExitUsage},
		{"disallowed file type", "bad-file.yaml", ExitUsage},
		{"missing name", "no-name.yaml", ExitUsage},
		{"missing document", "absent.yaml", ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv(t)
			te.vars["MD2SITE_USER"] = "ada"

			if code := te.run("project", "import", filepath.Join(dir, tt.file)); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
		})
	}
}

func TestProject_Errors(t *testing.T) {
	t.Parallel()
	dir := writeDocs(t, map[string]string{"a.md": "# A\n"})

	tests := []struct {
		name     string
		user     string
		args     []string
		wantCode int
	}{
		{"no subcommand", "ada", []string{"project"}, ExitUsage},
		{"unknown subcommand", "ada", []string{"project", "rename"}, ExitUsage},
		{"save without name", "ada", []string{"project", "save", dir}, ExitUsage},
		{"save without inputs", "ada", []string{"project", "save", "--name", "x"}, ExitUsage},
		{"save without user", "", []string{"project", "save", dir, "--name", "x"}, ExitUsage},
		{"list without user", "", []string{"project", "list"}, ExitUsage},
		{"load unknown id", "ada", []string{"project", "load", "nope"}, ExitIO},
		{"export without id", "ada", []string{"project", "export"}, ExitUsage},
		{"import without file", "ada", []string{"project", "import"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv(t)
			te.vars["MD2SITE_USER"] = tt.user

			if code := te.run(tt.args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
		})
	}
}

func TestResolveUser(t *testing.T) {
	t.Parallel()

	vars := map[string]string{"USER": "login"}
	getenv := func(k string) string { return vars[k] }

	if got := resolveUser("flag", &envConfig{User: "env"}, getenv); got != "flag" {
		t.Errorf("flag user = %q", got)
	}
	if got := resolveUser("", &envConfig{User: "env"}, getenv); got != "env" {
		t.Errorf("env user = %q", got)
	}
	if got := resolveUser(" ", &envConfig{}, getenv); got != "login" {
		t.Errorf("login user = %q", got)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/logfields"
	"github.com/alnah/go-md2site/internal/store"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// maxProjectDocument bounds an imported project file.
const maxProjectDocument = 64 << 20

// projectFlags holds flags for the project subcommands.
type projectFlags struct {
	common   commonFlags
	db       string
	user     string
	name     string
	id       string
	template string
	theme    string
	output   string
	html     string
}

// projectDocument is the YAML form of a project used by export and import.
// Ids and owners are not exported; an import always creates a new project
// owned by the importing user.
type projectDocument struct {
	Name     string         `yaml:"name"`
	Template string         `yaml:"template,omitempty"`
	Theme    string         `yaml:"theme,omitempty"`
	Files    []documentFile `yaml:"files"`
}

type documentFile struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

// runProject dispatches project save|load|list|delete|export|import.
func runProject(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
			printProjectUsage(env.Stdout)
			return nil
		}
		printProjectUsage(env.Stderr)
		return fmt.Errorf("%w: project needs a subcommand (save, load, list, delete, export, import)", ErrUsage)
	}
	sub, args := args[0], args[1:]

	f := &projectFlags{}
	fs := newFlagSet("project "+sub, env, printProjectUsage)
	fs.StringVar(&f.db, "db", "", "project database (default: storage.path)")
	fs.StringVarP(&f.user, "user", "u", "", "project owner (default: $MD2SITE_USER, then $USER)")
	addCommonFlags(fs, &f.common)
	switch sub {
	case "save":
		fs.StringVar(&f.name, "name", "", "project name (required)")
		fs.StringVar(&f.id, "id", "", "existing project id to overwrite")
		fs.StringVarP(&f.template, "template", "t", "", "layout stored with the project")
		fs.StringVar(&f.theme, "theme", "", "theme stored with the project")
	case "load":
		fs.StringVarP(&f.output, "output", "o", ".", "directory for the project files")
		fs.StringVar(&f.html, "html", "", "also generate the site to this HTML file")
	case "list":
		addJSONFlag(fs, &f.common)
	case "delete":
	case "export":
		fs.StringVarP(&f.output, "output", "o", "", "YAML file to write (default: stdout)")
	case "import":
		fs.StringVar(&f.name, "name", "", "name for the imported project (default: the file's name)")
	default:
		printProjectUsage(env.Stderr)
		return fmt.Errorf("%w: unknown project subcommand %q", ErrUsage, sub)
	}

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	cfg, envCfg, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}
	user := resolveUser(f.user, envCfg, env.Getenv)
	dbPath := f.db
	if dbPath == "" {
		dbPath = cfg.Storage.Path
	}

	st, err := store.Open(dbPath, store.Options{MaxFileSize: cfg.Storage.MaxFileSize, Now: env.Now})
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	switch sub {
	case "save":
		return projectSave(ctx, st, rest, user, f, cfg, env)
	case "load":
		return projectLoad(ctx, st, rest, user, f, cfg, env)
	case "list":
		return projectList(ctx, st, user, f, env)
	case "export":
		return projectExport(ctx, st, rest, user, f, env)
	case "import":
		return projectImport(ctx, st, rest, user, f, env)
	default:
		return projectDelete(ctx, st, rest, user, f, env)
	}
}

// resolveUser picks --user, then MD2SITE_USER, then the login name.
func resolveUser(flagUser string, envCfg *envConfig, getenv func(string) string) string {
	for _, u := range []string{flagUser, envCfg.User, getenv("USER"), getenv("USERNAME")} {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}
	return ""
}

func projectSave(ctx context.Context, st *store.SQLiteStore, rest []string, user string, f *projectFlags, cfg *config.Config, env *Environment) error {
	if len(rest) == 0 {
		return fmt.Errorf("%w: project save needs input files or directories", ErrUsage)
	}
	paths, err := fileutil.ExpandInputs(rest)
	if err != nil {
		return err
	}

	files := make([]store.File, 0, len(paths))
	for _, p := range paths {
		content, err := readInput(p, cfg.Storage.MaxFileSize)
		if err != nil {
			return err
		}
		files = append(files, store.File{Name: filepath.Base(p), Content: content})
	}

	template := f.template
	if template == "" {
		template = cfg.Site.Template
	}
	themeName := f.theme
	if themeName == "" {
		themeName = cfg.Site.Theme
	}

	id, err := st.Save(ctx, store.Project{
		ID:       f.id,
		UserID:   user,
		Name:     f.name,
		Theme:    themeName,
		Template: template,
		Files:    files,
	})
	if err != nil {
		return err
	}
	newLogger(env.Stderr, f.common).Debug("project saved",
		logfields.ProjectID(id),
		logfields.UserID(user),
		logfields.Files(len(files)),
	)
	if f.common.quiet {
		fmt.Fprintln(env.Stdout, id)
		return nil
	}
	fmt.Fprintf(env.Stdout, "Saved project %q (%d files): %s\n", f.name, len(files), id)
	return nil
}

func projectLoad(ctx context.Context, st *store.SQLiteStore, rest []string, user string, f *projectFlags, cfg *config.Config, env *Environment) error {
	if len(rest) != 1 {
		return fmt.Errorf("%w: project load takes one project id", ErrUsage)
	}
	p, err := ownedProject(ctx, st, rest[0], user)
	if err != nil {
		return err
	}

	files := make([]md2site.File, len(p.Files))
	for i, file := range p.Files {
		// Stored names are base names; Base again keeps writes inside the output dir.
		name := filepath.Base(file.Name)
		if err := fileutil.WriteOutput(filepath.Join(f.output, name), []byte(file.Content)); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		files[i] = md2site.File{Name: name, Content: file.Content}
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Restored %d files of %q to %s\n", len(files), p.Name, f.output)
	}

	if f.html == "" {
		return nil
	}
	opts, err := generatorOptions(projectConfig(cfg, p), env, newLogger(env.Stderr, f.common), 0)
	if err != nil {
		return err
	}
	g, err := md2site.NewGenerator(opts...)
	if err != nil {
		return err
	}
	res, err := g.Generate(ctx, files)
	if err != nil {
		return err
	}
	if err := fileutil.WriteOutput(f.html, []byte(res.HTML)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Generated %s (%d pages, layout %s, theme %s)\n", f.html, len(res.Pages), res.Template, res.Theme)
	}
	return nil
}

// projectConfig returns a copy of cfg that renders p with its stored name,
// layout and theme. Stored files are rendered as saved, without enhancement.
func projectConfig(cfg *config.Config, p store.Project) *config.Config {
	c := *cfg
	c.Site.Title = p.Name
	c.Site.Template = p.Template
	if p.Theme != "" {
		c.Site.Theme = p.Theme
		c.Site.Colors = nil
	}
	c.Enhance.Enabled = false
	return &c
}

// projectEntry is one project in list --json output.
type projectEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	Theme     string    `json:"theme"`
	Files     int       `json:"files"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func projectList(ctx context.Context, st *store.SQLiteStore, user string, f *projectFlags, env *Environment) error {
	projects, err := st.List(ctx, user)
	if err != nil {
		return err
	}

	entries := make([]projectEntry, len(projects))
	for i, p := range projects {
		entries[i] = projectEntry{
			ID:        p.ID,
			Name:      p.Name,
			Template:  p.Template,
			Theme:     p.Theme,
			Files:     len(p.Files),
			UpdatedAt: p.UpdatedAt,
		}
	}

	if f.common.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		if !f.common.quiet {
			fmt.Fprintln(env.Stdout, "No projects")
		}
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(env.Stdout, "%s  %-20s %d files  %s/%s  %s\n",
			e.ID, e.Name, e.Files, e.Template, e.Theme, e.UpdatedAt.Format(time.DateTime))
	}
	return nil
}

func projectDelete(ctx context.Context, st *store.SQLiteStore, rest []string, user string, f *projectFlags, env *Environment) error {
	if len(rest) != 1 {
		return fmt.Errorf("%w: project delete takes one project id", ErrUsage)
	}
	if err := st.Delete(ctx, user, rest[0]); err != nil {
		return err
	}
	newLogger(env.Stderr, f.common).Debug("project deleted", logfields.ProjectID(rest[0]), logfields.UserID(user))
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Deleted project %s\n", rest[0])
	}
	return nil
}

func projectExport(ctx context.Context, st *store.SQLiteStore, rest []string, user string, f *projectFlags, env *Environment) error {
	if len(rest) != 1 {
		return fmt.Errorf("%w: project export takes one project id", ErrUsage)
	}
	p, err := ownedProject(ctx, st, rest[0], user)
	if err != nil {
		return err
	}

	doc := projectDocument{Name: p.Name, Template: p.Template, Theme: p.Theme, Files: make([]documentFile, len(p.Files))}
	for i, file := range p.Files {
		doc.Files[i] = documentFile(file)
	}
	out, err := yamlutil.Marshal(doc)
	if err != nil {
		return err
	}

	if f.output == "" {
		_, err := env.Stdout.Write(out)
		return err
	}
	if err := fileutil.WriteOutput(f.output, out); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Exported project %q to %s\n", p.Name, f.output)
	}
	return nil
}

func projectImport(ctx context.Context, st *store.SQLiteStore, rest []string, user string, f *projectFlags, env *Environment) error {
	if len(rest) != 1 {
		return fmt.Errorf("%w: project import takes one YAML file", ErrUsage)
	}

	var doc projectDocument
	dec := yamlutil.Decoder{Strict: true, MaxBytes: maxProjectDocument}
	if err := dec.DecodeFile(rest[0], &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrProjectDocument, rest[0], err)
	}
	if f.name != "" {
		doc.Name = f.name
	}

	files := make([]store.File, len(doc.Files))
	for i, file := range doc.Files {
		files[i] = store.File(file)
	}
	id, err := st.Save(ctx, store.Project{
		UserID:   user,
		Name:     doc.Name,
		Theme:    doc.Theme,
		Template: doc.Template,
		Files:    files,
	})
	if err != nil {
		return err
	}
	newLogger(env.Stderr, f.common).Debug("project imported",
		logfields.ProjectID(id),
		logfields.UserID(user),
		logfields.Files(len(files)),
	)
	if f.common.quiet {
		fmt.Fprintln(env.Stdout, id)
		return nil
	}
	fmt.Fprintf(env.Stdout, "Imported project %q (%d files): %s\n", doc.Name, len(files), id)
	return nil
}

// ownedProject loads id and checks that user owns it.
func ownedProject(ctx context.Context, st *store.SQLiteStore, id, user string) (store.Project, error) {
	if user == "" {
		return store.Project{}, store.ErrUnauthenticated
	}
	p, err := st.Load(ctx, id)
	if err != nil {
		return store.Project{}, err
	}
	if p.UserID != user {
		return store.Project{}, store.ErrForbidden
	}
	return p, nil
}

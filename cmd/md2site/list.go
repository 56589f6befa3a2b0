package main

import (
	"encoding/json"
	"fmt"

	"github.com/alnah/go-md2site/internal/layout"
	"github.com/alnah/go-md2site/internal/theme"
)

// themeInfo is one theme in --json output.
type themeInfo struct {
	Name    string            `json:"name"`
	Title   string            `json:"title"`
	Default bool              `json:"default"`
	Colors  map[string]string `json:"colors"`
}

// templateInfo is one layout in --json output.
type templateInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// runThemes lists the colour themes.
func runThemes(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("themes", env, printThemesUsage)
	addJSONFlag(fs, &common)
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	infos := make([]themeInfo, 0, len(theme.Names()))
	for _, name := range theme.Names() {
		p, err := theme.Lookup(name)
		if err != nil {
			return err
		}
		colors := make(map[string]string)
		for _, c := range p.Colors() {
			colors[c.Key] = c.Value
		}
		infos = append(infos, themeInfo{
			Name:    name,
			Title:   p.Name,
			Default: name == theme.DefaultName,
			Colors:  colors,
		})
	}

	if common.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	for _, t := range infos {
		marker := ""
		if t.Default {
			marker = " (default)"
		}
		fmt.Fprintf(env.Stdout, "%-8s %s, primary %s%s\n", t.Name, t.Title, t.Colors["primary"], marker)
	}
	return nil
}

// runTemplates lists the page layouts.
func runTemplates(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("templates", env, printTemplatesUsage)
	addJSONFlag(fs, &common)
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	var infos []templateInfo
	for _, l := range layout.Layouts() {
		infos = append(infos, templateInfo{
			Name:        l.Name,
			Title:       l.Title,
			Description: l.Description,
			Default:     l.Name == layout.Default,
		})
	}

	if common.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	for _, l := range infos {
		marker := ""
		if l.Default {
			marker = " (default)"
		}
		fmt.Fprintf(env.Stdout, "%-10s %s%s\n", l.Name, l.Description, marker)
	}
	return nil
}

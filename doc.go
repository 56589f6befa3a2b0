// Package md2site turns a batch of Markdown files into one themed,
// standalone HTML documentation site.
//
// # Quick Start
//
//	gen, err := md2site.NewGenerator(
//	    md2site.WithTemplate("wiki"),
//	    md2site.WithTheme("ocean"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	result, err := gen.Generate(ctx, []md2site.File{
//	    {Name: "intro.md", Content: "# Introduction\n\n## Install\n..."},
//	    {Name: "usage.md", Content: "# Usage\n..."},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(md2site.DefaultFilename, []byte(result.HTML), 0o644)
//
// # Generation Pipeline
//
//  1. Validation: at least one file, .md/.markdown names, size limit. One
//     bad file rejects the whole batch.
//  2. Optional enhancement through an Enhancer, with per-call timeout and
//     retry. Failures fall back to the original text unless
//     WithStrictEnhancement is set; Result.Enhancements reports each file.
//  3. Parsing: title from the first "# " heading or the file name, sections
//     from "## " headings.
//  4. Navigation: one entry per page, ids from the slugified title.
//  5. Rendering with one of five layouts (modern, minimal, technical, blog,
//     wiki). Unknown layout names render as modern.
//
// # Renderers
//
// The default "regex" renderer applies a fixed sequence of substitutions and
// never fails. "goldmark" renders GitHub Flavored Markdown with syntax
// highlighting. Neither escapes HTML; WithSanitize filters page bodies.
//
// # Print Export
//
// ExportPDF prints a generated site with headless Chrome (go-rod), adding
// @page rules and optionally a cover page and a table of contents.
//
// # Custom Assets
//
// Stylesheets, the navigation script and the cover template are embedded.
// WithAssetPath or NewAssetLoader overrides them from a directory.
package md2site

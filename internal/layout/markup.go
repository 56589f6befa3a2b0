package layout

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2site/internal/pipeline"
)

// Markup is assembled by concatenation. Titles and rendered bodies are
// inserted verbatim; the renderer decides what is escaped.

const docHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
%s
</style>
</head>
`

// wrap produces the shared document shell. The sidebar is omitted when
// navHTML is empty.
func wrap(name, title, css, script, navHTML, content string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, docHead, title, css)
	fmt.Fprintf(&sb, "<body class=\"template-%s\">\n<div class=\"doc-container\">\n", name)
	if navHTML != "" {
		fmt.Fprintf(&sb, "<aside class=\"doc-sidebar\">\n%s</aside>\n", navHTML)
	}
	fmt.Fprintf(&sb, "<main class=\"doc-content\">\n%s</main>\n</div>\n", content)
	fmt.Fprintf(&sb, "<script>\n%s\n</script>\n</body>\n</html>\n", script)
	return sb.String()
}

// minimalDocument has its own shell: top navigation bar, no sidebar, no script.
func minimalDocument(css string, pages []pipeline.Page, nav []pipeline.NavEntry, bodies []string, fallbackTitle string) string {
	title := fallbackTitle
	if len(pages) > 0 {
		title = pages[0].Title
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, docHead, title, css)
	sb.WriteString("<body>\n<nav class=\"minimal-nav\">\n")
	for _, item := range nav {
		fmt.Fprintf(&sb, "<a href=\"#%s\" class=\"minimal-nav-link\">%s</a>\n", item.ID, item.Title)
	}
	sb.WriteString("</nav>\n<main class=\"minimal-main\">\n")
	sb.WriteString(sections(pages, bodies, "article", "minimal-article"))
	sb.WriteString("</main>\n</body>\n</html>\n")
	return sb.String()
}

// sections wraps each rendered body in a tag whose id is the page slug.
func sections(pages []pipeline.Page, bodies []string, tag, class string) string {
	var sb strings.Builder
	for i, p := range pages {
		fmt.Fprintf(&sb, "<%s id=\"%s\" class=\"%s\">\n%s\n</%s>\n", tag, p.ID(), class, bodies[i], tag)
	}
	return sb.String()
}

func modernNav(nav []pipeline.NavEntry) string {
	var sb strings.Builder
	for _, item := range nav {
		fmt.Fprintf(&sb, "<a href=\"#%s\" class=\"doc-nav-link\">%s</a>\n", item.ID, item.Title)
		if len(item.Sections) == 0 {
			continue
		}
		sb.WriteString("<div class=\"doc-nav-subsections\">\n")
		for _, s := range item.Sections {
			fmt.Fprintf(&sb, "<a href=\"#%s\" class=\"doc-nav-sublink\">%s</a>\n", s.ID, s.Title)
		}
		sb.WriteString("</div>\n")
	}
	return sb.String()
}

func technicalNav(nav []pipeline.NavEntry) string {
	var sb strings.Builder
	for _, item := range nav {
		sb.WriteString("<div class=\"tech-nav-item\">\n")
		fmt.Fprintf(&sb, "<a href=\"#%s\" class=\"tech-nav-link\">\n<span class=\"tech-nav-icon\">📄</span>\n<span>%s</span>\n</a>\n", item.ID, item.Title)
		if len(item.Sections) > 0 {
			sb.WriteString("<div class=\"tech-nav-sections\">\n")
			for _, s := range item.Sections {
				fmt.Fprintf(&sb, "<a href=\"#%s\" class=\"tech-nav-section\">%s</a>\n", s.ID, s.Title)
			}
			sb.WriteString("</div>\n")
		}
		sb.WriteString("</div>\n")
	}
	return sb.String()
}

// wikiNav always renders the contents box, even without pages.
func wikiNav(nav []pipeline.NavEntry) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"wiki-toc\">\n<h3>Contents</h3>\n")
	for _, item := range nav {
		fmt.Fprintf(&sb, "<div class=\"wiki-toc-item\">\n<a href=\"#%s\">%s</a>\n", item.ID, item.Title)
		if len(item.Sections) > 0 {
			sb.WriteString("<ul class=\"wiki-toc-sections\">\n")
			for _, s := range item.Sections {
				fmt.Fprintf(&sb, "<li><a href=\"#%s\">%s</a></li>\n", s.ID, s.Title)
			}
			sb.WriteString("</ul>\n")
		}
		sb.WriteString("</div>\n")
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// blogPosts renders one article per page; the first is featured.
func blogPosts(pages []pipeline.Page, bodies []string, date string) string {
	var sb strings.Builder
	for i, p := range pages {
		class := "blog-post"
		if i == 0 {
			class += " featured"
		}
		fmt.Fprintf(&sb, "<article id=\"%s\" class=\"%s\">\n", p.ID(), class)
		sb.WriteString("<div class=\"blog-post-header\">\n")
		fmt.Fprintf(&sb, "<h1 class=\"blog-post-title\">%s</h1>\n", p.Title)
		sb.WriteString("<div class=\"blog-post-meta\">\n")
		fmt.Fprintf(&sb, "<span class=\"blog-post-date\">%s</span>\n", date)
		fmt.Fprintf(&sb, "<span class=\"blog-post-reading-time\">%d min read</span>\n", pipeline.ReadingMinutes(p.Content))
		sb.WriteString("</div>\n</div>\n")
		fmt.Fprintf(&sb, "<div class=\"blog-post-content\">\n%s\n</div>\n</article>\n", bodies[i])
	}
	return sb.String()
}

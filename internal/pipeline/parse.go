package pipeline

import "regexp"

var (
	titleHeading   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	sectionHeading = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	markdownSuffix = regexp.MustCompile(`(?i)\.(md|markdown)$`)
)

// Section is a level-2 heading of a page.
type Section struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// Page is the parsed form of one Markdown file.
type Page struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Sections []Section `json:"sections"`
	// Source is the file name the page was parsed from.
	Source string `json:"source"`
}

// ParsePage extracts the title and sections of a Markdown file.
// The title is the first "# " heading anywhere in the text, otherwise the
// filename without its .md/.markdown suffix, matched in any case.
// Every "## " heading becomes a section, in document order, without
// de-duplicating ids.
// Content is stored with normalized line endings.
func ParsePage(filename, raw string) Page {
	content := NormalizeLineEndings(raw)

	page := Page{
		Title:    markdownSuffix.ReplaceAllString(filename, ""),
		Content:  content,
		Sections: []Section{},
		Source:   filename,
	}

	if m := titleHeading.FindStringSubmatch(content); m != nil {
		page.Title = m[1]
	}

	for _, m := range sectionHeading.FindAllStringSubmatch(content, -1) {
		page.Sections = append(page.Sections, Section{Title: m[1], ID: Slugify(m[1])})
	}

	return page
}

// ID returns the anchor id of the page.
func (p Page) ID() string {
	return Slugify(p.Title)
}

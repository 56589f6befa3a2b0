package pipeline

// NavEntry is one page in the site navigation.
type NavEntry struct {
	Title    string    `json:"title"`
	ID       string    `json:"id"`
	Sections []Section `json:"sections"`
}

// BuildNavigation maps pages to navigation entries, one per page, in order.
func BuildNavigation(pages []Page) []NavEntry {
	nav := make([]NavEntry, 0, len(pages))
	for _, p := range pages {
		sections := make([]Section, len(p.Sections))
		copy(sections, p.Sections)
		nav = append(nav, NavEntry{
			Title:    p.Title,
			ID:       p.ID(),
			Sections: sections,
		})
	}
	return nav
}

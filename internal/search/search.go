// Package search builds an in-memory index over parsed pages and ranks them
// against a free-text query.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-md2site/internal/pipeline"
)

// Defaults for Options.
const (
	DefaultMinQueryLength = 2
	DefaultMaxResults     = 50
	DefaultContextLength  = 150
	SummaryLength         = 200
	MaxKeywords           = 20
)

// Score weights.
const (
	scoreTitleExact    = 100
	scoreTitleContains = 50
	scoreTitleWord     = 25
	scorePerContentHit = 2
	scoreKeyword       = 10
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Options tunes query handling. Zero fields take the defaults.
type Options struct {
	MinQueryLength int
	MaxResults     int
	ContextLength  int
}

func (o Options) withDefaults() Options {
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = DefaultMinQueryLength
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.ContextLength <= 0 {
		o.ContextLength = DefaultContextLength
	}
	return o
}

// Entry is one indexed page.
type Entry struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Summary  string             `json:"summary"`
	Keywords []string           `json:"keywords"`
	Content  string             `json:"content"`
	Sections []pipeline.Section `json:"sections"`
}

// Result is a ranked match.
type Result struct {
	Entry
	Score   int    `json:"score"`
	Context string `json:"context"`
}

// Index is an immutable search index.
type Index struct {
	entries []Entry
	opts    Options
}

// NewIndex indexes pages in order.
func NewIndex(pages []pipeline.Page, opts Options) *Index {
	entries := make([]Entry, 0, len(pages))
	for _, p := range pages {
		sections := make([]pipeline.Section, len(p.Sections))
		copy(sections, p.Sections)
		entries = append(entries, Entry{
			ID:       p.ID(),
			Title:    p.Title,
			Summary:  truncateRunes(p.Content, SummaryLength),
			Keywords: ExtractKeywords(p.Content),
			Content:  p.Content,
			Sections: sections,
		})
	}
	return &Index{entries: entries, opts: opts.withDefaults()}
}

// Entries returns a copy of the indexed entries.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Len returns the number of indexed pages.
func (ix *Index) Len() int { return len(ix.entries) }

// Search ranks entries against query. Queries shorter than MinQueryLength
// return nil. Results with equal scores keep index order.
func (ix *Index) Search(query string) []Result {
	if utf8.RuneCountInString(query) < ix.opts.MinQueryLength {
		return nil
	}
	q := strings.ToLower(query)

	var results []Result
	for _, e := range ix.entries {
		score := scoreEntry(e, q)
		if score <= 0 {
			continue
		}
		results = append(results, Result{
			Entry:   e,
			Score:   score,
			Context: ExtractContext(e.Content, query, ix.opts.ContextLength),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > ix.opts.MaxResults {
		results = results[:ix.opts.MaxResults]
	}
	return results
}

// scoreEntry scores e against the lowercased query q.
// Only the best title rule applies.
func scoreEntry(e Entry, q string) int {
	score := 0
	title := strings.ToLower(e.Title)
	switch {
	case title == q:
		score += scoreTitleExact
	case strings.Contains(title, q):
		score += scoreTitleContains
	case anyWordContains(title, q):
		score += scoreTitleWord
	}

	score += strings.Count(strings.ToLower(e.Content), q) * scorePerContentHit

	for _, kw := range e.Keywords {
		if kw == q {
			score += scoreKeyword
			break
		}
	}
	return score
}

func anyWordContains(title, q string) bool {
	for _, w := range strings.Fields(title) {
		if strings.Contains(w, q) {
			return true
		}
	}
	return false
}

// ExtractContext returns a window of about length runes around the first
// case-insensitive match of query, with "..." marking cut ends. Without a
// match it returns the first length runes followed by "...".
func ExtractContext(content, query string, length int) string {
	runes := []rune(content)
	lower := strings.ToLower(content)
	idx := strings.Index(lower, strings.ToLower(query))
	if idx == -1 {
		return truncateRunes(content, length) + "..."
	}

	// ToLower maps rune for rune, so rune offsets agree with content.
	pos := utf8.RuneCountInString(lower[:idx])
	half := length / 2
	start := max(0, pos-half)
	end := min(len(runes), pos+utf8.RuneCountInString(query)+half)

	window := string(runes[start:end])
	if start > 0 {
		window = "..." + window
	}
	if end < len(runes) {
		window += "..."
	}
	return window
}

// Highlight wraps every case-insensitive occurrence of query in <mark>.
// The query is matched literally.
func Highlight(text, query string) string {
	if query == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(query) + `)`)
	return re.ReplaceAllString(text, "<mark>${1}</mark>")
}

// ExtractKeywords returns up to MaxKeywords words longer than three runes,
// most frequent first. Ties keep first-appearance order.
func ExtractKeywords(text string) []string {
	words := strings.Fields(nonWord.ReplaceAllString(strings.ToLower(text), " "))

	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

package pipeline

import (
	"strings"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

// Stats summarizes the size of a page.
type Stats struct {
	Words          int `json:"words"`
	Chars          int `json:"chars"`
	ReadingMinutes int `json:"readingMinutes"`
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CharCount returns the number of characters (runes) in text.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// ReadingMinutes estimates reading time, rounded up. Never less than 1.
func ReadingMinutes(text string) int {
	words := WordCount(text)
	if words == 0 {
		return 1
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// PageStats computes Stats for a page's content.
func PageStats(p Page) Stats {
	return Stats{
		Words:          WordCount(p.Content),
		Chars:          CharCount(p.Content),
		ReadingMinutes: ReadingMinutes(p.Content),
	}
}

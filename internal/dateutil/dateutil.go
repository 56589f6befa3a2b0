// Package dateutil formats dates with user-friendly tokens (YYYY, MMMM, DD...)
// for blog post headers and print cover pages.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an unusable date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds format strings read from config.
const MaxDateFormatLength = 50

const (
	// PostDateFormat matches the short US locale date shown on blog posts.
	PostDateFormat = "M/D/YYYY"
	// CoverDateFormat is the long form printed on cover pages.
	CoverDateFormat = "MMMM D, YYYY"
)

// Tokens, longest first so that MMMM is not read as MM+MM.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets are named shortcuts accepted wherever a format is.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"short":    PostDateFormat,
	"long":     CoverDateFormat,
}

// ParseDateFormat converts a token format to a Go layout.
// Text inside [brackets] is copied literally; other characters pass through.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var out strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest[1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			out.WriteString(rest[1 : 1+end])
			rest = rest[end+2:]
			continue
		}
		rest = writeToken(&out, rest)
	}
	return out.String(), nil
}

func writeToken(out *strings.Builder, rest string) string {
	for _, t := range dateTokens {
		if strings.HasPrefix(rest, t.token) {
			out.WriteString(t.goFmt)
			return rest[len(t.token):]
		}
	}
	out.WriteByte(rest[0])
	return rest[1:]
}

// Format renders t with a token format or a preset name.
func Format(t time.Time, format string) (string, error) {
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// ResolveDate expands "auto" and "auto:FORMAT" to the date of now.
// "auto" uses the long cover format; any other value is returned unchanged.
func ResolveDate(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	switch {
	case !strings.HasPrefix(lower, "auto"):
		return value, nil
	case lower == "auto":
		return Format(now, CoverDateFormat)
	case !strings.HasPrefix(lower, "auto:"):
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}

	format := value[len("auto:"):]
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	}
	return Format(now, format)
}

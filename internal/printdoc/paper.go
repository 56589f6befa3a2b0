package printdoc

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultFormat is the paper format used when none is configured.
const DefaultFormat = "A4"

// MaxMarginMM bounds each margin.
const MaxMarginMM = 100

// mmPerInch converts CSS millimetres to the inches Chrome expects.
const mmPerInch = 25.4

// Paper is a paper size in millimetres.
type Paper struct {
	WidthMM  float64
	HeightMM float64
}

// WidthInches returns the width in inches.
func (p Paper) WidthInches() float64 { return p.WidthMM / mmPerInch }

// HeightInches returns the height in inches.
func (p Paper) HeightInches() float64 { return p.HeightMM / mmPerInch }

var papers = map[string]Paper{
	"a3":      {297, 420},
	"a4":      {210, 297},
	"a5":      {148, 210},
	"letter":  {215.9, 279.4},
	"legal":   {215.9, 355.6},
	"tabloid": {279.4, 431.8},
}

// Formats returns the supported paper format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(papers))
	for name := range papers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LookupPaper returns the paper size for format (case-insensitive).
// Empty means DefaultFormat.
func LookupPaper(format string) (Paper, error) {
	if format == "" {
		format = DefaultFormat
	}
	p, ok := papers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return Paper{}, fmt.Errorf("%w: %q (available: %s)", ErrInvalidFormat, format, strings.Join(Formats(), ", "))
	}
	return p, nil
}

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// DefaultMargins matches a typical printed handbook.
var DefaultMargins = Margins{Top: 20, Right: 15, Bottom: 20, Left: 15}

// IsZero reports whether no margin is set.
func (m Margins) IsZero() bool {
	return m == Margins{}
}

// Validate checks each margin is within [0, MaxMarginMM].
func (m Margins) Validate() error {
	for _, side := range []struct {
		name string
		v    float64
	}{{"top", m.Top}, {"right", m.Right}, {"bottom", m.Bottom}, {"left", m.Left}} {
		if side.v < 0 || side.v > MaxMarginMM {
			return fmt.Errorf("%w: %s must be between 0 and %d mm, got %g", ErrInvalidMargin, side.name, MaxMarginMM, side.v)
		}
	}
	return nil
}

// Inches converts a millimetre value for Chrome's print options.
func Inches(mm float64) float64 {
	return mm / mmPerInch
}

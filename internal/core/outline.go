package core

import (
	"regexp"
	"strings"
)

// headingPattern matches ATX headings, capturing the marker run and text.
var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)

// Heading is one section boundary in a document outline. EndLine is
// exclusive: the section spans [StartLine+1, EndLine).
type Heading struct {
	Text      string
	Level     int
	StartLine int
	EndLine   int
}

// ListItem is one structurally recognized list line. IsTask is true when
// the line carries a checkbox.
type ListItem struct {
	Line   int
	Text   string
	IsTask bool
}

// Outline is the structural index of one document text snapshot:
// heading boundaries for display grouping and list items flagged as
// tasks. Line numbers are 0-based and valid only for the snapshot the
// outline was built from.
type Outline struct {
	Headings []Heading
	Items    []ListItem
}

// BuildOutline indexes the given text. Empty text yields an empty,
// non-nil outline.
func BuildOutline(text string) *Outline {
	out := &Outline{}
	if text == "" {
		return out
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			out.Headings = append(out.Headings, Heading{
				Text:      m[2],
				Level:     len(m[1]),
				StartLine: i,
				EndLine:   len(lines),
			})
			// Close every open section at the same or deeper level.
			for j := len(out.Headings) - 2; j >= 0; j-- {
				h := &out.Headings[j]
				if h.EndLine == len(lines) && h.Level >= len(m[1]) {
					h.EndLine = i
				}
			}
			continue
		}
		if c, ok := ExtractComponents(line); ok {
			out.Items = append(out.Items, ListItem{
				Line:   i,
				Text:   line,
				IsTask: c.StatusMarker != "",
			})
		}
	}
	return out
}

// SectionFor returns the text of the innermost heading whose section
// contains the given line, or "" when the line precedes all headings.
func (o *Outline) SectionFor(line int) string {
	section := ""
	level := 0
	for _, h := range o.Headings {
		if h.StartLine < line && line < h.EndLine && h.Level >= level {
			section = h.Text
			level = h.Level
		}
	}
	return section
}

// Package core contains the task engine for pomo: line component
// extraction, per-dialect deserialization, task identity and
// normalization, collection resolution and merging, the session-count
// rewriter, and the active-task tracker.
package core

import (
	"regexp"
	"strings"
)

// checkboxItemPattern matches a list item carrying a checkbox, capturing
// the status marker and the remaining body.
var checkboxItemPattern = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+\[(.)\]\s*(.*)$`)

// bareItemPattern matches a list item without a checkbox.
var bareItemPattern = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(\S.*)$`)

// trailingAnchorPattern matches a block anchor at the end of a line:
// a caret followed by an alphanumeric/hyphen identifier.
var trailingAnchorPattern = regexp.MustCompile(`\s*\^([A-Za-z0-9][A-Za-z0-9-]*)\s*$`)

// LineComponents is the dialect-independent split of one task line.
type LineComponents struct {
	// StatusMarker is the single character inside the checkbox brackets
	// (" " open, "x"/"X" done, others per user convention). Empty for a
	// bare list item with no checkbox.
	StatusMarker string
	// Body is the line text after the list prefix, with any trailing
	// block anchor stripped.
	Body string
	// BlockAnchor is the anchor identifier without its leading caret,
	// or empty when the line carries none.
	BlockAnchor string
}

// ExtractComponents splits one line of document text into its status
// marker, body, and block anchor. It reports ok=false when the line is
// not a recognizable list item. Pure function; dialect-specific parsing
// of the body happens later in the Deserializer.
func ExtractComponents(line string) (LineComponents, bool) {
	var c LineComponents

	if m := checkboxItemPattern.FindStringSubmatch(line); m != nil {
		c.StatusMarker = m[1]
		c.Body = m[2]
	} else if m := bareItemPattern.FindStringSubmatch(line); m != nil {
		c.Body = m[1]
	} else {
		return LineComponents{}, false
	}

	if m := trailingAnchorPattern.FindStringSubmatch(c.Body); m != nil {
		c.BlockAnchor = m[1]
		c.Body = trailingAnchorPattern.ReplaceAllString(c.Body, "")
	}
	c.Body = strings.TrimSpace(c.Body)

	return c, true
}

package core

import (
	"fmt"
	"strings"

	"github.com/focusvault/pomo/pkg/models"
)

// IdentityKey is the stable identity of a task record. Precedence:
// the block anchor when present, else the normalized description when
// non-empty, else the (path, line) tuple. Only the first applicable
// level participates in comparison.
type IdentityKey struct {
	Anchor      string
	Description string
	SourcePath  string
	LineNumber  int
}

// IdentityOf computes the identity key for a record. The anchor is
// normalized by stripping a leading caret and surrounding whitespace;
// the description level uses NormalizeDescription over the record's raw
// body so that rewriting dynamic metadata never shifts identity.
func IdentityOf(r models.TaskRecord) IdentityKey {
	key := IdentityKey{
		Anchor:     NormalizeAnchor(r.BlockAnchor),
		SourcePath: r.SourcePath,
		LineNumber: r.LineNumber,
	}
	if c, ok := ExtractComponents(r.RawText); ok {
		key.Description = NormalizeDescription(c.Body)
		if key.Anchor == "" {
			key.Anchor = NormalizeAnchor(c.BlockAnchor)
		}
	} else {
		key.Description = NormalizeDescription(r.Description)
	}
	return key
}

// SameTask reports whether two records resolve to the same task under
// the identity precedence: compare anchors when both records carry one,
// else normalized descriptions when both are non-empty, else the
// (path, line) tuple.
func SameTask(a, b models.TaskRecord) bool {
	return IdentityOf(a).Matches(IdentityOf(b))
}

// Matches compares two keys at the first level where both sides have a
// value.
func (k IdentityKey) Matches(other IdentityKey) bool {
	if k.Anchor != "" && other.Anchor != "" {
		return k.Anchor == other.Anchor
	}
	if k.Description != "" && other.Description != "" {
		return k.Description == other.Description
	}
	return k.SourcePath == other.SourcePath && k.LineNumber == other.LineNumber
}

// String renders the key at its highest applicable level, usable as a
// deterministic map key in logs and events.
func (k IdentityKey) String() string {
	if k.Anchor != "" {
		return "anchor:" + k.Anchor
	}
	if k.Description != "" {
		return "desc:" + k.Description
	}
	return fmt.Sprintf("loc:%s:%d", k.SourcePath, k.LineNumber)
}

// NormalizeAnchor strips the leading caret and surrounding whitespace
// from a block anchor token.
func NormalizeAnchor(anchor string) string {
	return strings.TrimPrefix(strings.TrimSpace(anchor), "^")
}

// NormalizeDescription strips all dynamic metadata from a task body and
// collapses whitespace, yielding a description-level identity that is
// stable across counter increments and metadata edits. The dialect does
// not matter here: both dialects' patterns are removed unconditionally.
func NormalizeDescription(text string) string {
	s := text
	for _, re := range sessionPatterns {
		s = re.ReplaceAllString(s, " ")
	}
	s = bracketFieldPattern.ReplaceAllString(s, " ")
	for _, p := range emojiDatePatterns {
		s = p.re.ReplaceAllString(s, " ")
	}
	for _, p := range emojiPriorityPatterns {
		s = p.re.ReplaceAllString(s, " ")
	}
	s = emojiRecurrencePattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	s = trailingAnchorPattern.ReplaceAllString(s, "")
	s = renderWikiLinks(s)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

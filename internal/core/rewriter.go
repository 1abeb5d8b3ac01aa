package core

import (
	"errors"
	"strconv"
	"strings"
)

// ErrTaskNotFound is returned when the rewriter cannot locate the target
// identity in the document by any method. Callers skip persistence and
// leave the document untouched.
var ErrTaskNotFound = errors.New("task not found in document")

// RewriteResult is the outcome of a session-count rewrite.
type RewriteResult struct {
	// NewText is the full rewritten document text. Equal to the input
	// when Changed is false.
	NewText string
	// LineNumber is the 0-based line that was rewritten, -1 when no
	// line matched.
	LineNumber int
	// NewLine is the rewritten line.
	NewLine string
	// Changed reports whether NewText differs from the input. A false
	// value means the caller must not persist or trigger re-indexing.
	Changed bool
}

// IncrementSession locates the task with the given identity in
// documentText and increments its embedded session counter by one,
// preserving the counter's original spelling, any expected-count suffix,
// and every other byte of the line. The collection is re-derived from
// documentText; stale line numbers in the key are only the last-resort
// match. Exactly one line changes; all other lines pass through
// unmodified.
func IncrementSession(documentText string, target IdentityKey, deser Deserializer) (RewriteResult, error) {
	col := NewResolver(deser).Resolve(target.SourcePath, documentText, BuildOutline(documentText))

	rec, ok := col.Find(target)
	if !ok {
		return RewriteResult{NewText: documentText, LineNumber: -1}, ErrTaskNotFound
	}

	lines := strings.Split(documentText, "\n")
	if rec.LineNumber < 0 || rec.LineNumber >= len(lines) {
		return RewriteResult{NewText: documentText, LineNumber: -1}, ErrTaskNotFound
	}

	oldLine := lines[rec.LineNumber]
	newLine := bumpSessionCount(oldLine)
	if newLine == oldLine {
		return RewriteResult{NewText: documentText, LineNumber: rec.LineNumber, NewLine: oldLine}, nil
	}

	lines[rec.LineNumber] = newLine
	return RewriteResult{
		NewText:    strings.Join(lines, "\n"),
		LineNumber: rec.LineNumber,
		NewLine:    newLine,
		Changed:    true,
	}, nil
}

// bumpSessionCount rewrites one line's session counter to current+1.
// An existing counter keeps its spelling variant; only the actual-count
// digits change. When no counter exists, a canonical "[🍅:: 1]" field is
// inserted immediately before the first trailing metadata token, or
// appended at line end when the line carries none.
func bumpSessionCount(line string) string {
	for _, re := range sessionPatterns {
		m := re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		current, err := strconv.Atoi(line[m[2]:m[3]])
		if err != nil {
			continue
		}
		return line[:m[2]] + strconv.Itoa(current+1) + line[m[3]:]
	}

	if i := metadataStart(line); i >= 0 {
		head := strings.TrimRight(line[:i], " \t")
		return head + " [🍅:: 1] " + line[i:]
	}
	return strings.TrimRight(line, " \t") + " [🍅:: 1]"
}

// metadataStart returns the byte offset of the first recognized trailing
// metadata token on the line (date/priority/recurrence sentinel, bracket
// field, tag, or block anchor), or -1 when the line has none.
func metadataStart(line string) int {
	best := -1
	consider := func(i int) {
		if i >= 0 && (best == -1 || i < best) {
			best = i
		}
	}

	for _, p := range emojiDatePatterns {
		if loc := p.re.FindStringIndex(line); loc != nil {
			consider(loc[0])
		}
	}
	for _, p := range emojiPriorityPatterns {
		if loc := p.re.FindStringIndex(line); loc != nil {
			consider(loc[0])
		}
	}
	if loc := emojiRecurrencePattern.FindStringIndex(line); loc != nil {
		consider(loc[0])
	}
	if loc := bracketFieldPattern.FindStringIndex(line); loc != nil {
		consider(loc[0])
	}
	for _, loc := range tagPattern.FindAllStringIndex(line, -1) {
		// Only tags preceded by whitespace count; "#" mid-word is text.
		if loc[0] > 0 && line[loc[0]-1] != ' ' && line[loc[0]-1] != '\t' {
			continue
		}
		consider(loc[0])
		break
	}
	if loc := trailingAnchorPattern.FindStringIndex(line); loc != nil {
		if caret := strings.Index(line[loc[0]:], "^"); caret >= 0 {
			consider(loc[0] + caret)
		}
	}
	return best
}

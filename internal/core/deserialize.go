package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/focusvault/pomo/pkg/models"
)

// TaskDetail holds the structured fields extracted from a task line body.
// Every field defaults to empty/unset when its marker is missing or
// malformed; deserialization is total and never fails.
type TaskDetail struct {
	Description      string
	Dates            models.TaskDates
	Priority         models.TaskPriority
	Recurrence       string
	Tags             []string
	SessionsActual   int
	SessionsExpected int
}

// Deserializer parses a task line body according to one metadata dialect.
type Deserializer interface {
	Dialect() models.Dialect
	Deserialize(body string) TaskDetail
}

// NewDeserializer returns the Deserializer for the given dialect,
// defaulting to emoji shorthand for unrecognized values.
func NewDeserializer(d models.Dialect) Deserializer {
	if d == models.DialectDataview {
		return &dataviewDeserializer{}
	}
	return &emojiDeserializer{}
}

// Session counter spellings shared by both dialects, tried in order.
// The double-colon bracket form is canonical; the single-colon and bare
// forms are accepted for compatibility with hand-edited lines.
var (
	sessionDoubleColonPattern = regexp.MustCompile(`\[🍅::\s*(\d+)\s*(?:/\s*(\d+)\s*)?\]`)
	sessionSingleColonPattern = regexp.MustCompile(`\[🍅:\s*(\d+)\s*(?:/\s*(\d+)\s*)?\]`)
	sessionBarePattern        = regexp.MustCompile(`🍅\s*(\d+)(?:\s*/\s*(\d+))?`)
)

var sessionPatterns = []*regexp.Regexp{
	sessionDoubleColonPattern,
	sessionSingleColonPattern,
	sessionBarePattern,
}

// tagPattern matches inline "#tag" tokens, including nested "a/b" tags.
var tagPattern = regexp.MustCompile(`#[\p{L}\p{N}_][\p{L}\p{N}_/-]*`)

// wikiLinkPattern matches "[[target]]" and "[[target|alias]]" tokens.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// emoji dialect sentinels, each followed by an ISO calendar date.
var emojiDatePatterns = []struct {
	re  *regexp.Regexp
	set func(d *models.TaskDates, t time.Time)
}{
	{regexp.MustCompile(`📅\s*(\d{4}-\d{2}-\d{2})`), func(d *models.TaskDates, t time.Time) { d.Due = t }},
	{regexp.MustCompile(`⏳\s*(\d{4}-\d{2}-\d{2})`), func(d *models.TaskDates, t time.Time) { d.Scheduled = t }},
	{regexp.MustCompile(`🛫\s*(\d{4}-\d{2}-\d{2})`), func(d *models.TaskDates, t time.Time) { d.Start = t }},
	{regexp.MustCompile(`➕\s*(\d{4}-\d{2}-\d{2})`), func(d *models.TaskDates, t time.Time) { d.Created = t }},
	{regexp.MustCompile(`✅\s*(\d{4}-\d{2}-\d{2})`), func(d *models.TaskDates, t time.Time) { d.Done = t }},
	{regexp.MustCompile(`❌\s*(\d{4}-\d{2}-\d{2})`), func(d *models.TaskDates, t time.Time) { d.Cancelled = t }},
}

var emojiPriorityPatterns = []struct {
	re       *regexp.Regexp
	priority models.TaskPriority
}{
	{regexp.MustCompile(`⏫`), models.PriorityHigh},
	{regexp.MustCompile(`🔼`), models.PriorityMedium},
	{regexp.MustCompile(`🔽`), models.PriorityLow},
}

// emojiRecurrencePattern captures the free-text rule after the repeat
// sentinel, up to the next recognized marker. The rule is carried
// verbatim and never evaluated here.
var emojiRecurrencePattern = regexp.MustCompile(`🔁\s*([^📅⏳🛫➕✅❌⏫🔼🔽🍅#\[\^]*)`)

type emojiDeserializer struct{}

func (d *emojiDeserializer) Dialect() models.Dialect { return models.DialectTasksEmoji }

func (d *emojiDeserializer) Deserialize(body string) TaskDetail {
	var detail TaskDetail
	rest := body

	rest, detail.SessionsActual, detail.SessionsExpected = extractSessions(rest)

	for _, p := range emojiDatePatterns {
		if m := p.re.FindStringSubmatch(rest); m != nil {
			if t, ok := parseCalendarDate(m[1]); ok {
				p.set(&detail.Dates, t)
			}
			rest = p.re.ReplaceAllString(rest, " ")
		}
	}

	for _, p := range emojiPriorityPatterns {
		if p.re.MatchString(rest) {
			detail.Priority = p.priority
			rest = p.re.ReplaceAllString(rest, " ")
			break
		}
	}

	if m := emojiRecurrencePattern.FindStringSubmatch(rest); m != nil {
		detail.Recurrence = strings.TrimSpace(m[1])
		rest = emojiRecurrencePattern.ReplaceAllString(rest, " ")
	}

	rest, detail.Tags = extractTags(rest)
	detail.Description = renderDescription(rest)
	return detail
}

type dataviewDeserializer struct{}

// bracketFieldPattern matches "[key:: value]" pairs with an ASCII key.
// Unknown keys are other tools' metadata and stay in the body untouched.
var bracketFieldPattern = regexp.MustCompile(`\[([A-Za-z]+)::\s*([^\[\]]*)\]`)

func (d *dataviewDeserializer) Dialect() models.Dialect { return models.DialectDataview }

func (d *dataviewDeserializer) Deserialize(body string) TaskDetail {
	var detail TaskDetail
	rest := body

	rest, detail.SessionsActual, detail.SessionsExpected = extractSessions(rest)
	rest = d.deserializeFields(rest, &detail)
	rest, detail.Tags = extractTags(rest)
	detail.Description = renderDescription(rest)
	return detail
}

// deserializeFields extracts recognized bracket fields from s into detail
// and returns s with those fields removed. Unrecognized fields are other
// tools' metadata and are left in place.
func (d *dataviewDeserializer) deserializeFields(s string, detail *TaskDetail) string {
	for {
		m := bracketFieldPattern.FindStringSubmatchIndex(s)
		if m == nil {
			return s
		}
		key := strings.ToLower(s[m[2]:m[3]])
		value := strings.TrimSpace(s[m[4]:m[5]])
		recognized := true

		switch key {
		case "due", "deadline":
			if t, ok := parseCalendarDate(value); ok {
				detail.Dates.Due = t
			}
		case "scheduled":
			if t, ok := parseCalendarDate(value); ok {
				detail.Dates.Scheduled = t
			}
		case "start":
			if t, ok := parseCalendarDate(value); ok {
				detail.Dates.Start = t
			}
		case "created":
			if t, ok := parseCalendarDate(value); ok {
				detail.Dates.Created = t
			}
		case "completion", "done":
			if t, ok := parseCalendarDate(value); ok {
				detail.Dates.Done = t
			}
		case "cancelled":
			if t, ok := parseCalendarDate(value); ok {
				detail.Dates.Cancelled = t
			}
		case "priority":
			detail.Priority = parsePriorityWord(value)
		case "repeat", "recurrence":
			detail.Recurrence = value
		default:
			recognized = false
		}

		if !recognized {
			head := s[:m[1]]
			tail := d.deserializeFields(s[m[1]:], detail)
			return head + tail
		}
		s = s[:m[0]] + " " + s[m[1]:]
	}
}

// extractSessions pulls the session counter out of s using the first
// matching spelling. Absent counters default to 0/0.
func extractSessions(s string) (rest string, actual, expected int) {
	for _, re := range sessionPatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		actual, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			expected, _ = strconv.Atoi(m[2])
		}
		return re.ReplaceAllString(s, " "), actual, expected
	}
	return s, 0, 0
}

// extractTags removes "#tag" tokens from s and returns them in document
// order without the leading hash.
func extractTags(s string) (string, []string) {
	matches := tagPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return s, nil
	}
	tags := make([]string, len(matches))
	for i, m := range matches {
		tags[i] = strings.TrimPrefix(m, "#")
	}
	return tagPattern.ReplaceAllString(s, " "), tags
}

// renderDescription rewrites wiki links to their display form and
// collapses the whitespace left behind by removed markers.
func renderDescription(s string) string {
	s = renderWikiLinks(s)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// renderWikiLinks replaces "[[target|alias]]" with the alias and
// "[[target]]" with the last path segment of the target.
func renderWikiLinks(s string) string {
	return wikiLinkPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := wikiLinkPattern.FindStringSubmatch(m)
		if sub == nil {
			return m
		}
		if sub[2] != "" {
			return strings.TrimSpace(sub[2])
		}
		target := strings.TrimSpace(sub[1])
		if i := strings.LastIndex(target, "/"); i >= 0 {
			target = target[i+1:]
		}
		return target
	})
}

// parseCalendarDate parses an ISO YYYY-MM-DD date. Malformed input
// reports ok=false; callers leave the field unset.
func parseCalendarDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parsePriorityWord maps a dataview priority value to a TaskPriority.
func parsePriorityWord(s string) models.TaskPriority {
	switch strings.ToLower(s) {
	case "high", "highest", "urgent":
		return models.PriorityHigh
	case "medium", "normal":
		return models.PriorityMedium
	case "low", "lowest":
		return models.PriorityLow
	default:
		return models.PriorityNone
	}
}

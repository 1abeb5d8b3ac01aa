package core

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/focusvault/pomo/pkg/models"
)

// genDescription draws a plausible task description: words without
// metadata characters.
func genDescription(rt *rapid.T) string {
	return rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,40}[A-Za-z]`).Draw(rt, "description")
}

// Feature: pomo, Property: identity is stable under counter rewrites.
// Incrementing the session counter on a line never changes the line's
// computed identity.
func TestProperty_IdentityStableUnderIncrement(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		desc := genDescription(rt)
		sessions := rapid.IntRange(0, 50).Draw(rt, "sessions")
		withAnchor := rapid.Bool().Draw(rt, "withAnchor")

		line := fmt.Sprintf("- [ ] %s [🍅:: %d] 📅 2024-05-01", desc, sessions)
		if withAnchor {
			line += " ^ab12"
		}

		before := recordForLine(rt, line)
		bumped := bumpSessionCount(line)
		after := recordForLine(rt, bumped)

		if !IdentityOf(before).Matches(IdentityOf(after)) {
			rt.Fatalf("identity changed:\n before %q\n after  %q", line, bumped)
		}
	})
}

// Feature: pomo, Property: normalization is idempotent over task-shaped
// bodies built from description words and metadata tokens.
func TestProperty_NormalizeIdempotent(t *testing.T) {
	fragments := []string{
		"📅 2024-05-01", "⏳ 2024-06-02", "🛫 2024-04-01", "➕ 2024-03-15",
		"[🍅:: 3]", "[🍅: 2]", "🍅 4", "[🍅:: 1/4]",
		"⏫", "🔼", "🔽", "🔁 every week",
		"#work", "#deep/focus",
		"[due:: 2024-05-01]", "[priority:: high]", "[custom:: kept]",
		"[[projects/report|the report]]", "[[notes/inbox]]",
	}
	fragmentGen := rapid.SampledFrom(fragments)

	rapid.Check(t, func(rt *rapid.T) {
		body := genDescription(rt)
		n := rapid.IntRange(0, 5).Draw(rt, "fragments")
		for i := 0; i < n; i++ {
			body += " " + fragmentGen.Draw(rt, "fragment")
		}
		if rapid.Bool().Draw(rt, "withAnchor") {
			body += " ^abc1"
		}

		once := NormalizeDescription(body)
		twice := NormalizeDescription(once)
		if once != twice {
			rt.Fatalf("normalize not idempotent for %q: %q vs %q", body, once, twice)
		}
	})
}

// Feature: pomo, Property: deserialization is total. No input body may
// panic either dialect.
func TestProperty_DeserializeTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		body := rapid.String().Draw(rt, "body")
		for _, dialect := range []models.Dialect{models.DialectTasksEmoji, models.DialectDataview} {
			d := NewDeserializer(dialect).Deserialize(body)
			if d.SessionsActual < 0 || d.SessionsExpected < 0 {
				rt.Fatalf("negative session count from %q", body)
			}
		}
	})
}

func recordForLine(rt *rapid.T, line string) models.TaskRecord {
	c, ok := ExtractComponents(line)
	if !ok {
		rt.Fatalf("line did not extract: %q", line)
	}
	return models.TaskRecord{
		RawText:      line,
		StatusMarker: c.StatusMarker,
		BlockAnchor:  c.BlockAnchor,
		SourcePath:   "prop.md",
		LineNumber:   0,
	}
}

package core

import (
	"fmt"
	"strings"

	"github.com/focusvault/pomo/pkg/models"
)

// TaskCollection is the deduplicated set of task records for one
// document at one text snapshot. No two records share a resolved
// identity; direct-scan records win collisions against external ones.
type TaskCollection struct {
	SourcePath string
	Records    []models.TaskRecord

	// Warnings lists document hygiene issues found while resolving,
	// such as duplicate block anchors. The first occurrence of a
	// duplicated anchor keeps the identity.
	Warnings []string
}

// Find returns the first record matching the given identity key under
// the anchor > description > location precedence, trying each level
// across the whole collection before falling to the next.
func (c *TaskCollection) Find(key IdentityKey) (models.TaskRecord, bool) {
	if key.Anchor != "" {
		for _, r := range c.Records {
			if NormalizeAnchor(r.BlockAnchor) == key.Anchor {
				return r, true
			}
		}
	}
	if key.Description != "" {
		for _, r := range c.Records {
			if IdentityOf(r).Description == key.Description {
				return r, true
			}
		}
	}
	for _, r := range c.Records {
		if r.SourcePath == key.SourcePath && r.LineNumber == key.LineNumber {
			return r, true
		}
	}
	return models.TaskRecord{}, false
}

// Resolver assembles the task collection for a document, merging
// direct-scan records with externally supplied ones by identity.
type Resolver interface {
	// Resolve scans the document text using the given structural index
	// and merges the external record sets in the order provided.
	// Direct-scan records are inserted first in document order; an
	// external record enters only when no existing entry shares its
	// identity. A nil outline or empty text yields an empty collection.
	Resolve(path, text string, outline *Outline, external ...[]models.TaskRecord) *TaskCollection
}

type resolver struct {
	deser Deserializer
}

// NewResolver creates a Resolver that parses task bodies with the given
// dialect deserializer.
func NewResolver(deser Deserializer) Resolver {
	return &resolver{deser: deser}
}

func (r *resolver) Resolve(path, text string, outline *Outline, external ...[]models.TaskRecord) *TaskCollection {
	col := &TaskCollection{SourcePath: path}
	if outline == nil || text == "" {
		return col
	}

	lines := strings.Split(text, "\n")
	byAnchor := make(map[string]int)
	byDesc := make(map[string]int)

	for _, item := range outline.Items {
		if !item.IsTask || item.Line < 0 || item.Line >= len(lines) {
			continue
		}
		rec, ok := r.recordFromLine(path, item.Line, lines[item.Line])
		if !ok {
			continue
		}
		rec.Section = outline.SectionFor(item.Line)

		if rec.BlockAnchor != "" {
			anchor := NormalizeAnchor(rec.BlockAnchor)
			if prev, dup := byAnchor[anchor]; dup {
				col.Warnings = append(col.Warnings, fmt.Sprintf(
					"duplicate block anchor ^%s on lines %d and %d; line %d kept",
					anchor, col.Records[prev].LineNumber, item.Line, col.Records[prev].LineNumber))
				continue
			}
			byAnchor[anchor] = len(col.Records)
		}
		if desc := IdentityOf(rec).Description; desc != "" {
			if _, seen := byDesc[desc]; !seen {
				byDesc[desc] = len(col.Records)
			}
		}
		col.Records = append(col.Records, rec)
	}

	for _, set := range external {
		for _, ext := range set {
			rec := ext.Clone()
			if rec.SourcePath == "" {
				rec.SourcePath = path
			}
			key := IdentityOf(rec)
			if key.Anchor != "" {
				if _, hit := byAnchor[key.Anchor]; hit {
					continue
				}
			} else if key.Description != "" {
				if _, hit := byDesc[key.Description]; hit {
					continue
				}
			} else if r.locationTaken(col, rec) {
				continue
			}

			if key.Anchor != "" {
				byAnchor[key.Anchor] = len(col.Records)
			}
			if key.Description != "" {
				if _, seen := byDesc[key.Description]; !seen {
					byDesc[key.Description] = len(col.Records)
				}
			}
			col.Records = append(col.Records, rec)
		}
	}

	return col
}

// recordFromLine runs the extractor and deserializer over one source
// line and assembles a direct-scan record.
func (r *resolver) recordFromLine(path string, lineNo int, line string) (models.TaskRecord, bool) {
	c, ok := ExtractComponents(line)
	if !ok || c.StatusMarker == "" {
		return models.TaskRecord{}, false
	}
	detail := r.deser.Deserialize(c.Body)
	return models.TaskRecord{
		SourcePath:       path,
		LineNumber:       lineNo,
		RawText:          line,
		StatusMarker:     c.StatusMarker,
		BlockAnchor:      c.BlockAnchor,
		Description:      detail.Description,
		Dates:            detail.Dates,
		Priority:         detail.Priority,
		Recurrence:       detail.Recurrence,
		Tags:             detail.Tags,
		SessionsActual:   detail.SessionsActual,
		SessionsExpected: detail.SessionsExpected,
		Provenance:       models.ProvenanceDirectScan,
	}, true
}

func (r *resolver) locationTaken(col *TaskCollection, rec models.TaskRecord) bool {
	for _, existing := range col.Records {
		if existing.SourcePath == rec.SourcePath && existing.LineNumber == rec.LineNumber {
			return true
		}
	}
	return false
}

package integration

import (
	"context"
	"strings"

	"github.com/focusvault/pomo/internal/core"
	"github.com/focusvault/pomo/pkg/models"
)

// previewSource scrapes task lines out of a rendered query-results
// document, the file a query plugin writes its materialized output to.
// This is the least trustworthy provenance tier: the rendered lines may
// be stale or reformatted, so records from here only ever fill gaps the
// direct scan and the query engine left. Disabled unless explicitly
// configured; never a silent fallback.
type previewSource struct {
	store       core.DocumentStore
	resultsFile string
	deser       core.Deserializer
}

// NewPreviewSource creates a TaskSource that scrapes resultsFile through
// the given document store.
func NewPreviewSource(store core.DocumentStore, resultsFile string, deser core.Deserializer) TaskSource {
	return &previewSource{store: store, resultsFile: resultsFile, deser: deser}
}

func (s *previewSource) Name() string { return "preview:" + s.resultsFile }

func (s *previewSource) Fetch(_ context.Context) ([]models.TaskRecord, error) {
	text, err := s.store.ReadDocument(s.resultsFile)
	if err != nil {
		// Missing or unreadable results file means no records, not a
		// failure worth retrying.
		return nil, nil
	}

	var records []models.TaskRecord
	for _, line := range strings.Split(text, "\n") {
		c, ok := core.ExtractComponents(line)
		if !ok || c.StatusMarker == "" {
			continue
		}
		detail := s.deser.Deserialize(c.Body)
		if detail.Description == "" && c.BlockAnchor == "" {
			continue
		}
		records = append(records, models.TaskRecord{
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
			Provenance:       models.ProvenancePreviewScrape,
		})
	}
	return records, nil
}

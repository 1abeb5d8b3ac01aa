package core

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/focusvault/pomo/pkg/models"
)

// sessionLogEntryTemplate renders one appended bullet per completed
// session in the configured log document.
const sessionLogEntryTemplate = `- {{.Date}} {{.Time}} 🍅 {{.Name}}{{if .Anchor}} ([[{{.Path}}#^{{.Anchor}}]]){{end}} — session {{.Sessions}}{{if .Expected}}/{{.Expected}}{{end}}`

// SessionLogger appends a markdown record of each completed work session
// to a log document in the vault. Optional; a zero log file disables it.
type SessionLogger interface {
	Append(rec models.TaskRecord, completedAt time.Time) error
}

type sessionLogger struct {
	store   DocumentStore
	logFile string
	tmpl    *template.Template

	// now is injectable for tests.
	now func() time.Time
}

// NewSessionLogger creates a SessionLogger appending to logFile through
// the given document store.
func NewSessionLogger(store DocumentStore, logFile string) SessionLogger {
	tmpl := template.Must(template.New("session-log-entry").Parse(sessionLogEntryTemplate))
	return &sessionLogger{
		store:   store,
		logFile: logFile,
		tmpl:    tmpl,
		now:     time.Now,
	}
}

// Append renders the log entry and appends it as a new line at the end
// of the log document, creating the document when missing.
func (l *sessionLogger) Append(rec models.TaskRecord, completedAt time.Time) error {
	if l.logFile == "" {
		return nil
	}
	if completedAt.IsZero() {
		completedAt = l.now()
	}

	var sb strings.Builder
	data := map[string]any{
		"Date":     completedAt.Format("2006-01-02"),
		"Time":     completedAt.Format("15:04"),
		"Name":     rec.Description,
		"Path":     strings.TrimSuffix(rec.SourcePath, ".md"),
		"Anchor":   NormalizeAnchor(rec.BlockAnchor),
		"Sessions": rec.SessionsActual,
		"Expected": rec.SessionsExpected,
	}
	if err := l.tmpl.Execute(&sb, data); err != nil {
		return fmt.Errorf("rendering session log entry: %w", err)
	}

	return l.store.UpdateDocument(l.logFile, func(current string) (string, error) {
		if current == "" {
			return sb.String() + "\n", nil
		}
		if !strings.HasSuffix(current, "\n") {
			current += "\n"
		}
		return current + sb.String() + "\n", nil
	})
}

package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/focusvault/pomo/pkg/models"
)

// Notifier announces completed work sessions to an external channel.
type Notifier interface {
	NotifySessionCompleted(rec models.TaskRecord) error
}

// webhookNotifier posts a small JSON payload to a configured webhook
// URL. The payload carries a preformatted text field, which both Slack
// and generic incoming webhooks accept.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a Notifier posting to the given webhook URL.
func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// NotifySessionCompleted posts the completed session to the webhook.
func (n *webhookNotifier) NotifySessionCompleted(rec models.TaskRecord) error {
	text := fmt.Sprintf("🍅 Session %d", rec.SessionsActual)
	if rec.SessionsExpected > 0 {
		text = fmt.Sprintf("%s/%d", text, rec.SessionsExpected)
	}
	text = fmt.Sprintf("%s completed: %s (%s)", text, rec.Description, rec.SourcePath)

	body, err := json.Marshal(webhookPayload{Text: text})
	if err != nil {
		return fmt.Errorf("marshalling webhook payload: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

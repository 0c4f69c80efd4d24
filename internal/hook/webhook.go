package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/presshub/presshub/internal/domain"
)

// WebhookNotifier announces publications by POSTing to a configured URL.
// The base URL is injected from config so tests can point to a local mock.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ContentPublished posts the publish event and expects a 2xx response.
func (n *WebhookNotifier) ContentPublished(ctx context.Context, item *domain.ContentItem) error {
	publishedAt := ""
	if item.PublishedAt != nil {
		publishedAt = item.PublishedAt.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(PublishEvent{
		ID:          item.ID,
		Slug:        item.Slug,
		Title:       item.Title,
		PublishedAt: publishedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal publish event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send publish event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected webhook status: %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that WebhookNotifier implements Notifier
var _ Notifier = (*WebhookNotifier)(nil)

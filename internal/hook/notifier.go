package hook

import (
	"context"

	"github.com/presshub/presshub/internal/domain"
)

// PublishEvent is the JSON body posted to the publish webhook.
type PublishEvent struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
}

// Notifier is told about items that just went live so downstream systems
// (frontend cache purge, search index, syndication) can react. Delivery is
// best effort: a failed notification never rolls back a promotion.
type Notifier interface {
	ContentPublished(ctx context.Context, item *domain.ContentItem) error
}

// NopNotifier is used when no webhook URL is configured, and in tests.
type NopNotifier struct{}

func (NopNotifier) ContentPublished(context.Context, *domain.ContentItem) error { return nil }

// compile-time check
var _ Notifier = NopNotifier{}

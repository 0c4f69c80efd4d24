package repository

import (
	"context"
	"time"

	"github.com/presshub/presshub/internal/domain"
)

// ContentRepository defines all persistence operations for content items.
// The pgx implementation is in pg_content_repo.go.
// Tests use a hand-written mock (mock_content_repo.go).
//
// ConditionalTransition and UpdateContent implement compare-and-swap on
// (id, revision): they return applied=false, not an error, when the stored
// revision no longer matches — the caller lost a race and must re-read.
type ContentRepository interface {
	Create(ctx context.Context, item *domain.ContentItem) error
	GetByID(ctx context.Context, id string) (*domain.ContentItem, error)
	GetBySlug(ctx context.Context, slug string) (*domain.ContentItem, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.ContentItem, int, error)
	Delete(ctx context.Context, id string) error

	// UpdateContent applies an edit to slug/title/body if the revision matches.
	UpdateContent(ctx context.Context, id string, expectedRevision int64, slug, title, body string) (applied bool, err error)

	// ConditionalTransition moves the item to a new status if the revision
	// matches, adjusting the lifecycle timestamps for the target status.
	// For scheduled the at argument is the future publish time; for
	// published it is the promotion time. The revision is incremented on
	// every applied transition.
	ConditionalTransition(ctx context.Context, id string, expectedRevision int64, to domain.Status, at time.Time) (applied bool, err error)

	// FindDueScheduled returns scheduled items whose publish time is at or
	// before now, ordered by scheduled_publish_at ascending with id as the
	// tiebreaker, so each scheduler pass processes items deterministically.
	FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]*domain.ContentItem, error)
}

package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/domain"
	"github.com/presshub/presshub/internal/repository"
	"github.com/presshub/presshub/internal/scheduler"
)

func newPublisher(repo *repository.MockContentRepository) *scheduler.Publisher {
	clock := func() time.Time { return testNow }
	return scheduler.NewPublisher(repo, nil, nil, zap.NewNop(), clock)
}

func TestPublisher_Attempt_Promoted(t *testing.T) {
	repo := repository.NewMockContentRepository()
	item := addScheduled(t, repo, "due", "post-due", testNow.Add(-time.Minute))

	out := newPublisher(repo).Attempt(context.Background(), item)
	if out.Kind != scheduler.OutcomePromoted {
		t.Fatalf("expected promoted, got %+v", out)
	}

	got, _ := repo.GetByID(context.Background(), "due")
	if got.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %s", got.Status)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(testNow) {
		t.Fatalf("expected published_at=%v, got %v", testNow, got.PublishedAt)
	}
}

func TestPublisher_Attempt_SkippedOnStaleRevision(t *testing.T) {
	repo := repository.NewMockContentRepository()
	item := addScheduled(t, repo, "due", "post-due", testNow.Add(-time.Minute))

	// Another writer bumps the revision between the read and the CAS.
	stale := *item
	if applied, _ := repo.ConditionalTransition(context.Background(), item.ID, item.Revision, domain.StatusDraft, testNow); !applied {
		t.Fatal("setup transition did not apply")
	}

	out := newPublisher(repo).Attempt(context.Background(), &stale)
	if out.Kind != scheduler.OutcomeSkipped || out.Reason != "concurrent-modification" {
		t.Fatalf("expected concurrent-modification skip, got %+v", out)
	}
}

func TestPublisher_Attempt_SkippedOnDeletedItem(t *testing.T) {
	repo := repository.NewMockContentRepository()
	item := addScheduled(t, repo, "due", "post-due", testNow.Add(-time.Minute))

	if err := repo.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	out := newPublisher(repo).Attempt(context.Background(), item)
	if out.Kind != scheduler.OutcomeSkipped {
		t.Fatalf("expected skip for a deleted item, got %+v", out)
	}
}

func TestPublisher_Attempt_FailedOnStoreError(t *testing.T) {
	repo := repository.NewMockContentRepository()
	item := addScheduled(t, repo, "due", "post-due", testNow.Add(-time.Minute))

	storeErr := errors.New("timeout")
	repo.TransitionErr = map[string]error{"due": storeErr}

	out := newPublisher(repo).Attempt(context.Background(), item)
	if out.Kind != scheduler.OutcomeFailed || !errors.Is(out.Err, storeErr) {
		t.Fatalf("expected failed with store error, got %+v", out)
	}
}

func TestPublisher_Attempt_FailedWhenNotDue(t *testing.T) {
	repo := repository.NewMockContentRepository()
	item := addScheduled(t, repo, "early", "post-early", testNow.Add(time.Hour))

	// The guard re-checks at attempt time; a not-yet-due item (clock skew
	// between selector and attempt) is rejected before any store write.
	out := newPublisher(repo).Attempt(context.Background(), item)
	if out.Kind != scheduler.OutcomeFailed || !errors.Is(out.Err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid-transition failure, got %+v", out)
	}

	got, _ := repo.GetByID(context.Background(), "early")
	if got.Revision != 1 {
		t.Fatal("guard rejection must not touch the store")
	}
}

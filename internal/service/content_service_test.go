package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/domain"
	"github.com/presshub/presshub/internal/repository"
	"github.com/presshub/presshub/internal/service"
)

var svcNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newService() (*service.ContentService, *repository.MockContentRepository) {
	repo := repository.NewMockContentRepository()
	svc := service.NewContentService(repo, nil, zap.NewNop(), func() time.Time { return svcNow })
	return svc, repo
}

var validReq = domain.CreateContentRequest{
	Slug:   "launch-announcement",
	Title:  "Launch Announcement",
	Body:   "We are live.",
	Author: "sam",
}

func mustCreate(t *testing.T, svc *service.ContentService) *domain.ContentItem {
	t.Helper()
	item, err := svc.Create(context.Background(), validReq)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return item
}

func TestContentService_Create(t *testing.T) {
	svc, _ := newService()

	item := mustCreate(t, svc)
	if item.ID == "" {
		t.Fatal("expected a non-empty ID")
	}
	if item.Status != domain.StatusDraft {
		t.Fatalf("expected status=draft, got %s", item.Status)
	}
	if item.Revision != 1 {
		t.Fatalf("expected revision=1, got %d", item.Revision)
	}
}

func TestContentService_Create_InvalidRequest(t *testing.T) {
	svc, _ := newService()

	bad := validReq
	bad.Slug = "Not A Slug"
	_, err := svc.Create(context.Background(), bad)
	if err != domain.ErrInvalidSlug {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}
}

func TestContentService_Create_DuplicateSlug(t *testing.T) {
	svc, _ := newService()
	mustCreate(t, svc)

	_, err := svc.Create(context.Background(), validReq)
	if !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestContentService_Update_StaleRevision(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	item := mustCreate(t, svc)

	req := domain.UpdateContentRequest{
		Slug: item.Slug, Title: "Edited", Body: "v2", Revision: item.Revision,
	}
	updated, err := svc.Update(ctx, item.ID, req)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if updated.Revision != item.Revision+1 {
		t.Fatalf("expected revision bump, got %d", updated.Revision)
	}

	// Replaying the edit with the old revision is rejected.
	_, err = svc.Update(ctx, item.ID, req)
	if !errors.Is(err, domain.ErrRevisionMismatch) {
		t.Fatalf("expected ErrRevisionMismatch, got %v", err)
	}
}

func TestContentService_ScheduleFlow(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	item := mustCreate(t, svc)

	inReview, err := svc.SubmitForReview(ctx, item.ID, item.Revision)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if inReview.Status != domain.StatusInReview {
		t.Fatalf("expected in_review, got %s", inReview.Status)
	}

	publishAt := svcNow.Add(2 * time.Hour)
	scheduled, err := svc.Schedule(ctx, item.ID, inReview.Revision, &publishAt)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if scheduled.Status != domain.StatusScheduled {
		t.Fatalf("expected scheduled, got %s", scheduled.Status)
	}
	if scheduled.ScheduledPublishAt == nil || !scheduled.ScheduledPublishAt.Equal(publishAt) {
		t.Fatalf("expected scheduled_publish_at=%v, got %v", publishAt, scheduled.ScheduledPublishAt)
	}

	back, err := svc.CancelSchedule(ctx, item.ID, scheduled.Revision)
	if err != nil {
		t.Fatalf("cancel schedule: %v", err)
	}
	if back.Status != domain.StatusDraft || back.ScheduledPublishAt != nil {
		t.Fatalf("expected clean draft after cancel, got %+v", back)
	}
}

func TestContentService_Schedule_Validation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	item := mustCreate(t, svc)
	inReview, _ := svc.SubmitForReview(ctx, item.ID, item.Revision)

	t.Run("missing publish time", func(t *testing.T) {
		_, err := svc.Schedule(ctx, item.ID, inReview.Revision, nil)
		if !errors.Is(err, domain.ErrPublishAtRequired) {
			t.Fatalf("expected ErrPublishAtRequired, got %v", err)
		}
	})

	t.Run("publish time in the past", func(t *testing.T) {
		past := svcNow.Add(-time.Minute)
		_, err := svc.Schedule(ctx, item.ID, inReview.Revision, &past)
		if !errors.Is(err, domain.ErrPublishAtInPast) {
			t.Fatalf("expected ErrPublishAtInPast, got %v", err)
		}
	})

	t.Run("draft cannot be scheduled directly", func(t *testing.T) {
		svc2, _ := newService()
		draft := mustCreate(t, svc2)
		at := svcNow.Add(time.Hour)
		_, err := svc2.Schedule(ctx, draft.ID, draft.Revision, &at)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestContentService_PublishNow(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	item := mustCreate(t, svc)

	published, err := svc.PublishNow(ctx, item.ID, item.Revision)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %s", published.Status)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(svcNow) {
		t.Fatalf("expected published_at=%v, got %v", svcNow, published.PublishedAt)
	}
}

func TestContentService_UnpublishKeepsPublishedAt(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	item := mustCreate(t, svc)

	published, _ := svc.PublishNow(ctx, item.ID, item.Revision)
	firstPublishedAt := *published.PublishedAt

	draft, err := svc.Unpublish(ctx, item.ID, published.Revision)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if draft.Status != domain.StatusDraft {
		t.Fatalf("expected draft, got %s", draft.Status)
	}
	if draft.PublishedAt == nil || !draft.PublishedAt.Equal(firstPublishedAt) {
		t.Fatal("unpublish must not reset published_at")
	}

	// Republishing keeps the original first-publication timestamp.
	again, err := svc.PublishNow(ctx, item.ID, draft.Revision)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !again.PublishedAt.Equal(firstPublishedAt) {
		t.Fatal("republish must not overwrite published_at")
	}
}

func TestContentService_Transition_StaleRevision(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	item := mustCreate(t, svc)

	// A concurrent edit bumps the revision before our transition lands.
	if _, err := svc.SubmitForReview(ctx, item.ID, item.Revision); err != nil {
		t.Fatalf("setup submit: %v", err)
	}

	_, err := svc.PublishNow(ctx, item.ID, item.Revision)
	if !errors.Is(err, domain.ErrRevisionMismatch) {
		t.Fatalf("expected ErrRevisionMismatch, got %v", err)
	}
}

func TestContentService_GetByID_NotFound(t *testing.T) {
	svc, _ := newService()
	_, err := svc.GetByID(context.Background(), "does-not-exist")
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

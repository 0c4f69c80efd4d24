package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/domain"
	"github.com/presshub/presshub/internal/hook"
	"github.com/presshub/presshub/internal/repository"
)

// ContentService owns the interactive editing paths: CRUD plus the
// editorial transitions (submit, schedule, publish, ...). Every transition
// goes through the same state machine and the same CAS repository primitive
// the scheduler uses, so a human publishing an item by hand and the
// scheduler promoting it race safely: one of the two writes applies, the
// other observes a revision mismatch.
type ContentService struct {
	repo     repository.ContentRepository
	notifier hook.Notifier
	logger   *zap.Logger
	clock    func() time.Time
}

// NewContentService constructs the service. notifier and clock may be nil
// (no-op notifier, time.Now).
func NewContentService(
	repo repository.ContentRepository,
	notifier hook.Notifier,
	logger *zap.Logger,
	clock func() time.Time,
) *ContentService {
	if notifier == nil {
		notifier = hook.NopNotifier{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &ContentService{repo: repo, notifier: notifier, logger: logger, clock: clock}
}

// Create validates and persists a new draft.
func (s *ContentService) Create(ctx context.Context, req domain.CreateContentRequest) (*domain.ContentItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	item := &domain.ContentItem{
		ID:        uuid.New().String(),
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Author:    req.Author,
		Status:    domain.StatusDraft,
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("persist content item: %w", err)
	}
	return item, nil
}

func (s *ContentService) GetByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ContentService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.ContentItem, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *ContentService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Update applies an edit to slug/title/body, conditional on the revision
// the editor last saw. A stale revision surfaces as ErrRevisionMismatch so
// the UI can re-read and merge.
func (s *ContentService) Update(ctx context.Context, id string, req domain.UpdateContentRequest) (*domain.ContentItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	applied, err := s.repo.UpdateContent(ctx, id, req.Revision, req.Slug, req.Title, req.Body)
	if err != nil {
		return nil, fmt.Errorf("update content item: %w", err)
	}
	if !applied {
		return nil, domain.ErrRevisionMismatch
	}
	return s.repo.GetByID(ctx, id)
}

// SubmitForReview moves a draft into the review queue.
func (s *ContentService) SubmitForReview(ctx context.Context, id string, revision int64) (*domain.ContentItem, error) {
	return s.transition(ctx, id, revision, domain.StatusInReview, nil)
}

// ReturnToDraft sends a reviewed or scheduled item back to the author.
func (s *ContentService) ReturnToDraft(ctx context.Context, id string, revision int64) (*domain.ContentItem, error) {
	return s.transition(ctx, id, revision, domain.StatusDraft, nil)
}

// Schedule queues an item for automatic publication at publishAt, which
// must be in the future. Items whose time has already come belong to
// PublishNow, not the scheduler.
func (s *ContentService) Schedule(ctx context.Context, id string, revision int64, publishAt *time.Time) (*domain.ContentItem, error) {
	if publishAt == nil {
		return nil, domain.ErrPublishAtRequired
	}
	if !publishAt.After(s.clock()) {
		return nil, domain.ErrPublishAtInPast
	}
	return s.transition(ctx, id, revision, domain.StatusScheduled, publishAt)
}

// CancelSchedule takes a scheduled item back to draft before its time comes.
func (s *ContentService) CancelSchedule(ctx context.Context, id string, revision int64) (*domain.ContentItem, error) {
	return s.transition(ctx, id, revision, domain.StatusDraft, nil)
}

// PublishNow publishes immediately, bypassing the scheduler.
func (s *ContentService) PublishNow(ctx context.Context, id string, revision int64) (*domain.ContentItem, error) {
	item, err := s.transition(ctx, id, revision, domain.StatusPublished, nil)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.ContentPublished(ctx, item); err != nil {
		s.logger.Warn("publish webhook failed",
			zap.String("id", item.ID), zap.Error(err))
	}
	return item, nil
}

// Unpublish takes a published item offline, back to draft.
// Its original PublishedAt is preserved.
func (s *ContentService) Unpublish(ctx context.Context, id string, revision int64) (*domain.ContentItem, error) {
	return s.transition(ctx, id, revision, domain.StatusDraft, nil)
}

// transition validates the edge against the state machine, then issues the
// conditional update. publishAt is only meaningful for StatusScheduled.
func (s *ContentService) transition(ctx context.Context, id string, revision int64, to domain.Status, publishAt *time.Time) (*domain.ContentItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	snapshot := *item
	if to == domain.StatusScheduled {
		snapshot.ScheduledPublishAt = publishAt
	}

	next, err := domain.Transition(snapshot, to, now)
	if err != nil {
		return nil, err
	}

	at := now
	switch to {
	case domain.StatusScheduled:
		at = *publishAt
	case domain.StatusPublished:
		at = *next.PublishedAt
	}

	applied, err := s.repo.ConditionalTransition(ctx, id, revision, to, at)
	if err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}
	if !applied {
		return nil, domain.ErrRevisionMismatch
	}
	return s.repo.GetByID(ctx, id)
}

package domain

import (
	"regexp"
	"time"
)

// Status tracks the editorial lifecycle of a content item.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusInReview  Status = "in_review"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusScheduled, StatusPublished:
		return true
	}
	return false
}

// ContentItem is the core domain entity.
//
// Revision is an optimistic-concurrency token: the store increments it on
// every applied mutation, and every state transition is conditional on the
// revision the caller last read. ScheduledPublishAt is present exactly when
// Status is scheduled; PublishedAt is stamped the first time an item becomes
// published and never reset afterwards.
type ContentItem struct {
	ID                 string     `json:"id"`
	Slug               string     `json:"slug"`
	Title              string     `json:"title"`
	Body               string     `json:"body"`
	Author             string     `json:"author"`
	Status             Status     `json:"status"`
	ScheduledPublishAt *time.Time `json:"scheduled_publish_at,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	Revision           int64      `json:"revision"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateContentRequest is the inbound payload for a new draft.
type CreateContentRequest struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

func (r *CreateContentRequest) Validate() error {
	if r.Title == "" || len(r.Title) > 200 {
		return ErrInvalidTitle
	}
	if r.Slug == "" || len(r.Slug) > 120 || !slugPattern.MatchString(r.Slug) {
		return ErrInvalidSlug
	}
	if len(r.Body) > 1<<20 {
		return ErrInvalidBody
	}
	return nil
}

// UpdateContentRequest carries an edit to an existing item. Revision must
// match the item's current revision or the update is rejected as stale.
type UpdateContentRequest struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Revision int64  `json:"revision"`
}

func (r *UpdateContentRequest) Validate() error {
	if r.Title == "" || len(r.Title) > 200 {
		return ErrInvalidTitle
	}
	if r.Slug == "" || len(r.Slug) > 120 || !slugPattern.MatchString(r.Slug) {
		return ErrInvalidSlug
	}
	if len(r.Body) > 1<<20 {
		return ErrInvalidBody
	}
	return nil
}

// TransitionRequest is the payload for the editorial transition endpoints
// (submit, schedule, publish, ...). PublishAt is only read by schedule.
type TransitionRequest struct {
	Revision  int64      `json:"revision"`
	PublishAt *time.Time `json:"publish_at,omitempty"`
}

// ListFilter holds query parameters for paginated content listing.
type ListFilter struct {
	Status *Status
	Author *string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

package domain

import (
	"fmt"
	"time"
)

// legalTransitions enumerates every edge of the editorial state machine.
// The scheduler only ever exercises scheduled → published; the remaining
// edges belong to the interactive editing paths but are defined here so
// every caller shares one source of truth.
var legalTransitions = map[Status][]Status{
	StatusDraft:     {StatusInReview, StatusPublished},
	StatusInReview:  {StatusDraft, StatusScheduled, StatusPublished},
	StatusScheduled: {StatusDraft, StatusPublished},
	StatusPublished: {StatusDraft},
}

// CanTransition reports whether the edge from → to exists.
// Note that published → scheduled is deliberately absent: re-scheduling a
// published item requires unpublishing it first.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of item moved to the target status, or
// ErrInvalidTransition if the edge does not exist or its guard fails.
//
// Guards and timestamp rules:
//   - scheduled → published requires now >= ScheduledPublishAt.
//   - entering scheduled requires ScheduledPublishAt to already be set on
//     the item (the caller decides the publish time).
//   - leaving scheduled clears ScheduledPublishAt.
//   - entering published stamps PublishedAt once; a previously published
//     item keeps its original PublishedAt.
//
// Transition is pure: the caller persists the result, typically through
// ContentRepository.ConditionalTransition keyed on the item's revision.
func Transition(item ContentItem, to Status, now time.Time) (ContentItem, error) {
	if !CanTransition(item.Status, to) {
		return ContentItem{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, item.Status, to)
	}

	next := item

	switch to {
	case StatusScheduled:
		if item.ScheduledPublishAt == nil {
			return ContentItem{}, fmt.Errorf("%w: scheduling requires a publish time", ErrInvalidTransition)
		}
	case StatusPublished:
		if item.Status == StatusScheduled {
			if item.ScheduledPublishAt == nil || now.Before(*item.ScheduledPublishAt) {
				return ContentItem{}, fmt.Errorf("%w: item is not yet due", ErrInvalidTransition)
			}
		}
		if next.PublishedAt == nil {
			at := now
			next.PublishedAt = &at
		}
	}

	if item.Status == StatusScheduled && to != StatusScheduled {
		next.ScheduledPublishAt = nil
	}

	next.Status = to
	next.UpdatedAt = now
	return next, nil
}

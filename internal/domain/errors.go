package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound          = errors.New("not found")
	ErrSlugTaken         = errors.New("conflict: slug already exists")
	ErrRevisionMismatch  = errors.New("conflict: item was modified concurrently, re-read and retry")
	ErrInvalidTitle      = errors.New("title must be between 1 and 200 characters")
	ErrInvalidSlug       = errors.New("slug must be lowercase letters, digits and dashes, max 120 characters")
	ErrInvalidBody       = errors.New("body exceeds maximum size of 1 MiB")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPublishAtRequired = errors.New("publish_at is required to schedule an item")
	ErrPublishAtInPast   = errors.New("publish_at must be in the future")
)

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/presshub/presshub/internal/domain"
)

// MockContentRepository is a hand-written, in-memory implementation of
// ContentRepository used in unit tests. No mock-generation library needed.
//
// The error overrides simulate failure paths; BeforeTransition runs before
// each ConditionalTransition while the lock is released, which lets tests
// interleave a competing write exactly where a live request would race the
// scheduler.
type MockContentRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.ContentItem

	// Optional error overrides — set in tests to simulate failure paths.
	FindDueErr    error
	GetByIDErr    error
	TransitionErr map[string]error // per-item ConditionalTransition error

	// BeforeTransition, if set, is invoked with the item id before the
	// transition's precondition is evaluated.
	BeforeTransition func(id string)

	// FindDueDelay, if set, blocks FindDueScheduled until the channel is
	// closed (or ctx is done). Used to simulate a slow store.
	FindDueDelay chan struct{}
}

func NewMockContentRepository() *MockContentRepository {
	return &MockContentRepository{items: make(map[string]*domain.ContentItem)}
}

func (m *MockContentRepository) Create(_ context.Context, item *domain.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Slug == item.Slug {
			return domain.ErrSlugTaken
		}
	}
	clone := *item
	m.items[item.ID] = &clone
	return nil
}

func (m *MockContentRepository) GetByID(_ context.Context, id string) (*domain.ContentItem, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *MockContentRepository) GetBySlug(_ context.Context, slug string) (*domain.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.Slug == slug {
			clone := *item
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockContentRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.ContentItem, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ContentItem, 0, len(m.items))
	for _, item := range m.items {
		if f.Status != nil && item.Status != *f.Status {
			continue
		}
		if f.Author != nil && item.Author != *f.Author {
			continue
		}
		clone := *item
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, len(result), nil
}

func (m *MockContentRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockContentRepository) UpdateContent(_ context.Context, id string, expectedRevision int64, slug, title, body string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.Revision != expectedRevision {
		return false, nil
	}
	item.Slug, item.Title, item.Body = slug, title, body
	item.Revision++
	item.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MockContentRepository) ConditionalTransition(_ context.Context, id string, expectedRevision int64, to domain.Status, at time.Time) (bool, error) {
	if hook := m.BeforeTransition; hook != nil {
		hook(id)
	}
	if err := m.TransitionErr[id]; err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.Revision != expectedRevision {
		return false, nil
	}

	switch to {
	case domain.StatusPublished:
		if item.PublishedAt == nil {
			stamp := at
			item.PublishedAt = &stamp
		}
		item.ScheduledPublishAt = nil
	case domain.StatusScheduled:
		stamp := at
		item.ScheduledPublishAt = &stamp
	default:
		item.ScheduledPublishAt = nil
	}

	item.Status = to
	item.Revision++
	item.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MockContentRepository) FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]*domain.ContentItem, error) {
	if m.FindDueDelay != nil {
		select {
		case <-m.FindDueDelay:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.FindDueErr != nil {
		return nil, m.FindDueErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.ContentItem
	for _, item := range m.items {
		if item.Status != domain.StatusScheduled || item.ScheduledPublishAt == nil {
			continue
		}
		if item.ScheduledPublishAt.After(now) {
			continue
		}
		clone := *item
		due = append(due, &clone)
	}

	sort.Slice(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if !a.ScheduledPublishAt.Equal(*b.ScheduledPublishAt) {
			return a.ScheduledPublishAt.Before(*b.ScheduledPublishAt)
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

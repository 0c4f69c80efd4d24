package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/domain"
	"github.com/presshub/presshub/internal/hook"
	"github.com/presshub/presshub/internal/ratelimiter"
	"github.com/presshub/presshub/internal/repository"
)

// Publisher performs the scheduled → published transition for one item.
//
// The attempt is a compare-and-swap keyed on the revision read by the
// due-item query. Losing the race to an interactive edit is the expected
// idempotent outcome, not an error: whoever bumped the revision (manual
// publish, reschedule, delete) owns the item's new state.
type Publisher struct {
	repo     repository.ContentRepository
	budget   *ratelimiter.WriteBudget
	notifier hook.Notifier
	logger   *zap.Logger
	clock    func() time.Time
}

// NewPublisher constructs a Publisher. clock may be nil (defaults to
// time.Now); tests inject a fixed clock.
func NewPublisher(
	repo repository.ContentRepository,
	budget *ratelimiter.WriteBudget,
	notifier hook.Notifier,
	logger *zap.Logger,
	clock func() time.Time,
) *Publisher {
	if clock == nil {
		clock = time.Now
	}
	if notifier == nil {
		notifier = hook.NopNotifier{}
	}
	return &Publisher{repo: repo, budget: budget, notifier: notifier, logger: logger, clock: clock}
}

// Attempt tries to promote one due item. It never panics through to the
// caller's loop; runSafely wraps it in the pass.
func (p *Publisher) Attempt(ctx context.Context, item *domain.ContentItem) Outcome {
	now := p.clock().UTC()

	// Re-validate against the state machine before touching the store.
	// A stale snapshot or clock skew surfaces here instead of as a bad write.
	next, err := domain.Transition(*item, domain.StatusPublished, now)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}
	}

	if p.budget != nil {
		if err := p.budget.Wait(ctx); err != nil {
			return Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("write budget: %w", err)}
		}
	}

	applied, err := p.repo.ConditionalTransition(ctx, item.ID, item.Revision, domain.StatusPublished, *next.PublishedAt)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("persist transition: %w", err)}
	}
	if !applied {
		return Outcome{Kind: OutcomeSkipped, Reason: "concurrent-modification"}
	}

	if err := p.notifier.ContentPublished(ctx, &next); err != nil {
		// Best effort only; the promotion itself already committed.
		p.logger.Warn("publish webhook failed",
			zap.String("id", item.ID), zap.Error(err))
	}

	return Outcome{Kind: OutcomePromoted}
}

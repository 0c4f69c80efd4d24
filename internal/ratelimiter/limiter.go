package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// WriteBudget caps the rate of conditional updates issued against the
// content store. When a scheduler pass drains a large due backlog, the CAS
// writes would otherwise arrive as one burst; the budget spreads them out so
// interactive requests sharing the store are not starved.
type WriteBudget struct {
	limiter *rate.Limiter
}

// New creates a WriteBudget allowing perSec writes per second.
// Burst equals the rate so no extra capacity accumulates between passes.
// A non-positive perSec disables limiting.
func New(perSec int) *WriteBudget {
	if perSec <= 0 {
		return &WriteBudget{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &WriteBudget{limiter: rate.NewLimiter(rate.Limit(perSec), perSec)}
}

// Wait blocks until a write token is available.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (b *WriteBudget) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

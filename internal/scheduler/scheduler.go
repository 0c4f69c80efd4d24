package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/domain"
	"github.com/presshub/presshub/internal/repository"
)

var (
	// ErrAlreadyRunning is returned by Start when the loop is active.
	ErrAlreadyRunning = errors.New("scheduler: already running")
	// ErrPassInProgress is returned by RunOnce while another pass holds the
	// single-flight slot.
	ErrPassInProgress = errors.New("scheduler: a pass is already in progress")
)

// Config holds the scheduler's tunables.
type Config struct {
	// Interval between passes. Required.
	Interval time.Duration
	// DueLimit caps how many due items one pass selects. Zero means 500.
	DueLimit int
	// Clock supplies the notion of "now"; nil means time.Now.
	// Tests inject a fixed clock to make due-time checks deterministic.
	Clock func() time.Time
}

// Scheduler owns the publishing loop: every Interval it selects due items
// and attempts to promote each one.
//
// Single-flight: an atomic in-progress flag guards the pass. When a tick
// fires while the previous pass is still running (slow store, large
// backlog), the tick is skipped and logged rather than starting a second
// concurrent pass, which would double-process items and break the
// deterministic per-pass ordering.
//
// No error escapes the loop: a failed due-item query aborts only the
// current pass, and per-item failures are isolated by runSafely. The loop
// always re-arms the next tick.
type Scheduler struct {
	repo     repository.ContentRepository
	pub      *Publisher
	interval time.Duration
	dueLimit int
	clock    func() time.Time
	logger   *zap.Logger
	reporter Reporter

	inFlight atomic.Bool
	passWG   sync.WaitGroup

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	lastPass   *PassResult
	lastErr    error
	nextTickAt time.Time
}

// New constructs a stopped Scheduler. reporter may be nil (no-op).
func New(
	repo repository.ContentRepository,
	pub *Publisher,
	cfg Config,
	logger *zap.Logger,
	reporter Reporter,
) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.DueLimit <= 0 {
		cfg.DueLimit = 500
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Scheduler{
		repo:     repo,
		pub:      pub,
		interval: cfg.Interval,
		dueLimit: cfg.DueLimit,
		clock:    cfg.Clock,
		logger:   logger,
		reporter: reporter,
	}
}

// Start launches the loop: one immediate pass, then one per interval.
// It fails synchronously on a misconfigured interval or if already running;
// everything after a successful Start is handled inside the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(loopCtx)

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop requests a graceful shutdown and blocks until the loop has exited
// and any in-flight pass has finished. In-flight per-item attempts complete;
// no new items are dispatched once the stop is requested.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.passWG.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

// Status returns a point-in-time snapshot for health checks.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.running}
	if s.lastPass != nil {
		res := *s.lastPass
		st.LastPass = &res
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.running && !s.nextTickAt.IsZero() {
		next := s.nextTickAt
		st.NextTickAt = &next
	}
	return st
}

// RunOnce executes a single pass outside the timer, guarded by the same
// single-flight slot as the loop. Used by the admin trigger endpoint and by
// tests that want timer-free passes.
func (s *Scheduler) RunOnce(ctx context.Context) (PassResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return PassResult{}, ErrPassInProgress
	}
	defer s.inFlight.Store(false)

	res := s.pass(ctx)
	s.recordPass(res)
	return res, nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick claims the single-flight slot and runs the pass on its own goroutine
// so the timer keeps firing on schedule. A claimed slot means the previous
// pass is still running; the tick is dropped with a warning, which is the
// operational signal of an undersized interval or an overloaded store.
func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	s.nextTickAt = s.clock().Add(s.interval)
	s.mu.Unlock()

	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("previous pass still running, skipping tick",
			zap.Duration("interval", s.interval))
		s.reporter.TickSkipped()
		return
	}

	s.passWG.Add(1)
	go func() {
		defer s.passWG.Done()
		defer s.inFlight.Store(false)

		res := s.pass(ctx)
		s.recordPass(res)
	}()
}

// pass selects due items and attempts each in the selector's deterministic
// order. Per-item failures never abort the batch; a selector failure aborts
// the whole pass (retried on the next tick, the due-time guard is stable).
func (s *Scheduler) pass(ctx context.Context) PassResult {
	started := s.clock().UTC()
	res := PassResult{StartedAt: started}

	items, err := s.repo.FindDueScheduled(ctx, started, s.dueLimit)
	if err != nil {
		s.logger.Error("due-item query failed, aborting pass", zap.Error(err))
		res.Aborted = true
		res.Errors = append(res.Errors, ItemError{Error: fmt.Sprintf("due-item query: %v", err)})
		res.Duration = s.clock().UTC().Sub(started)
		return res
	}

	for _, item := range items {
		if ctx.Err() != nil {
			// Stop requested: finish bookkeeping, dispatch nothing new.
			res.Aborted = true
			break
		}

		res.Examined++
		out := runSafely(ctx, item, s.pub.Attempt)

		switch out.Kind {
		case OutcomePromoted:
			res.Promoted++
			s.reporter.ItemPromoted(item.ID)
			s.logger.Info("content published",
				zap.String("id", item.ID), zap.String("slug", item.Slug))
		case OutcomeSkipped:
			res.Skipped++
			s.reporter.ItemSkipped(item.ID, out.Reason)
			s.logger.Debug("promotion skipped",
				zap.String("id", item.ID), zap.String("reason", out.Reason))
		case OutcomeFailed:
			res.Failed++
			res.Errors = append(res.Errors, ItemError{ID: item.ID, Error: out.Err.Error()})
			s.reporter.ItemFailed(item.ID, out.Err)
			s.logger.Error("promotion failed",
				zap.String("id", item.ID), zap.Error(out.Err))
		}
	}

	res.Duration = s.clock().UTC().Sub(started)
	return res
}

func (s *Scheduler) recordPass(res PassResult) {
	s.mu.Lock()
	s.lastPass = &res
	switch {
	case len(res.Errors) > 0:
		s.lastErr = errors.New(res.Errors[len(res.Errors)-1].Error)
	default:
		s.lastErr = nil
	}
	s.mu.Unlock()

	s.reporter.PassCompleted(res)

	if res.Examined > 0 || res.Aborted {
		s.logger.Info("pass completed",
			zap.Int("examined", res.Examined),
			zap.Int("promoted", res.Promoted),
			zap.Int("skipped", res.Skipped),
			zap.Int("failed", res.Failed),
			zap.Bool("aborted", res.Aborted),
			zap.Duration("duration", res.Duration))
	}
}

// runSafely executes one item's attempt inside a failure boundary: a panic
// in the attempt becomes a Failed outcome instead of taking down the batch
// or the loop.
func runSafely(
	ctx context.Context,
	item *domain.ContentItem,
	attempt func(context.Context, *domain.ContentItem) Outcome,
) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("panic during publish attempt: %v", r)}
		}
	}()
	return attempt(ctx, item)
}

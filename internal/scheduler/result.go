package scheduler

import "time"

// OutcomeKind classifies the result of one publish attempt.
type OutcomeKind string

const (
	// OutcomePromoted: the CAS applied and the item is now published.
	OutcomePromoted OutcomeKind = "promoted"
	// OutcomeSkipped: the precondition no longer held. A concurrent writer
	// (manual publish, reschedule, delete) won the race; nothing to do.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeFailed: a transient error; the item stays scheduled and is
	// reselected on a later pass because its due time remains in the past.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the result of Publisher.Attempt for a single item.
type Outcome struct {
	Kind   OutcomeKind
	Reason string // set for OutcomeSkipped, e.g. "concurrent-modification"
	Err    error  // set for OutcomeFailed
}

// ItemError pairs an item id with the error that failed its promotion.
type ItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// PassResult aggregates one scheduler pass. It is ephemeral: kept only as
// the latest snapshot for Status() and handed to the Reporter.
type PassResult struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Examined  int           `json:"examined"`
	Promoted  int           `json:"promoted"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Errors    []ItemError   `json:"errors,omitempty"`
	// Aborted is true when the due-item query failed or a stop request
	// interrupted the pass before every item was attempted.
	Aborted bool `json:"aborted,omitempty"`
}

// Status is the read-only snapshot exposed for health checks.
type Status struct {
	Running    bool        `json:"running"`
	LastPass   *PassResult `json:"last_pass,omitempty"`
	LastError  string      `json:"last_error,omitempty"`
	NextTickAt *time.Time  `json:"next_tick_at,omitempty"`
}

// Reporter receives scheduler events. Observability (metrics, alerting) is
// attached here instead of being hard-wired into the pass body, so tests can
// assert on PassResult without parsing log output.
type Reporter interface {
	PassCompleted(res PassResult)
	TickSkipped()
	ItemPromoted(id string)
	ItemSkipped(id, reason string)
	ItemFailed(id string, err error)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) PassCompleted(PassResult)   {}
func (NopReporter) TickSkipped()               {}
func (NopReporter) ItemPromoted(string)        {}
func (NopReporter) ItemSkipped(string, string) {}
func (NopReporter) ItemFailed(string, error)   {}

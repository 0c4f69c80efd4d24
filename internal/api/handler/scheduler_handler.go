package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/scheduler"
)

// SchedulerHandler exposes the publishing loop's status snapshot and a
// manual trigger for one pass.
type SchedulerHandler struct {
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

func NewSchedulerHandler(sched *scheduler.Scheduler, logger *zap.Logger) *SchedulerHandler {
	return &SchedulerHandler{sched: sched, logger: logger}
}

// Status handles GET /api/v1/scheduler/status
func (h *SchedulerHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sched.Status())
}

// Run handles POST /api/v1/scheduler/run
//
// Triggers one pass immediately, outside the timer. Returns 409 if a pass
// is already in progress (the single-flight slot is taken).
func (h *SchedulerHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.sched.RunOnce(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	h.logger.Info("manual pass triggered", zap.Int("examined", res.Examined))
	respondJSON(w, http.StatusOK, res)
}

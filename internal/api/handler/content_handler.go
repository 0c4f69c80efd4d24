package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/presshub/presshub/internal/api/middleware"
	"github.com/presshub/presshub/internal/domain"
	"github.com/presshub/presshub/internal/service"
)

// ContentHandler handles content CRUD and editorial transition endpoints.
type ContentHandler struct {
	svc    *service.ContentService
	logger *zap.Logger
}

func NewContentHandler(svc *service.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/content
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create content failed",
			zap.String("request_id", apimw.GetRequestID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// GetByID handles GET /api/v1/content/{id}
func (h *ContentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// List handles GET /api/v1/content with filtering and pagination.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	items, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list content")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  items,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// Update handles PUT /api/v1/content/{id}
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	item, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/v1/content/{id}
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transitionFunc adapts one ContentService transition method to a handler.
type transitionFunc func(r *http.Request, id string, req domain.TransitionRequest) (*domain.ContentItem, error)

func (h *ContentHandler) handleTransition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	var req domain.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	item, err := fn(r, id, req)
	if err != nil {
		h.logger.Warn("content transition failed",
			zap.String("id", id),
			zap.String("request_id", apimw.GetRequestID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Submit handles POST /api/v1/content/{id}/submit
func (h *ContentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id string, req domain.TransitionRequest) (*domain.ContentItem, error) {
		return h.svc.SubmitForReview(r.Context(), id, req.Revision)
	})
}

// Reject handles POST /api/v1/content/{id}/reject
func (h *ContentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id string, req domain.TransitionRequest) (*domain.ContentItem, error) {
		return h.svc.ReturnToDraft(r.Context(), id, req.Revision)
	})
}

// Schedule handles POST /api/v1/content/{id}/schedule
func (h *ContentHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id string, req domain.TransitionRequest) (*domain.ContentItem, error) {
		return h.svc.Schedule(r.Context(), id, req.Revision, req.PublishAt)
	})
}

// Unschedule handles POST /api/v1/content/{id}/unschedule
func (h *ContentHandler) Unschedule(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id string, req domain.TransitionRequest) (*domain.ContentItem, error) {
		return h.svc.CancelSchedule(r.Context(), id, req.Revision)
	})
}

// Publish handles POST /api/v1/content/{id}/publish
func (h *ContentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id string, req domain.TransitionRequest) (*domain.ContentItem, error) {
		return h.svc.PublishNow(r.Context(), id, req.Revision)
	})
}

// Unpublish handles POST /api/v1/content/{id}/unpublish
func (h *ContentHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id string, req domain.TransitionRequest) (*domain.ContentItem, error) {
		return h.svc.Unpublish(r.Context(), id, req.Revision)
	})
}

func parseListFilter(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	filter := domain.ListFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if s := q.Get("status"); s != "" {
		st := domain.Status(s)
		filter.Status = &st
	}
	if a := q.Get("author"); a != "" {
		filter.Author = &a
	}
	if f := q.Get("from"); f != "" {
		if t, err := time.Parse(time.RFC3339, f); err == nil {
			filter.From = &t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}
	return filter
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/coach"
	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/storage"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

type handler struct {
	svc          *coach.Service
	q            dispatch.Querier
	counterLimit int
	logger       *zap.Logger
}

type QuestionRequest struct {
	Question string `json:"question"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Ask runs a question through the whole pipeline.
func (h *handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &vocab.ValidationError{Field: "request body", Value: err.Error()})
		return
	}

	reply, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// Classify returns the intent of a question without answering it.
func (h *handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &vocab.ValidationError{Field: "request body", Value: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, intent.ToWire(h.svc.Classify(r.Context(), req.Question)))
}

func (h *handler) Counters(w http.ResponseWriter, r *http.Request) {
	lane, limit, err := h.filters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := intent.NewCounterPick(pathParam(r, "champion"), lane)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.dispatch(w, r, dispatch.New(h.q, limit), in)
}

func (h *handler) Mechanics(w http.ResponseWriter, r *http.Request) {
	lane, _, err := h.filters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := vocab.NormalizeMechanic(pathParam(r, "mechanic"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := intent.NewMechanicSearch(m, lane)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.dispatch(w, r, dispatch.New(h.q, h.counterLimit), in)
}

func (h *handler) ArchetypeCounters(w http.ResponseWriter, r *http.Request) {
	lane, _, err := h.filters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := vocab.NormalizeArchetype(pathParam(r, "archetype"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := intent.NewArchetypeCounters(a, lane)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.dispatch(w, r, dispatch.New(h.q, h.counterLimit), in)
}

func (h *handler) Vocabulary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vocab.NewDocument())
}

func (h *handler) dispatch(w http.ResponseWriter, r *http.Request, d *dispatch.Dispatcher, in intent.Intent) {
	answer, err := d.Dispatch(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// filters reads the optional lane and limit query parameters.
func (h *handler) filters(r *http.Request) (vocab.Role, int, error) {
	var lane vocab.Role
	if s := r.URL.Query().Get("lane"); s != "" {
		role, err := vocab.NormalizeRole(s)
		if err != nil {
			return "", 0, err
		}
		lane = role
	}

	limit := h.counterLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return "", 0, &vocab.ValidationError{Field: "limit", Value: s}
		}
		limit = n
	}
	return lane, limit, nil
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, vocab.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

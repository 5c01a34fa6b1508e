// Package sagahttp exposes a saga.Participant over HTTP/JSON.
package sagahttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/SagaParticipants/pkg/httputil"
	"github.com/utafrali/SagaParticipants/pkg/logger"
	"github.com/utafrali/SagaParticipants/pkg/saga"
)

// maxBodyBytes limits request bodies to 1MB.
const maxBodyBytes = 1 << 20

// Routes names the paths a participant serves. An empty Compensate path
// leaves the compensating action unmounted.
type Routes struct {
	Execute    string
	Compensate string
	List       string
}

// Handler serves the forward and compensating actions of one participant.
type Handler[P, R any] struct {
	participant *saga.Participant[P, R]
	logger      *slog.Logger
}

// NewHandler creates a handler for p.
func NewHandler[P, R any](p *saga.Participant[P, R], logger *slog.Logger) *Handler[P, R] {
	return &Handler[P, R]{participant: p, logger: logger}
}

// Mount registers the action routes. The listing route is served by list,
// or by Records when list is nil.
func (h *Handler[P, R]) Mount(r chi.Router, routes Routes, list http.HandlerFunc) {
	r.Post(routes.Execute, h.Execute)
	if routes.Compensate != "" {
		r.Post(routes.Compensate, h.Compensate)
	}
	if routes.List != "" {
		if list == nil {
			list = h.Records
		}
		r.Get(routes.List, list)
	}
}

// Execute handles the forward action: 201 on first creation, 200 otherwise.
func (h *Handler[P, R]) Execute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := saga.DecodeRequest[P](r.Body)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ctx := r.Context()
	if req.OrderID != "" && logger.OrderIDFromContext(ctx) == "" {
		ctx = logger.WithOrderID(ctx, req.OrderID)
	}

	res, err := h.participant.Execute(ctx, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httputil.WriteResource(w, status, h.participant.Resource(), res.Record)
}

// Compensate handles the compensating action. It answers 200 for every
// well-formed request, including orders with nothing to undo.
func (h *Handler[P, R]) Compensate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	orderID, err := saga.DecodeOrderID(r.Body)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ctx := r.Context()
	if orderID != "" && logger.OrderIDFromContext(ctx) == "" {
		ctx = logger.WithOrderID(ctx, orderID)
	}

	view, err := h.participant.Compensate(ctx, orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteResource(w, http.StatusOK, h.participant.Resource(), view)
}

// Records dumps every stored record keyed by order id.
func (h *Handler[P, R]) Records(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.participant.Store().Snapshot())
}

// CountedRecords dumps the store under key together with its size,
// e.g. {"current_payments": {...}, "count": 2}.
func (h *Handler[P, R]) CountedRecords(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		records := h.participant.Store().Snapshot()
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			key:     records,
			"count": len(records),
		})
	}
}

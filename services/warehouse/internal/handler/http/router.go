package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/SagaParticipants/pkg/saga/sagahttp"
	"github.com/utafrali/SagaParticipants/services/warehouse/internal/service"
)

// Routes are the warehouse participant's HTTP paths.
var Routes = sagahttp.Routes{
	Execute:    "/reserve_space",
	Compensate: "/cancel_reservation",
	List:       "/reservations",
}

// RegisterRoutes mounts the warehouse endpoints on r.
func RegisterRoutes(r chi.Router, p *service.Participant, logger *slog.Logger) {
	h := sagahttp.NewHandler(p, logger)
	h.Mount(r, Routes, h.CountedRecords("current_reservations"))
}

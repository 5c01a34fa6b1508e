package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/SagaParticipants/pkg/saga/sagahttp"
	"github.com/utafrali/SagaParticipants/services/tracking/internal/service"
)

// Routes are the tracking participant's HTTP paths. Tracking has no
// compensating action.
var Routes = sagahttp.Routes{
	Execute: "/update_status",
	List:    "/trackings",
}

// RegisterRoutes mounts the tracking endpoints on r.
func RegisterRoutes(r chi.Router, p *service.Participant, logger *slog.Logger) {
	sagahttp.NewHandler(p, logger).Mount(r, Routes, nil)
}

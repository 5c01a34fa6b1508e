package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/SagaParticipants/pkg/saga/sagahttp"
	"github.com/utafrali/SagaParticipants/services/label/internal/service"
)

// Routes are the label participant's HTTP paths.
var Routes = sagahttp.Routes{
	Execute:    "/generate_label",
	Compensate: "/void_label",
	List:       "/labels",
}

// RegisterRoutes mounts the label endpoints on r.
func RegisterRoutes(r chi.Router, p *service.Participant, logger *slog.Logger) {
	sagahttp.NewHandler(p, logger).Mount(r, Routes, nil)
}

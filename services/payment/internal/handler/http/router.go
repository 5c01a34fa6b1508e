package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/SagaParticipants/pkg/saga/sagahttp"
	"github.com/utafrali/SagaParticipants/services/payment/internal/service"
)

// Routes are the payment participant's HTTP paths.
var Routes = sagahttp.Routes{
	Execute:    "/process_payment",
	Compensate: "/refund_payment",
	List:       "/payments",
}

// RegisterRoutes mounts the payment endpoints on r.
func RegisterRoutes(r chi.Router, p *service.Participant, logger *slog.Logger) {
	h := sagahttp.NewHandler(p, logger)
	h.Mount(r, Routes, h.CountedRecords("current_payments"))
}

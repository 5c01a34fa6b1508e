package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/SagaParticipants/pkg/httputil"
	"github.com/utafrali/SagaParticipants/pkg/saga/sagahttp"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/domain"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/service"
)

// Routes are the inventory participant's HTTP paths.
var Routes = sagahttp.Routes{
	Execute:    "/update_stock",
	Compensate: "/revert_stock",
	List:       "/allocations",
}

// RegisterRoutes mounts the inventory endpoints on r. GET /inventory dumps
// the stock counters; GET /allocations dumps the per-order allocations.
func RegisterRoutes(r chi.Router, p *service.Participant, ledger *domain.StockLedger, logger *slog.Logger) {
	sagahttp.NewHandler(p, logger).Mount(r, Routes, nil)
	r.Get("/inventory", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, ledger.Snapshot())
	})
}
